package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/BespalovSergey/banners/internal/cleartext"
	"github.com/BespalovSergey/banners/internal/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noTextDetector struct{}

func (noTextDetector) DetectText(context.Context, string) ([]imaging.TextBox, error) {
	return nil, nil
}

type unusedInpainter struct{}

func (unusedInpainter) Inpaint(context.Context, string, []imaging.TextBox, string, string) error {
	return nil
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func newRemover() *cleartext.Remover {
	return cleartext.NewRemover(cleartext.NewDeleter(noTextDetector{}, unusedInpainter{}))
}

func TestRemoveAll_RecordsFailuresInOrder(t *testing.T) {
	first := writeImage(t, "a.png")
	missing := filepath.Join(t.TempDir(), "missing.png")
	last := writeImage(t, "c.png")

	outputs, err := removeAll(t.Context(), newRemover(), []string{first, missing, last}, 2)
	require.NoError(t, err, "a failed image does not fail the batch")
	require.Len(t, outputs, 3)

	assert.Equal(t, first, outputs[0].Path)
	require.NotNil(t, outputs[0].Result)
	assert.True(t, outputs[0].Result.Discharged)

	assert.Equal(t, missing, outputs[1].Path)
	assert.Nil(t, outputs[1].Result)
	assert.Contains(t, outputs[1].Error, "image not found")

	assert.Equal(t, last, outputs[2].Path)
	assert.Empty(t, outputs[2].Error)
}

func TestRemoveAll_CancelledContextStopsBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := removeAll(ctx, newRemover(), []string{writeImage(t, "a.png")}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
