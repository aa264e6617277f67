package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writeTestImage writes a solid-colour PNG into dir and returns its path.
func writeTestImage(t *testing.T, dir string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, "banner.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := writeTestImage(t, t.TempDir(), 120, 80, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := img1.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("unexpected dimensions: got %dx%d, want 120x80", b.Dx(), b.Dy())
	}

	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := NewImageCache().Load(path); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestImageCache_EvictReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	cache := NewImageCache()
	imgPath := writeTestImage(t, dir, 50, 50, color.RGBA{0, 0, 255, 255})

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Overwrite the file with a different size, as a retry iteration does.
	writeTestImage(t, dir, 70, 30, color.RGBA{0, 255, 0, 255})
	cache.Evict(imgPath)

	img, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load after Evict failed: %v", err)
	}
	if img.Bounds().Dx() != 70 {
		t.Errorf("expected reloaded width 70, got %d", img.Bounds().Dx())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := writeTestImage(t, t.TempDir(), 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestSave_RoundTripsDimensions(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 33, 21))

	for _, name := range []string{"out.png", "out.jpg", "out.unknown"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(img, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := Open(path)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if got.Bounds().Dx() != 33 || got.Bounds().Dy() != 21 {
				t.Errorf("got %v, want 33x21", got.Bounds())
			}
		})
	}
}

func TestDerivedPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"banner.png", "banner_remove_text.png"},
		{"/tmp/images/a.b.jpg", "/tmp/images/a.b_remove_text.jpg"},
		{"noext", "noext_remove_text"},
	}

	for _, tt := range tests {
		if got := DerivedPath(tt.in, "_remove_text"); got != tt.want {
			t.Errorf("DerivedPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	imgPath := writeTestImage(t, t.TempDir(), 300, 200, color.White)

	result, err := GetDimensions(cache, imgPath)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if result.Width != 300 || result.Height != 200 {
		t.Errorf("got %dx%d, want 300x200", result.Width, result.Height)
	}
}

func TestSize(t *testing.T) {
	imgPath := writeTestImage(t, t.TempDir(), 120, 45, color.White)

	size, err := Size(imgPath)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != image.Pt(120, 45) {
		t.Errorf("got %v, want (120,45)", size)
	}

	if _, err := Size(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Size should fail for a missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Size(bad); err == nil {
		t.Error("Size should fail for invalid image data")
	}
}
