package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BespalovSergey/banners/internal/inpaint"
	"github.com/BespalovSergey/banners/internal/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Inpainter.OpenAIKey = "sk-test"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "plain background", cfg.Prompt)
	assert.Equal(t, 5, cfg.NumTextAreas)
	assert.Equal(t, 0.1, cfg.PointThreshold)
	assert.Equal(t, 20, cfg.KernelWidth)
	assert.Equal(t, 20, cfg.KernelHeight)
	assert.Equal(t, 1, cfg.Iterations)
	assert.Equal(t, DetectorTesseract, cfg.Detector.Backend)
	assert.Equal(t, InpainterDalle, cfg.Inpainter.Backend)
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_retries: 3
prompt: "soft gradient"
point_threshold: 0.25
http_timeout: 45s
detector:
  backend: remote
  url: http://ocr.local:8080
inpainter:
  backend: replicate
  replicate_version: abc123
  poll_timeout: 90s
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "soft gradient", cfg.Prompt)
	assert.Equal(t, 0.25, cfg.PointThreshold)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, DetectorRemote, cfg.Detector.Backend)
	assert.Equal(t, "http://ocr.local:8080", cfg.Detector.URL)
	assert.Equal(t, InpainterReplicate, cfg.Inpainter.Backend)
	assert.Equal(t, "abc123", cfg.Inpainter.ReplicateVersion)
	assert.Equal(t, 90*time.Second, cfg.Inpainter.PollTimeout)

	// Untouched keys keep their defaults.
	assert.Equal(t, 5, cfg.NumTextAreas)
	assert.Equal(t, []string{"eng"}, cfg.Detector.Languages)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: [nope"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("BANNER_MAX_RETRIES", "2")
	t.Setenv("BANNER_POINT_THRESHOLD", "0.3")
	t.Setenv("BANNER_LANGUAGES", "eng+rus")
	t.Setenv("BANNER_HTTP_TIMEOUT", "10s")
	t.Setenv("BANNER_LOG_LEVEL", "debug")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "sk-env", cfg.Inpainter.OpenAIKey)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 0.3, cfg.PointThreshold)
	assert.Equal(t, []string{"eng", "rus"}, cfg.Detector.Languages)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnv_InvalidNumbers(t *testing.T) {
	t.Setenv("BANNER_MAX_RETRIES", "many")
	t.Setenv("BANNER_NUM_TEXT_AREAS", "1.5")

	cfg := Default()
	err := cfg.ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BANNER_MAX_RETRIES")
	assert.Contains(t, err.Error(), "BANNER_NUM_TEXT_AREAS")
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("REPLICATE_API_TOKEN=r8-file\nBANNER_PROMPT=from file\n"), 0644))
	t.Setenv("BANNER_PROMPT", "from env")
	t.Setenv("REPLICATE_API_TOKEN", "")
	os.Unsetenv("REPLICATE_API_TOKEN")

	LoadEnvFile(path)
	defer os.Unsetenv("REPLICATE_API_TOKEN")

	assert.Equal(t, "r8-file", os.Getenv("REPLICATE_API_TOKEN"))
	assert.Equal(t, "from env", os.Getenv("BANNER_PROMPT"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing openai key", func(c *Config) { c.Inpainter.OpenAIKey = "" }, "OPENAI_API_KEY"},
		{"missing replicate token", func(c *Config) { c.Inpainter.Backend = InpainterReplicate }, "REPLICATE_API_TOKEN"},
		{"unknown inpainter", func(c *Config) { c.Inpainter.Backend = "gimp" }, "unknown in-painter"},
		{"remote detector without url", func(c *Config) { c.Detector.Backend = DetectorRemote }, "detector url"},
		{"unknown detector", func(c *Config) { c.Detector.Backend = "eyes" }, "unknown detector"},
		{"zero text areas", func(c *Config) { c.NumTextAreas = 0 }, "num_text_areas"},
		{"threshold above one", func(c *Config) { c.PointThreshold = 1.5 }, "point_threshold"},
		{"empty kernel", func(c *Config) { c.KernelWidth = 0 }, "kernel"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuilders(t *testing.T) {
	cfg := validConfig()
	assert.IsType(t, &ocr.TesseractDetector{}, cfg.NewDetector())
	assert.IsType(t, &inpaint.DalleInpainter{}, cfg.NewInpainter())

	cfg.Detector.Backend = DetectorRemote
	cfg.Detector.URL = "http://ocr.local"
	cfg.Inpainter.Backend = InpainterReplicate
	assert.IsType(t, &ocr.RemoteDetector{}, cfg.NewDetector())
	assert.IsType(t, &inpaint.ReplicateInpainter{}, cfg.NewInpainter())

	cfg.MaxRetries = 7
	cfg.Prompt = "clouds"
	cfg.NumTextAreas = 3
	remover := cfg.NewRemover(cfg.NewDetector(), cfg.NewInpainter())
	assert.Equal(t, 7, remover.Deleter.MaxRetries)
	assert.Equal(t, "clouds", remover.Deleter.Prompt)
	assert.Equal(t, 3, remover.NumTextAreas)
}
