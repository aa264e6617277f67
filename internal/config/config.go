// Package config loads banner-clear settings.
//
// Values are layered, later sources overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A YAML file (Load)
//  3. A .env file loaded into the process environment (LoadEnvFile)
//  4. Environment variables (ApplyEnv)
//  5. Command-line flags, applied by the caller
//
// Validate must be called once all layers are applied.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BespalovSergey/banners/internal/cleartext"
	"github.com/BespalovSergey/banners/internal/detection"
	"github.com/BespalovSergey/banners/internal/inpaint"
	"github.com/BespalovSergey/banners/internal/ocr"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is read when no config file is given. It may be absent.
	DefaultFile = "banner-clear.yaml"

	// EnvFile is loaded into the environment when present.
	EnvFile = ".env"
)

// Detector backends.
const (
	DetectorTesseract = "tesseract"
	DetectorRemote    = "remote"
)

// Inpainter backends.
const (
	InpainterDalle     = "dalle"
	InpainterReplicate = "replicate"
)

// DetectorConfig selects and configures the text detector.
type DetectorConfig struct {
	Backend        string   `yaml:"backend"`
	Languages      []string `yaml:"languages"`
	TessdataPrefix string   `yaml:"tessdata_prefix"`
	MinConfidence  float64  `yaml:"min_confidence"`
	URL            string   `yaml:"url"`
	Token          string   `yaml:"token"`
}

// InpainterConfig selects and configures the in-painting backend.
type InpainterConfig struct {
	Backend string `yaml:"backend"`

	OpenAIKey     string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	DalleModel    string `yaml:"dalle_model"`
	DalleSize     string `yaml:"dalle_size"`

	ReplicateToken   string        `yaml:"replicate_api_token"`
	ReplicateBaseURL string        `yaml:"replicate_base_url"`
	ReplicateModel   string        `yaml:"replicate_model"`
	ReplicateVersion string        `yaml:"replicate_version"`
	PollTimeout      time.Duration `yaml:"poll_timeout"`
}

// Config holds every setting of the text removal pipeline.
type Config struct {
	Detector  DetectorConfig  `yaml:"detector"`
	Inpainter InpainterConfig `yaml:"inpainter"`

	MaxRetries     int     `yaml:"max_retries"`
	Prompt         string  `yaml:"prompt"`
	NumTextAreas   int     `yaml:"num_text_areas"`
	PointThreshold float64 `yaml:"point_threshold"`
	KernelWidth    int     `yaml:"kernel_width"`
	KernelHeight   int     `yaml:"kernel_height"`
	Iterations     int     `yaml:"iterations"`

	// Concurrency bounds how many images the CLI processes at once.
	Concurrency int           `yaml:"concurrency"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	LogLevel    string        `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Detector: DetectorConfig{
			Backend:   DetectorTesseract,
			Languages: []string{ocr.DefaultLanguage},
		},
		Inpainter: InpainterConfig{
			Backend:     InpainterDalle,
			DalleModel:  inpaint.DefaultDalleModel,
			PollTimeout: 5 * time.Minute,
		},
		MaxRetries:     cleartext.DefaultMaxRetries,
		Prompt:         inpaint.DefaultPrompt,
		NumTextAreas:   detection.DefaultNumTextAreas,
		PointThreshold: detection.DefaultPointThreshold,
		KernelWidth:    detection.DefaultKernelWidth,
		KernelHeight:   detection.DefaultKernelHeight,
		Iterations:     detection.DefaultIterations,
		Concurrency:    2,
		HTTPTimeout:    2 * time.Minute,
		LogLevel:       "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path. A missing
// DefaultFile is not an error; any other missing file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultFile {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile loads variables from path into the environment without
// overriding variables that are already set. Errors are ignored since the
// file may not exist.
func LoadEnvFile(path string) {
	if path == "" {
		path = EnvFile
	}
	_ = godotenv.Load(path)
}

// ApplyEnv overrides cfg with the environment variables that are set.
func (c *Config) ApplyEnv() error {
	setString(&c.Inpainter.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.Inpainter.ReplicateToken, "REPLICATE_API_TOKEN")
	setString(&c.Inpainter.Backend, "BANNER_INPAINTER")
	setString(&c.Inpainter.ReplicateModel, "BANNER_REPLICATE_MODEL")
	setString(&c.Inpainter.ReplicateVersion, "BANNER_REPLICATE_VERSION")
	setString(&c.Detector.Backend, "BANNER_DETECTOR")
	setString(&c.Detector.URL, "BANNER_DETECTOR_URL")
	setString(&c.Detector.Token, "BANNER_DETECTOR_TOKEN")
	setString(&c.Detector.TessdataPrefix, "BANNER_TESSDATA_PREFIX")
	setString(&c.Prompt, "BANNER_PROMPT")
	setString(&c.LogLevel, "BANNER_LOG_LEVEL")

	if v := os.Getenv("BANNER_LANGUAGES"); v != "" {
		c.Detector.Languages = splitList(v)
	}

	var errs []error
	errs = append(errs,
		setInt(&c.MaxRetries, "BANNER_MAX_RETRIES"),
		setInt(&c.NumTextAreas, "BANNER_NUM_TEXT_AREAS"),
		setInt(&c.Concurrency, "BANNER_CONCURRENCY"),
		setFloat(&c.PointThreshold, "BANNER_POINT_THRESHOLD"),
		setDuration(&c.HTTPTimeout, "BANNER_HTTP_TIMEOUT"),
	)
	return errors.Join(errs...)
}

// Validate checks ranges and the credentials the selected backends need.
func (c *Config) Validate() error {
	switch c.Detector.Backend {
	case DetectorTesseract:
	case DetectorRemote:
		if c.Detector.URL == "" {
			return fmt.Errorf("detector url is required for the %s detector (BANNER_DETECTOR_URL)", DetectorRemote)
		}
	default:
		return fmt.Errorf("unknown detector backend %q", c.Detector.Backend)
	}

	switch c.Inpainter.Backend {
	case InpainterDalle:
		if c.Inpainter.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the %s in-painter", InpainterDalle)
		}
	case InpainterReplicate:
		if c.Inpainter.ReplicateToken == "" {
			return fmt.Errorf("REPLICATE_API_TOKEN is required for the %s in-painter", InpainterReplicate)
		}
	default:
		return fmt.Errorf("unknown in-painter backend %q", c.Inpainter.Backend)
	}

	if c.NumTextAreas < 1 {
		return fmt.Errorf("num_text_areas must be at least 1, got %d", c.NumTextAreas)
	}
	if c.PointThreshold < 0 || c.PointThreshold > 1 {
		return fmt.Errorf("point_threshold must be between 0 and 1, got %g", c.PointThreshold)
	}
	if c.KernelWidth < 1 || c.KernelHeight < 1 {
		return fmt.Errorf("kernel must be at least 1x1, got %dx%d", c.KernelWidth, c.KernelHeight)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}
	if c.Concurrency < 1 || c.Concurrency > 64 {
		return fmt.Errorf("concurrency must be between 1 and 64, got %d", c.Concurrency)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '+' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
