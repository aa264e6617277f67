package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BespalovSergey/banners/internal/cleartext"
	"github.com/BespalovSergey/banners/internal/config"
	"github.com/BespalovSergey/banners/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `banner-clear - remove text from banner images

Usage:
  banner-clear remove [flags] <image>...   Clear text and print a report per image
  banner-clear serve [flags]               Run the MCP server on stdin/stdout
  banner-clear --version                   Print version information
  banner-clear --help                      Print this help message

Flags (remove and serve):
  --config <file>          YAML config (default banner-clear.yaml if present)
  --env-file <file>        .env file to load (default .env if present)
  --detector <name>        tesseract | remote
  --inpainter <name>       dalle | replicate
  --prompt <text>          In-painting prompt
  --max-retries <n>        In-painting rounds per image
  --num-text-areas <n>     Bands used to find a discharged area
  --point-threshold <f>    Corner response threshold (0-1)
  --debug                  Enable debug logging

Flags (remove only):
  --concurrency <n>        Images processed at once
  --json                   Print results as JSON

Environment variables:
  OPENAI_API_KEY           Key for the dalle in-painter
  REPLICATE_API_TOKEN      Token for the replicate in-painter
  BANNER_LOG_LEVEL=debug   Enable debug logging
  BANNER_*                 See the config package for the full list
`

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// stdout is for reports and the MCP protocol
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("banner-clear %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		fmt.Print(usage)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case "remove":
		err = runRemove(ctx, args, os.Stdout)
	case "serve":
		err = runServe(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Error().Err(err).Msg("banner-clear failed")
		os.Exit(1)
	}
}

type options struct {
	configFile string
	envFile    string
	debug      bool
	jsonOutput bool

	detector       string
	inpainter      string
	prompt         string
	maxRetries     int
	numTextAreas   int
	pointThreshold float64
	concurrency    int
}

func newFlagSet(name string, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.configFile, "config", "", "")
	fs.StringVar(&opts.envFile, "env-file", "", "")
	fs.BoolVar(&opts.debug, "debug", false, "")
	fs.StringVar(&opts.detector, "detector", "", "")
	fs.StringVar(&opts.inpainter, "inpainter", "", "")
	fs.StringVar(&opts.prompt, "prompt", "", "")
	fs.IntVar(&opts.maxRetries, "max-retries", 0, "")
	fs.IntVar(&opts.numTextAreas, "num-text-areas", 0, "")
	fs.Float64Var(&opts.pointThreshold, "point-threshold", 0, "")
	if name == "remove" {
		fs.IntVar(&opts.concurrency, "concurrency", 0, "")
		fs.BoolVar(&opts.jsonOutput, "json", false, "")
	}
	return fs
}

// loadConfig parses flags and layers file, .env, environment and flags.
func loadConfig(name string, args []string) (*config.Config, *options, []string, error) {
	opts := &options{}
	fs := newFlagSet(name, opts)
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", name, err)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	config.LoadEnvFile(opts.envFile)
	if err := cfg.ApplyEnv(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid environment: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "detector":
			cfg.Detector.Backend = opts.detector
		case "inpainter":
			cfg.Inpainter.Backend = opts.inpainter
		case "prompt":
			cfg.Prompt = opts.prompt
		case "max-retries":
			cfg.MaxRetries = opts.maxRetries
		case "num-text-areas":
			cfg.NumTextAreas = opts.numTextAreas
		case "point-threshold":
			cfg.PointThreshold = opts.pointThreshold
		case "concurrency":
			cfg.Concurrency = opts.concurrency
		case "debug":
			cfg.LogLevel = "debug"
		}
	})

	setLogLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	return cfg, opts, fs.Args(), nil
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// buildRemover creates the backends and returns a cleanup that releases them.
func buildRemover(cfg *config.Config) (*cleartext.Remover, func()) {
	detector := cfg.NewDetector()
	remover := cfg.NewRemover(detector, cfg.NewInpainter())
	return remover, func() {
		if c, ok := detector.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close detector")
			}
		}
	}
}

func runServe(ctx context.Context, args []string) error {
	cfg, _, _, err := loadConfig("serve", args)
	if err != nil {
		return err
	}

	remover, cleanup := buildRemover(cfg)
	defer cleanup()

	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Str("detector", cfg.Detector.Backend).
		Str("inpainter", cfg.Inpainter.Backend).
		Msg("starting MCP server")

	server.Version = Version
	srv := server.New(remover)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

type removeOutput struct {
	Path   string                   `json:"path"`
	Result *cleartext.RemovalResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// removeAll clears text from every path, at most concurrency at a time.
// Per-image failures are recorded in the outputs, which keep the order of
// paths; cancelling ctx aborts the batch.
func removeAll(ctx context.Context, remover *cleartext.Remover, paths []string, concurrency int) ([]removeOutput, error) {
	outputs := make([]removeOutput, len(paths))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			outputs[i].Path = path
			result, err := remover.Remove(ctx, path)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				outputs[i].Error = err.Error()
				return nil
			}
			outputs[i].Result = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("remove interrupted: %w", err)
	}
	return outputs, nil
}

func runRemove(ctx context.Context, args []string, out io.Writer) error {
	cfg, opts, paths, err := loadConfig("remove", args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("remove: at least one image path is required")
	}

	remover, cleanup := buildRemover(cfg)
	defer cleanup()

	outputs, err := removeAll(ctx, remover, paths, cfg.Concurrency)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outputs {
		if o.Error != "" {
			failed++
		}
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outputs); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	} else {
		for i, o := range outputs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if o.Error != "" {
				fmt.Fprintf(out, "%s: %s\n", o.Path, o.Error)
				continue
			}
			fmt.Fprintln(out, o.Result.Report())
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}
