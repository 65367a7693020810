package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/morozRed/fura/internal/config"
	"github.com/morozRed/fura/internal/engine"
	"github.com/spf13/cobra"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// resolveRoot returns the absolute project root: the given argument or the
// working directory.
func resolveRoot(arg string) (string, error) {
	if arg == "" {
		return resolveWorkingDirectory()
	}
	root, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", arg, err)
	}
	return root, nil
}

// loadConfig reads .furarc (or --config) and applies flag overrides. Flags
// replace config values only when set explicitly.
func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root, configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("project") {
		if cfg.Project, err = flags.GetString("project"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("exclude") {
		if cfg.Exclude, err = flags.GetStringSlice("exclude"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("alias") {
		aliases, err := flags.GetStringToString("alias")
		if err != nil {
			return nil, err
		}
		if cfg.Alias == nil {
			cfg.Alias = map[string]string{}
		}
		for k, v := range aliases {
			cfg.Alias[k] = v
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("entry") != nil && flags.Changed("entry") {
		if cfg.Entry, err = flags.GetStringSlice("entry"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("include") != nil && flags.Changed("include") {
		if cfg.Include, err = flags.GetStringSlice("include"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	verbose, err := OptionalBoolFlag(cmd, "verbose")
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

// prepareProject resolves the root for rootArg (or the working directory)
// and loads its settings.
func prepareProject(cmd *cobra.Command, rootArg string) (string, *config.Config, error) {
	root, err := resolveRoot(rootArg)
	if err != nil {
		return "", nil, err
	}
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

// analyzeProject runs a full analysis of root. The caller closes the engine.
func analyzeProject(cmd *cobra.Command, root string, cfg *config.Config, quiet bool) (*engine.Engine, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}

	progress := newParseProgressReporter(cmd.ErrOrStderr(), "analyze", quiet)
	e, err := engine.New(engine.Config{
		Root:        root,
		Project:     cfg.Project,
		Alias:       cfg.Alias,
		Exclude:     cfg.Exclude,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
		OnProgress:  progress.Update,
	})
	if err != nil {
		return nil, err
	}
	summary, err := e.Analysis(cmd.Context())
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	progress.Done(summary.SourceFiles)
	return e, nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// ExitCode maps an error returned by Execute to a process exit code:
// 2 for configuration problems, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, config.ErrInvalidConfig):
		return 2
	default:
		return 1
	}
}
