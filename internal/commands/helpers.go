package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gerunddev/blockmark/internal/config"
	"github.com/gerunddev/blockmark/internal/logger"
	"github.com/gerunddev/blockmark/internal/styles"
)

// fail prints a styled error and exits
func fail(format string, args ...any) {
	fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
	os.Exit(1)
}

// newFlagSet returns a flag set that reports errors instead of exiting
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// readSource reads markdown from a file path, or stdin when path is "-" or empty
func readSource(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// loadConfig loads the configuration and opens its log file, mirrored to any
// extra writers. The returned cleanup must be called when done; on log file
// errors only the mirrors receive output.
func loadConfig(mirrors ...io.Writer) (*config.Config, *logger.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.NewMultiLogger(append([]io.Writer{io.Discard}, mirrors...)...)
	cleanup := func() {}
	if cfg.LogFile != "" {
		if l, c, err := logger.NewFileLogger(cfg.LogFile, mirrors...); err == nil {
			log, cleanup = l, c
		}
	}
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))

	log.ConfigLoaded(cfg.SourceDir, cfg.OutputDir, cfg.Interval)
	return cfg, log, cleanup, nil
}

// configOrDefault loads the configuration, falling back to defaults so
// single-file commands work without a config file
func configOrDefault() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.WarningStyle.Render("! Ignoring config: "+err.Error()))
		return config.DefaultConfig()
	}
	return cfg
}

// parseArgs parses flags that may appear before or after positional arguments
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
