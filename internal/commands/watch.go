package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gerunddev/blockmark/internal/batch"
	"github.com/gerunddev/blockmark/internal/config"
	"github.com/gerunddev/blockmark/internal/logger"
	"github.com/gerunddev/blockmark/internal/state"
	"github.com/gerunddev/blockmark/internal/styles"
)

// Watch runs batch conversion on an interval until interrupted
func Watch(args []string) {
	fs := newFlagSet("watch", os.Stderr)
	interval := fs.Duration("interval", 0, "time between runs (overrides config)")
	if _, err := parseArgs(fs, args); err != nil {
		os.Exit(2)
	}

	cfg, log, cleanup, err := loadConfig(os.Stderr)
	if err != nil {
		fail("Error loading config: %v", err)
	}
	defer cleanup()

	if *interval > 0 {
		cfg.Interval = *interval
	}

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		fail("Error loading state: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(styles.TitleStyle.Render("blockmark watch"))
	fmt.Printf("%s → %s every %s\n",
		styles.DimStyle.Render(cfg.SourceDir),
		styles.DimStyle.Render(cfg.OutputDir),
		styles.HighlightStyle.Render(cfg.Interval.String()))
	fmt.Println(styles.HelpStyle.Render("Press ctrl+c to stop"))

	runner := batch.NewRunner(cfg, st)
	runner.SetLogger(log)

	if err := watchLoop(ctx, runner, st, cfg.Interval, config.StateFilePath(), log); err != nil {
		fail("%v", err)
	}
	fmt.Println(styles.SuccessStyle.Render("✓ Watch stopped"))
}

// watchLoop runs the batch immediately and then on every tick, saving state
// after each run, until ctx is done
func watchLoop(ctx context.Context, runner *batch.Runner, st *state.State, interval time.Duration, statePath string, log *logger.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		result, err := runner.Run(ctx)
		if err != nil && ctx.Err() == nil {
			log.Error("batch failed", "error", err)
		} else if result != nil {
			log.Debug("batch tick completed",
				"files_converted", result.FilesConverted,
				"errors", len(result.Errors))
		}
		if err := st.Save(statePath); err != nil {
			log.StateError("save", err)
		}
	}

	run()
	for {
		select {
		case <-ticker.C:
			run()
		case <-ctx.Done():
			log.Info("watch stopping")
			return nil
		}
	}
}
