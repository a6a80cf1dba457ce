package commands

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/blockmark/internal/batch"
	"github.com/gerunddev/blockmark/internal/config"
	"github.com/gerunddev/blockmark/internal/state"
	"github.com/gerunddev/blockmark/internal/styles"
	"github.com/gerunddev/blockmark/internal/tui"
)

// Batch converts every changed markdown file under the source directory once
func Batch(args []string) {
	fs := newFlagSet("batch", os.Stderr)
	dryRun := fs.Bool("dry-run", false, "report what would be converted without writing")
	if _, err := parseArgs(fs, args); err != nil {
		os.Exit(2)
	}

	if *dryRun {
		fmt.Println(styles.TitleStyle.Render("blockmark batch (DRY RUN)"))
	} else {
		fmt.Println(styles.TitleStyle.Render("blockmark batch"))
	}
	fmt.Println()

	cfg, log, cleanup, err := loadConfig()
	if err != nil {
		fail("Error loading config: %v", err)
	}
	defer cleanup()

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		fail("Error loading state: %v", err)
	}

	fmt.Printf("%s → %s\n", styles.DimStyle.Render(cfg.SourceDir), styles.DimStyle.Render(cfg.OutputDir))
	if *dryRun {
		fmt.Println(styles.InfoStyle.Render("(dry run - no files will be written)"))
	}

	runner := batch.NewRunner(cfg, st)
	runner.SetLogger(log)
	runner.SetDryRun(*dryRun)

	p := tea.NewProgram(tui.InitBatchModel("Converting markdown..."), tea.WithInput(os.Stdin))

	ctx, cancel := context.WithCancel(context.Background())
	wait := startBatch(ctx, runner, p.Send)

	_, err = p.Run()
	// Quitting early cancels the run; state is only read once it has stopped
	cancel()
	wait()
	if err != nil {
		fail("Error: %v", err)
	}

	if !*dryRun {
		if err := st.Save(config.StateFilePath()); err != nil {
			log.StateError("save", err)
			fail("Error saving state: %v", err)
		}
	}
}

// startBatch runs the batch in the background and reports the outcome to
// send. The returned wait blocks until the run has returned.
func startBatch(ctx context.Context, runner *batch.Runner, send func(tea.Msg)) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := runner.Run(ctx)
		send(tui.BatchMsg{Result: result, Err: err})
	}()
	return func() {
		<-done
	}
}
