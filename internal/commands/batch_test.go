package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/blockmark/internal/batch"
	"github.com/gerunddev/blockmark/internal/config"
	"github.com/gerunddev/blockmark/internal/state"
	"github.com/gerunddev/blockmark/internal/tui"
)

func newTestRunner(t *testing.T, files ...string) (*batch.Runner, *state.State) {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.SourceDir = filepath.Join(tmpDir, "posts")
	cfg.OutputDir = filepath.Join(tmpDir, "blocks")

	if err := os.MkdirAll(cfg.SourceDir, 0755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(cfg.SourceDir, name), []byte("# "+name), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	st := state.NewState()
	return batch.NewRunner(cfg, st), st
}

func TestStartBatchWaitsForRun(t *testing.T) {
	runner, st := newTestRunner(t, "a.md", "b.md")
	msgs := make(chan tea.Msg, 1)

	wait := startBatch(context.Background(), runner, func(msg tea.Msg) { msgs <- msg })
	wait()

	// The run has returned, so the state is safe to read and save
	if len(st.Files) != 2 {
		t.Errorf("State tracks %d files, want 2", len(st.Files))
	}
	if err := st.Save(filepath.Join(t.TempDir(), "state.json")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	msg, ok := (<-msgs).(tui.BatchMsg)
	if !ok {
		t.Fatal("Expected a BatchMsg")
	}
	if msg.Err != nil || msg.Result.FilesConverted != 2 {
		t.Errorf("BatchMsg = %+v, want 2 files converted", msg)
	}
}

func TestStartBatchCancelled(t *testing.T) {
	runner, st := newTestRunner(t, "a.md")
	msgs := make(chan tea.Msg, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	wait := startBatch(ctx, runner, func(msg tea.Msg) { msgs <- msg })
	wait()

	msg := (<-msgs).(tui.BatchMsg)
	if !errors.Is(msg.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", msg.Err)
	}
	if len(st.Files) != 0 {
		t.Errorf("Cancelled run should not record files, got %d", len(st.Files))
	}
}
