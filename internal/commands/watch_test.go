package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gerunddev/blockmark/internal/batch"
	"github.com/gerunddev/blockmark/internal/config"
	"github.com/gerunddev/blockmark/internal/logger"
	"github.com/gerunddev/blockmark/internal/state"
)

func TestWatchLoop(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.SourceDir = filepath.Join(tmpDir, "posts")
	cfg.OutputDir = filepath.Join(tmpDir, "blocks")
	statePath := filepath.Join(tmpDir, "state.json")

	if err := os.MkdirAll(cfg.SourceDir, 0755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.SourceDir, "a.md"), []byte("# A"), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	st := state.NewState()
	runner := batch.NewRunner(cfg, st)
	var logBuf bytes.Buffer
	log := logger.New(&logBuf)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := watchLoop(ctx, runner, st, 20*time.Millisecond, statePath, log); err != nil {
		t.Fatalf("watchLoop failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "a.json")); err != nil {
		t.Errorf("Expected a.json to be written: %v", err)
	}

	saved, err := state.Load(statePath)
	if err != nil {
		t.Fatalf("Failed to load saved state: %v", err)
	}
	if len(saved.Files) != 1 {
		t.Errorf("Saved state tracks %d files, want 1", len(saved.Files))
	}
}
