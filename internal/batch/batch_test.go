package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gerunddev/blockmark/internal/blocks"
	"github.com/gerunddev/blockmark/internal/config"
	"github.com/gerunddev/blockmark/internal/logger"
	"github.com/gerunddev/blockmark/internal/state"
)

func setupRunner(t *testing.T, files map[string]string) (*Runner, *config.Config) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.SourceDir = filepath.Join(tmpDir, "posts")
	cfg.OutputDir = filepath.Join(tmpDir, "blocks")

	for name, content := range files {
		path := filepath.Join(cfg.SourceDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	return NewRunner(cfg, state.NewState()), cfg
}

func TestRunConvertsSources(t *testing.T) {
	runner, cfg := setupRunner(t, map[string]string{
		"hello.md":        "---\ntitle: Hello\n---\n# Hello\n\nBody **text**",
		"nested/deep.md":  "- a\n- b",
		"notes.txt":       "ignored",
		"nested/skip.org": "* ignored",
	})

	var logBuf bytes.Buffer
	runner.SetLogger(logger.New(&logBuf))

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", result.FilesScanned)
	}
	if result.FilesConverted != 2 {
		t.Errorf("FilesConverted = %d, want 2", result.FilesConverted)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Unexpected errors: %v", result.Errors)
	}

	out, err := os.Open(filepath.Join(cfg.OutputDir, "hello.json"))
	if err != nil {
		t.Fatalf("Expected hello.json: %v", err)
	}
	defer out.Close()

	bs, err := blocks.Decode(out)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(bs) != 2 || bs[0].Kind != blocks.KindHeading || bs[1].Kind != blocks.KindParagraph {
		t.Errorf("Unexpected blocks in hello.json: %+v", bs)
	}

	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "nested", "deep.json")); err != nil {
		t.Errorf("Expected nested/deep.json: %v", err)
	}

	if !strings.Contains(logBuf.String(), "file converted") {
		t.Errorf("Expected conversion to be logged, got %q", logBuf.String())
	}
}

func TestRunSkipsUnchanged(t *testing.T) {
	runner, cfg := setupRunner(t, map[string]string{
		"a.md": "# A",
		"b.md": "# B",
	})

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if result.FilesConverted != 0 {
		t.Errorf("Second run converted %d files, want 0", result.FilesConverted)
	}
	if result.Skipped != 2 {
		t.Errorf("Second run skipped %d files, want 2", result.Skipped)
	}

	// A deleted output is regenerated even though the source is unchanged
	if err := os.Remove(filepath.Join(cfg.OutputDir, "a.json")); err != nil {
		t.Fatalf("Failed to remove output: %v", err)
	}
	// Content change with a new mtime is picked up
	bPath := filepath.Join(cfg.SourceDir, "b.md")
	if err := os.WriteFile(bPath, []byte("# B changed"), 0644); err != nil {
		t.Fatalf("Failed to modify source: %v", err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(bPath, later, later); err != nil {
		t.Fatalf("Failed to touch source: %v", err)
	}

	result, err = runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Third run failed: %v", err)
	}
	if result.FilesConverted != 2 {
		t.Errorf("Third run converted %d files, want 2", result.FilesConverted)
	}
}

func TestRunDryRun(t *testing.T) {
	runner, cfg := setupRunner(t, map[string]string{"a.md": "# A"})
	runner.SetDryRun(true)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.DryRun {
		t.Error("Result should be marked as a dry run")
	}
	if result.FilesConverted != 1 {
		t.Errorf("FilesConverted = %d, want 1", result.FilesConverted)
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Error("Dry run should not create the output directory")
	}
	if !strings.Contains(result.String(), "would convert") {
		t.Errorf("String() = %q, want dry-run wording", result.String())
	}
}

func TestRunExcludePatterns(t *testing.T) {
	runner, cfg := setupRunner(t, map[string]string{
		"post.md":        "# Post",
		"draft-post.md":  "# Draft",
		"nested/wip.md":  "# WIP",
		"nested/done.md": "# Done",
	})
	cfg.ExcludePatterns = []string{"draft-*", "wip.md"}

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", result.FilesScanned)
	}
}

func TestRunForgetsRemovedSources(t *testing.T) {
	runner, cfg := setupRunner(t, map[string]string{"a.md": "# A", "b.md": "# B"})

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	removedPath := filepath.Join(cfg.SourceDir, "b.md")
	if err := os.Remove(removedPath); err != nil {
		t.Fatalf("Failed to remove source: %v", err)
	}

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != removedPath {
		t.Errorf("Removed = %v, want [%s]", result.Removed, removedPath)
	}
}

func TestRunCancelled(t *testing.T) {
	runner, _ := setupRunner(t, map[string]string{"a.md": "# A"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx); err == nil {
		t.Error("Run should stop on a cancelled context")
	}
}

func TestRunMissingSourceDir(t *testing.T) {
	runner, cfg := setupRunner(t, nil)
	cfg.SourceDir = filepath.Join(cfg.SourceDir, "missing")

	if _, err := runner.Run(context.Background()); err == nil {
		t.Error("Run should fail when the source directory is missing")
	}
}

func TestOutputPath(t *testing.T) {
	cfg := &config.Config{SourceDir: "/src", OutputDir: "/out"}
	runner := NewRunner(cfg, state.NewState())

	tests := []struct {
		src      string
		expected string
	}{
		{"/src/post.md", "/out/post.json"},
		{"/src/a/b/c.md", "/out/a/b/c.json"},
		{"/src/v1.2.md", "/out/v1.2.json"},
	}

	for _, tt := range tests {
		actual, err := runner.OutputPath(tt.src)
		if err != nil {
			t.Fatalf("OutputPath(%q) failed: %v", tt.src, err)
		}
		if actual != tt.expected {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.src, actual, tt.expected)
		}
	}
}

func TestScanDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"a.md", "b.markdown", "sub/c.md", "sub/d.txt"} {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	files, err := ScanDirectory(tmpDir, ".md", nil)
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 markdown files, got %d: %v", len(files), files)
	}
}
