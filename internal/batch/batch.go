package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gerunddev/blockmark/internal/blocks"
	"github.com/gerunddev/blockmark/internal/config"
	"github.com/gerunddev/blockmark/internal/convert"
	"github.com/gerunddev/blockmark/internal/logger"
	"github.com/gerunddev/blockmark/internal/state"
)

// Runner converts a directory of markdown sources into block JSON files
type Runner struct {
	config    *config.Config
	state     *state.State
	converter *convert.Converter
	log       *logger.Logger
	dryRun    bool
}

// NewRunner creates a new batch runner
func NewRunner(cfg *config.Config, st *state.State) *Runner {
	return &Runner{
		config:    cfg,
		state:     st,
		converter: convert.NewConverter(cfg.ConvertOptions()),
		log:       logger.Discard(),
	}
}

// SetLogger sets the logger for batch operations
func (r *Runner) SetLogger(l *logger.Logger) {
	r.log = l
	r.converter.SetLogger(l)
}

// SetDryRun enables or disables dry-run mode
// In dry-run mode, changed files are reported but nothing is written
func (r *Runner) SetDryRun(dryRun bool) {
	r.dryRun = dryRun
}

// Result represents the result of a batch run
type Result struct {
	FilesScanned   int
	FilesConverted int
	Converted      []string
	Skipped        int
	Removed        []string
	Errors         []error
	DryRun         bool
	StartTime      time.Time
	EndTime        time.Time
}

// Run converts every changed markdown source under the source directory.
// It stops between files when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		StartTime: time.Now(),
		DryRun:    r.dryRun,
	}
	defer func() {
		result.EndTime = time.Now()
	}()

	r.log.BatchStarted(r.config.SourceDir, r.config.OutputDir)

	files, err := ScanDirectory(r.config.SourceDir, ".md", r.config.ExcludePatterns)
	if err != nil {
		return result, fmt.Errorf("failed to scan source directory: %w", err)
	}
	result.FilesScanned = len(files)

	existing := make(map[string]bool, len(files))
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		existing[src] = true

		changed, err := r.state.HasChanged(src)
		if err != nil {
			r.log.FileError(src, err)
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", src, err))
			continue
		}
		if !changed && r.outputExists(src) {
			r.log.Skipped(src, "unchanged")
			result.Skipped++
			continue
		}

		dest, err := r.OutputPath(src)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}

		if r.dryRun {
			result.Converted = append(result.Converted, src)
			result.FilesConverted++
			continue
		}

		n, err := r.convertFile(src, dest)
		if err != nil {
			r.log.FileError(src, err)
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", src, err))
			continue
		}

		if err := r.state.Update(src, dest, n); err != nil {
			r.log.StateError("update", err)
			result.Errors = append(result.Errors, err)
		}

		r.log.FileConverted(src, dest, n)
		result.Converted = append(result.Converted, src)
		result.FilesConverted++
	}

	if !r.dryRun {
		result.Removed = r.state.Forget(existing)
	}

	r.log.BatchCompleted(result.FilesConverted, result.Skipped, len(result.Errors), time.Since(result.StartTime))
	return result, nil
}

func (r *Runner) convertFile(src, dest string) (int, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return 0, err
	}

	doc := r.converter.Convert(string(data))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := blocks.WriteFile(dest, doc.Blocks, true); err != nil {
		return 0, err
	}
	return len(doc.Blocks), nil
}

func (r *Runner) outputExists(src string) bool {
	fs, ok := r.state.Files[src]
	if !ok || fs.Output == "" {
		return false
	}
	_, err := os.Stat(fs.Output)
	return err == nil
}

// OutputPath maps a source file to its JSON file under the output directory,
// mirroring the source tree
func (r *Runner) OutputPath(src string) (string, error) {
	rel, err := filepath.Rel(r.config.SourceDir, src)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", src, err)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".json"
	return filepath.Join(r.config.OutputDir, rel), nil
}

// ScanDirectory scans a directory for files with the given extension,
// skipping files whose base name matches an exclude pattern
func ScanDirectory(dir string, ext string, exclude []string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		if excluded(filepath.Base(path), exclude) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the batch result
func (r *Result) String() string {
	verb := "converted"
	if r.DryRun {
		verb = "would convert"
	}
	return fmt.Sprintf(
		"Batch complete: %d of %d files %s, %d unchanged, %d errors (took %v)",
		r.FilesConverted,
		r.FilesScanned,
		verb,
		r.Skipped,
		len(r.Errors),
		r.EndTime.Sub(r.StartTime).Round(time.Millisecond),
	)
}
