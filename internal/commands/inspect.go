package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/gerunddev/blockmark/internal/convert"
	"github.com/gerunddev/blockmark/internal/document"
	"github.com/gerunddev/blockmark/internal/styles"
)

// Inspect summarizes the blocks stored in a document file, one per line
func Inspect(args []string) {
	if err := runInspect(args, os.Stdout); err != nil {
		fail("%v", err)
	}
}

func runInspect(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no document specified")
	}

	doc, err := document.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	bs, skipped := doc.Blocks()
	for i, b := range bs {
		fmt.Fprintf(stdout, "%3d  %s\n", i+1, convert.Summary(b))
	}
	fmt.Fprintln(stdout, styles.DimStyle.Render(fmt.Sprintf("%d block(s), %d other entries", len(bs), skipped)))
	return nil
}
