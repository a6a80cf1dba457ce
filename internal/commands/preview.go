package commands

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/blockmark/internal/blocks"
	"github.com/gerunddev/blockmark/internal/convert"
	"github.com/gerunddev/blockmark/internal/styles"
	"github.com/gerunddev/blockmark/internal/tui"
)

// Preview opens the interactive paste-and-preview tool
func Preview(args []string) {
	fs := newFlagSet("preview", os.Stderr)
	out := fs.String("out", "", "write the last conversion to this JSON file on exit")
	positional, err := parseArgs(fs, args)
	if err != nil {
		os.Exit(2)
	}

	initial := ""
	if path := firstArg(positional); path != "" {
		initial, err = readSource(path, os.Stdin)
		if err != nil {
			fail("%v", err)
		}
	}

	conv := convert.NewConverter(configOrDefault().ConvertOptions())
	p := tea.NewProgram(tui.InitPreviewModel(conv, initial), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fail("Error: %v", err)
	}

	if *out == "" {
		return
	}
	m, ok := final.(interface{ Document() *convert.Document })
	if !ok || m.Document() == nil {
		fmt.Println(styles.DimStyle.Render("Nothing converted, " + *out + " not written"))
		return
	}

	if err := blocks.WriteFile(*out, m.Document().Blocks, true); err != nil {
		fail("Failed to write %s: %v", *out, err)
	}
	fmt.Println(styles.SuccessStyle.Render(fmt.Sprintf("✓ Wrote %d block(s) to %s", len(m.Document().Blocks), *out)))
}

// Render converts a markdown source, writes it back out as markdown and
// renders that for the terminal, showing what survives conversion
func Render(args []string) {
	fs := newFlagSet("render", os.Stderr)
	width := fs.Int("width", 80, "word wrap width")
	raw := fs.Bool("raw", false, "print the regenerated markdown without terminal styling")
	positional, err := parseArgs(fs, args)
	if err != nil {
		os.Exit(2)
	}

	src, err := readSource(firstArg(positional), os.Stdin)
	if err != nil {
		fail("%v", err)
	}

	doc := convert.NewConverter(configOrDefault().ConvertOptions()).Convert(src)
	md := convert.Render(doc.Blocks)
	if *raw {
		fmt.Println(md)
		return
	}

	out, err := tui.RenderMarkdown(md, *width)
	if err != nil {
		fail("%v", err)
	}
	fmt.Print(out)
}
