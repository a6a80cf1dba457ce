package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gerunddev/blockmark/internal/convert"
	"github.com/gerunddev/blockmark/internal/document"
	"github.com/gerunddev/blockmark/internal/logger"
	"github.com/gerunddev/blockmark/internal/styles"
)

// Import converts a markdown source and merges the blocks into a document file
func Import(args []string) {
	opts := configOrDefault().ConvertOptions()
	log := logger.NewWithLevel(os.Stderr, logger.ParseLevel("warn"))
	summary, err := runImport(args, opts, os.Stdin, os.Stdout, log)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println(styles.SuccessStyle.Render("✓ " + summary))
}

func runImport(args []string, opts convert.Options, stdin io.Reader, stdout io.Writer, log *logger.Logger) (string, error) {
	fs := newFlagSet("import", stdout)
	into := fs.String("into", "", "document JSON file to update (created if missing)")
	replace := fs.Bool("replace", false, "replace the document content instead of appending")
	meta := fs.Bool("meta", false, "copy front matter title, slug, excerpt, date and tags into empty document fields")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return "", err
	}
	if *into == "" {
		return "", errors.New("--into is required")
	}

	src, err := readSource(firstArg(positional), stdin)
	if err != nil {
		return "", err
	}

	doc, err := document.Load(*into)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", *into, err)
	}

	conv := convert.NewConverter(opts)
	conv.SetLogger(log)
	converted := conv.Convert(src)

	mode := document.Append
	if *replace {
		mode = document.Replace
	}
	total, err := doc.Merge(converted.Blocks, mode)
	if err != nil {
		return "", err
	}

	var applied []string
	if *meta && converted.Meta != nil {
		applied, err = doc.ApplyFields(converted.Meta.Fields())
		if err != nil {
			return "", err
		}
	}

	if err := doc.Save(*into); err != nil {
		return "", err
	}
	log.DocumentMerged(*into, string(mode), len(converted.Blocks), total)

	summary := fmt.Sprintf("Imported %d block(s) into %s (%d total)", len(converted.Blocks), *into, total)
	if len(applied) > 0 {
		summary += fmt.Sprintf(", set %v", applied)
	}
	return summary, nil
}
