package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/gerunddev/blockmark/internal/blocks"
	"github.com/gerunddev/blockmark/internal/convert"
	"github.com/gerunddev/blockmark/internal/logger"
)

// Convert converts one markdown source and writes its blocks as JSON
func Convert(args []string) {
	opts := configOrDefault().ConvertOptions()
	log := logger.NewWithLevel(os.Stderr, logger.ParseLevel("warn"))
	if err := runConvert(args, opts, os.Stdin, os.Stdout, log); err != nil {
		fail("%v", err)
	}
}

func runConvert(args []string, opts convert.Options, stdin io.Reader, stdout io.Writer, log *logger.Logger) error {
	fs := newFlagSet("convert", stdout)
	out := fs.String("out", "", "write JSON to this file instead of stdout")
	compact := fs.Bool("compact", false, "emit compact JSON")
	noFrontMatter := fs.Bool("no-front-matter", false, "treat a leading --- block as markdown")
	flushFence := fs.Bool("flush-fence", false, "emit an unterminated code fence instead of dropping it")
	lang := fs.String("lang", "", "language for fences without a tag")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	if *noFrontMatter {
		opts.FrontMatter = false
	}
	if *flushFence {
		opts.UnterminatedFence = convert.FenceFlush
	}
	if *lang != "" {
		opts.DefaultLanguage = *lang
	}

	src, err := readSource(firstArg(positional), stdin)
	if err != nil {
		return err
	}

	conv := convert.NewConverter(opts)
	conv.SetLogger(log)
	doc := conv.Convert(src)

	if *out != "" {
		if err := blocks.WriteFile(*out, doc.Blocks, !*compact); err != nil {
			return fmt.Errorf("failed to write %s: %w", *out, err)
		}
		return nil
	}
	return blocks.Encode(stdout, doc.Blocks, !*compact)
}
