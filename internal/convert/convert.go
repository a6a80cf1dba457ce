package convert

import (
	"github.com/gerunddev/blockmark/internal/blocks"
	"github.com/gerunddev/blockmark/internal/logger"
)

// Document is the result of converting one markdown source
type Document struct {
	Meta   *Meta
	Blocks []blocks.Block
	Stats  Stats
}

// Converter turns markdown sources into block documents.
// It holds no per-call state and is safe for concurrent use.
type Converter struct {
	opts Options
	log  *logger.Logger
}

// NewConverter creates a converter with the given options
func NewConverter(opts Options) *Converter {
	return &Converter{
		opts: opts.withDefaults(),
		log:  logger.Discard(),
	}
}

// SetLogger sets the logger used for conversion diagnostics
func (c *Converter) SetLogger(l *logger.Logger) {
	if l == nil {
		l = logger.Discard()
	}
	c.log = l
}

// Options returns the effective options
func (c *Converter) Options() Options {
	return c.opts
}

// Convert converts markdown, stripping front matter first when enabled
func (c *Converter) Convert(markdown string) *Document {
	doc := &Document{}

	body := markdown
	if c.opts.FrontMatter {
		doc.Meta, body = ExtractFrontMatter(markdown)
	}

	doc.Blocks, doc.Stats = SegmentWithOptions(body, c.opts)
	if doc.Stats.DroppedFence {
		c.log.FenceDropped(doc.Stats.DroppedFenceLine, doc.Stats.DroppedFenceLines)
	}
	c.log.Debug("markdown converted",
		"lines", doc.Stats.Lines,
		"blocks", doc.Stats.Blocks)

	return doc
}
