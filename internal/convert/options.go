package convert

import "github.com/gerunddev/blockmark/internal/blocks"

// FencePolicy decides what happens to a code fence still open at end of input
type FencePolicy string

const (
	// FenceDrop discards the accumulated lines; no code block is emitted
	FenceDrop FencePolicy = "drop"
	// FenceFlush emits the accumulated lines as a code block
	FenceFlush FencePolicy = "flush"
)

// DefaultLanguage is the language of a fence opened without a tag
const DefaultLanguage = "text"

// Options tune a conversion
type Options struct {
	DefaultLanguage   string
	UnterminatedFence FencePolicy
	FrontMatter       bool
	// Keys is called once per conversion for a fresh key source
	Keys func() blocks.KeySource
}

// DefaultOptions returns the documented behavior: text fences, unterminated
// fences dropped, front matter detection on, random keys.
func DefaultOptions() Options {
	return Options{
		DefaultLanguage:   DefaultLanguage,
		UnterminatedFence: FenceDrop,
		FrontMatter:       true,
		Keys:              blocks.RandomKeys,
	}
}

func (o Options) withDefaults() Options {
	if o.DefaultLanguage == "" {
		o.DefaultLanguage = DefaultLanguage
	}
	if o.UnterminatedFence == "" {
		o.UnterminatedFence = FenceDrop
	}
	if o.Keys == nil {
		o.Keys = blocks.RandomKeys
	}
	return o
}

// Stats describes one segmentation pass
type Stats struct {
	Lines             int
	Blocks            int
	DroppedFence      bool
	DroppedFenceLine  int // line number of the unterminated opening fence
	DroppedFenceLines int
}
