package convert

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gerunddev/blockmark/internal/blocks"
)

var (
	// Table separator rows contain only pipes, dashes, colons and whitespace: |---|:--:|
	tableSeparatorRe = regexp.MustCompile(`^\|[\s\-:|]+\|$`)

	headingRe  = regexp.MustCompile(`^(#+)\s+(.*)$`)
	bulletRe   = regexp.MustCompile(`^([ \t]*)[*+\-]\s+(.*)$`)
	numberedRe = regexp.MustCompile(`^([ \t]*)\d+\.\s+(.*)$`)
)

const fenceMarker = "```"

type scanMode int

const (
	modeText scanMode = iota
	modeFence
	modeTable
)

// segmenter is the line-by-line state machine behind Segment.
// Feed it lines in order, then call finish once.
type segmenter struct {
	opts Options
	keys blocks.KeySource
	out  []blocks.Block

	mode scanMode

	fenceLang  string
	codeLines  []string
	fenceStart int

	tableRows      []blocks.Row
	tableHasHeader bool

	lineNo        int
	droppedFence  bool
	droppedLines  int
	droppedAtLine int
}

func newSegmenter(opts Options, keys blocks.KeySource) *segmenter {
	return &segmenter{opts: opts, keys: keys}
}

// Segment splits markdown into blocks using the default options
func Segment(markdown string) []blocks.Block {
	bs, _ := SegmentWithOptions(markdown, DefaultOptions())
	return bs
}

// SegmentWithOptions splits markdown into blocks. It never fails; malformed
// constructs degrade into paragraphs, and the returned Stats describe anything
// that was discarded.
func SegmentWithOptions(markdown string, opts Options) ([]blocks.Block, Stats) {
	opts = opts.withDefaults()
	s := newSegmenter(opts, opts.Keys())

	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	for _, line := range strings.Split(markdown, "\n") {
		s.feed(line)
	}
	return s.finish()
}

func (s *segmenter) feed(line string) {
	s.lineNo++
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, fenceMarker) {
		if s.mode == modeFence {
			s.closeFence()
			return
		}
		if s.mode == modeTable {
			s.closeTable()
		}
		s.openFence(strings.TrimSpace(trimmed[len(fenceMarker):]))
		return
	}

	if s.mode == modeFence {
		s.codeLines = append(s.codeLines, line)
		return
	}

	if isPipeRow(trimmed) {
		s.mode = modeTable
		if tableSeparatorRe.MatchString(trimmed) {
			s.tableHasHeader = len(s.tableRows) > 0
			return
		}
		s.tableRows = append(s.tableRows, blocks.Row{
			Key:   s.keys.NextKey(),
			Cells: splitCells(trimmed),
		})
		return
	}

	if s.mode == modeTable {
		s.closeTable()
	}

	if trimmed == "" {
		return
	}

	if m := headingRe.FindStringSubmatch(trimmed); m != nil {
		level := len(m[1])
		if level > blocks.MaxHeadingLevel {
			level = blocks.MaxHeadingLevel
		}
		s.emitRich(blocks.Block{Kind: blocks.KindHeading, Level: level}, m[2])
		return
	}

	if strings.HasPrefix(trimmed, ">") {
		text := strings.TrimPrefix(trimmed[1:], " ")
		s.emitRich(blocks.Block{Kind: blocks.KindBlockquote}, text)
		return
	}

	// List markers are matched against the untrimmed line so indentation survives
	right := strings.TrimRightFunc(line, unicode.IsSpace)
	if m := bulletRe.FindStringSubmatch(right); m != nil {
		s.emitRich(blocks.Block{
			Kind:     blocks.KindListItem,
			ListType: blocks.ListBullet,
			Level:    listLevel(m[1]),
		}, m[2])
		return
	}
	if m := numberedRe.FindStringSubmatch(right); m != nil {
		s.emitRich(blocks.Block{
			Kind:     blocks.KindListItem,
			ListType: blocks.ListNumbered,
			Level:    listLevel(m[1]),
		}, m[2])
		return
	}

	s.emitRich(blocks.Block{Kind: blocks.KindParagraph}, trimmed)
}

func (s *segmenter) finish() ([]blocks.Block, Stats) {
	switch s.mode {
	case modeTable:
		s.closeTable()
	case modeFence:
		if s.opts.UnterminatedFence == FenceFlush {
			s.closeFence()
		} else {
			s.droppedFence = true
			s.droppedLines = len(s.codeLines)
			s.droppedAtLine = s.fenceStart
			s.resetFence()
		}
	}

	return s.out, Stats{
		Lines:             s.lineNo,
		Blocks:            len(s.out),
		DroppedFence:      s.droppedFence,
		DroppedFenceLine:  s.droppedAtLine,
		DroppedFenceLines: s.droppedLines,
	}
}

func (s *segmenter) emitRich(b blocks.Block, text string) {
	b.Key = s.keys.NextKey()
	b.Spans, b.MarkDefs = ResolveSpans(text, s.keys)
	s.out = append(s.out, b)
}

func (s *segmenter) openFence(lang string) {
	if lang == "" {
		lang = s.opts.DefaultLanguage
	}
	s.mode = modeFence
	s.fenceLang = lang
	s.fenceStart = s.lineNo
	s.codeLines = nil
}

func (s *segmenter) closeFence() {
	s.out = append(s.out, blocks.Block{
		Kind:     blocks.KindCode,
		Key:      s.keys.NextKey(),
		Language: s.fenceLang,
		Code:     strings.Join(s.codeLines, "\n"),
	})
	s.resetFence()
}

func (s *segmenter) resetFence() {
	s.mode = modeText
	s.fenceLang = ""
	s.codeLines = nil
	s.fenceStart = 0
}

// closeTable emits the accumulated table. A run made only of separator rows
// has nothing to show and is dropped.
func (s *segmenter) closeTable() {
	if len(s.tableRows) > 0 {
		s.out = append(s.out, blocks.Block{
			Kind:      blocks.KindTable,
			Key:       s.keys.NextKey(),
			HasHeader: s.tableHasHeader,
			Rows:      s.tableRows,
		})
	}
	s.mode = modeText
	s.tableRows = nil
	s.tableHasHeader = false
}

// isPipeRow accepts a lone "|" too; it yields a row without cells
func isPipeRow(trimmed string) bool {
	return strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

// splitCells drops the empty fields produced by the boundary pipes
func splitCells(row string) []string {
	parts := strings.Split(row, "|")
	parts = parts[1 : len(parts)-1]
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// listLevel maps leading indentation to a nesting depth: every two columns
// is one level, and a tab counts as two columns.
func listLevel(indent string) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += 2
		} else {
			width++
		}
	}
	return width/2 + 1
}
