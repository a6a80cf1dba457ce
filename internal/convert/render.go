package convert

import (
	"strconv"
	"strings"

	"github.com/gerunddev/blockmark/internal/blocks"
)

// Render writes blocks back out as markdown in the subset Segment reads.
// Consecutive list items and table rows stay adjacent; every other block is
// separated by a blank line.
func Render(bs []blocks.Block) string {
	var md strings.Builder

	for i, b := range bs {
		if i > 0 {
			if b.Kind == blocks.KindListItem && bs[i-1].Kind == blocks.KindListItem {
				md.WriteString("\n")
			} else {
				md.WriteString("\n\n")
			}
		}

		switch b.Kind {
		case blocks.KindHeading:
			level := b.Level
			if level < 1 {
				level = 1
			}
			md.WriteString(strings.Repeat("#", level) + " " + RenderSpans(&b))
		case blocks.KindBlockquote:
			md.WriteString("> " + RenderSpans(&b))
		case blocks.KindListItem:
			level := b.Level
			if level < 1 {
				level = 1
			}
			md.WriteString(strings.Repeat("  ", level-1))
			if b.ListType == blocks.ListNumbered {
				md.WriteString("1. ")
			} else {
				md.WriteString("- ")
			}
			md.WriteString(RenderSpans(&b))
		case blocks.KindCode:
			md.WriteString(fenceMarker + b.Language + "\n")
			if b.Code != "" {
				md.WriteString(b.Code + "\n")
			}
			md.WriteString(fenceMarker)
		case blocks.KindTable:
			renderTable(&md, &b)
		default:
			md.WriteString(RenderSpans(&b))
		}
	}

	return md.String()
}

// delimiterSet picks the spellings of the two marks markdown can write two ways
type delimiterSet struct {
	strong, emphasis string
}

// delimiterSets are tried in order; the first whose output resolves back to
// the same spans wins
var delimiterSets = []delimiterSet{
	{strong: "**", emphasis: "_"},
	{strong: "**", emphasis: "*"},
	{strong: "__", emphasis: "_"},
	{strong: "__", emphasis: "*"},
}

// RenderSpans writes a block's spans with their mark delimiters. There are no
// escapes, so plain text holding delimiter characters may still fuse with a
// neighbouring mark; then the first spelling is returned.
func RenderSpans(b *blocks.Block) string {
	var first string
	for i, ds := range delimiterSets {
		md := renderSpansWith(b, ds)
		if i == 0 {
			first = md
		}
		if resolvesTo(md, b) {
			return md
		}
	}
	return first
}

func renderSpansWith(b *blocks.Block, ds delimiterSet) string {
	var sb strings.Builder
	for _, s := range b.Spans {
		if s.Link != "" {
			sb.WriteString("[" + s.Text + "](" + linkHref(b, s.Link) + ")")
			continue
		}
		text := s.Text
		for _, m := range s.Marks {
			d := ds.delimiterFor(m, text)
			text = d + text + d
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// delimiterFor avoids a delimiter whose character occurs in the text, since
// inner content may not contain it
func (ds delimiterSet) delimiterFor(d blocks.Decorator, text string) string {
	switch d {
	case blocks.Strong:
		return pickDelimiter(ds.strong, text, "**", "__")
	case blocks.Emphasis:
		return pickDelimiter(ds.emphasis, text, "*", "_")
	case blocks.Code:
		return "`"
	case blocks.StrikeThrough:
		return "~~"
	}
	return ""
}

func pickDelimiter(preferred, text, a, b string) string {
	if !strings.Contains(text, preferred[:1]) {
		return preferred
	}
	other := a
	if preferred == a {
		other = b
	}
	if !strings.Contains(text, other[:1]) {
		return other
	}
	return preferred
}

func linkHref(b *blocks.Block, key string) string {
	if def, ok := b.MarkDef(key); ok {
		return def.Href
	}
	return ""
}

// resolvesTo reports whether md resolves to the same text, marks and link
// targets as b's spans
func resolvesTo(md string, b *blocks.Block) bool {
	if len(b.Spans) == 0 {
		return md == ""
	}
	spans, defs := ResolveSpans(md, blocks.NewSequentialKeys(""))
	if len(spans) != len(b.Spans) {
		return false
	}
	parsed := blocks.Block{Spans: spans, MarkDefs: defs}
	for i, s := range spans {
		want := b.Spans[i]
		if s.Text != want.Text || len(s.Marks) != len(want.Marks) {
			return false
		}
		for j := range s.Marks {
			if s.Marks[j] != want.Marks[j] {
				return false
			}
		}
		if (s.Link == "") != (want.Link == "") {
			return false
		}
		if s.Link != "" && linkHref(&parsed, s.Link) != linkHref(b, want.Link) {
			return false
		}
	}
	return true
}

func renderTable(md *strings.Builder, b *blocks.Block) {
	for i, row := range b.Rows {
		if i > 0 {
			md.WriteString("\n")
		}
		if len(row.Cells) == 0 {
			md.WriteString("|")
		} else {
			md.WriteString("| " + strings.Join(row.Cells, " | ") + " |")
		}
		if i == 0 && b.HasHeader {
			md.WriteString("\n|")
			for range row.Cells {
				md.WriteString("---|")
			}
			if len(row.Cells) == 0 {
				md.WriteString("---|")
			}
		}
	}
	if b.Caption != "" {
		md.WriteString("\n\n" + b.Caption)
	}
}

// Summary describes a block in one line, for listings
func Summary(b blocks.Block) string {
	switch b.Kind {
	case blocks.KindHeading:
		return "h" + strconv.Itoa(b.Level) + ": " + b.Text()
	case blocks.KindListItem:
		return string(b.ListType) + " (level " + strconv.Itoa(b.Level) + "): " + b.Text()
	case blocks.KindCode:
		return "code (" + b.Language + "), " + strconv.Itoa(strings.Count(b.Code, "\n")+1) + " lines"
	case blocks.KindTable:
		return "table, " + strconv.Itoa(len(b.Rows)) + " rows"
	default:
		return string(b.Kind) + ": " + b.Text()
	}
}
