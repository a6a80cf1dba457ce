package blocks

import "strings"

// Kind identifies the structural type of a block
type Kind string

const (
	KindHeading    Kind = "heading"
	KindParagraph  Kind = "paragraph"
	KindBlockquote Kind = "blockquote"
	KindListItem   Kind = "list-item"
	KindCode       Kind = "code"
	KindTable      Kind = "table"
)

// ListType distinguishes bullet lists from numbered lists
type ListType string

const (
	ListBullet   ListType = "bullet"
	ListNumbered ListType = "number"
)

// Decorator is a character-level style mark
type Decorator string

const (
	Strong        Decorator = "strong"
	Emphasis      Decorator = "em"
	Code          Decorator = "code"
	StrikeThrough Decorator = "strike-through"
)

// MaxHeadingLevel is the deepest heading style; deeper markdown headings collapse into it
const MaxHeadingLevel = 4

// Block is one structural unit of a converted document.
// Which payload fields are meaningful depends on Kind:
//   - heading: Level (1-4), Spans, MarkDefs
//   - paragraph, blockquote: Spans, MarkDefs
//   - list-item: ListType, Level (nesting depth, >= 1), Spans, MarkDefs
//   - code: Language, Code
//   - table: HasHeader, Rows, Caption
type Block struct {
	Kind     Kind
	Key      string
	Level    int
	ListType ListType
	Spans    []Span
	MarkDefs []MarkDef

	Language string
	Code     string

	HasHeader bool
	Rows      []Row
	Caption   string
}

// Span is a contiguous run of text inside a block's rich content
type Span struct {
	Key   string
	Text  string
	Marks []Decorator
	Link  string // key of a MarkDef on the owning block, empty when unlinked
}

// MarkDef is an out-of-band link definition referenced by span key
type MarkDef struct {
	Key   string
	Href  string
	Blank bool
}

// Row is one table row; cell count is not required to match the header
type Row struct {
	Key   string
	Cells []string
}

// IsRich reports whether the block carries spans
func (b *Block) IsRich() bool {
	switch b.Kind {
	case KindHeading, KindParagraph, KindBlockquote, KindListItem:
		return true
	}
	return false
}

// Text returns the concatenated text of all spans
func (b *Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// MarkDef looks up a link definition by key
func (b *Block) MarkDef(key string) (MarkDef, bool) {
	for _, md := range b.MarkDefs {
		if md.Key == key {
			return md, true
		}
	}
	return MarkDef{}, false
}

// HasMark reports whether the span carries the given decorator
func (s Span) HasMark(d Decorator) bool {
	for _, m := range s.Marks {
		if m == d {
			return true
		}
	}
	return false
}

// IsPlain reports whether the span has neither decorators nor a link
func (s Span) IsPlain() bool {
	return len(s.Marks) == 0 && s.Link == ""
}

// Header returns the header row when the table has one
func (b *Block) Header() (Row, bool) {
	if b.Kind != KindTable || !b.HasHeader || len(b.Rows) == 0 {
		return Row{}, false
	}
	return b.Rows[0], true
}
