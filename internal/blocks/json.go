package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Portable Text wire shapes. Text-bearing kinds share the "block" type and are
// told apart by style and listItem.

type textBlockJSON struct {
	Type     string        `json:"_type"`
	Key      string        `json:"_key"`
	Style    string        `json:"style"`
	ListItem string        `json:"listItem,omitempty"`
	Level    int           `json:"level,omitempty"`
	Children []spanJSON    `json:"children"`
	MarkDefs []markDefJSON `json:"markDefs"`
}

type codeBlockJSON struct {
	Type     string `json:"_type"`
	Key      string `json:"_key"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

type tableBlockJSON struct {
	Type      string    `json:"_type"`
	Key       string    `json:"_key"`
	HasHeader bool      `json:"hasHeader"`
	Rows      []rowJSON `json:"rows"`
	Caption   string    `json:"caption,omitempty"`
}

type spanJSON struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

type markDefJSON struct {
	Type  string `json:"_type"`
	Key   string `json:"_key"`
	Href  string `json:"href"`
	Blank bool   `json:"blank,omitempty"`
}

type rowJSON struct {
	Key   string   `json:"_key"`
	Cells []string `json:"cells"`
}

// anyBlockJSON is the union of every field a decoded block may carry
type anyBlockJSON struct {
	Type      string        `json:"_type"`
	Key       string        `json:"_key"`
	Style     string        `json:"style"`
	ListItem  string        `json:"listItem"`
	Level     int           `json:"level"`
	Children  []spanJSON    `json:"children"`
	MarkDefs  []markDefJSON `json:"markDefs"`
	Language  string        `json:"language"`
	Code      string        `json:"code"`
	HasHeader bool          `json:"hasHeader"`
	Rows      []rowJSON     `json:"rows"`
	Caption   string        `json:"caption"`
}

// MarshalJSON encodes the block in its Portable Text shape
func (b Block) MarshalJSON() ([]byte, error) {
	switch b.Kind {
	case KindCode:
		return marshalUnescaped(codeBlockJSON{
			Type:     "code",
			Key:      b.Key,
			Language: b.Language,
			Code:     b.Code,
		})
	case KindTable:
		rows := make([]rowJSON, 0, len(b.Rows))
		for _, r := range b.Rows {
			cells := r.Cells
			if cells == nil {
				cells = []string{}
			}
			rows = append(rows, rowJSON{Key: r.Key, Cells: cells})
		}
		return marshalUnescaped(tableBlockJSON{
			Type:      "table",
			Key:       b.Key,
			HasHeader: b.HasHeader,
			Rows:      rows,
			Caption:   b.Caption,
		})
	case KindHeading, KindParagraph, KindBlockquote, KindListItem:
		out := textBlockJSON{
			Type:     "block",
			Key:      b.Key,
			Style:    styleFor(b),
			Children: make([]spanJSON, 0, len(b.Spans)),
			MarkDefs: make([]markDefJSON, 0, len(b.MarkDefs)),
		}
		if b.Kind == KindListItem {
			out.ListItem = string(b.ListType)
			out.Level = b.Level
		}
		for _, s := range b.Spans {
			out.Children = append(out.Children, encodeSpan(s))
		}
		for _, md := range b.MarkDefs {
			out.MarkDefs = append(out.MarkDefs, markDefJSON{
				Type:  "link",
				Key:   md.Key,
				Href:  md.Href,
				Blank: md.Blank,
			})
		}
		return marshalUnescaped(out)
	default:
		return nil, fmt.Errorf("unknown block kind %q", b.Kind)
	}
}

// marshalUnescaped keeps <, > and & literal; code blocks are full of them
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func styleFor(b Block) string {
	switch b.Kind {
	case KindHeading:
		level := b.Level
		if level < 1 {
			level = 1
		}
		if level > MaxHeadingLevel {
			level = MaxHeadingLevel
		}
		return "h" + strconv.Itoa(level)
	case KindBlockquote:
		return "blockquote"
	default:
		return "normal"
	}
}

func encodeSpan(s Span) spanJSON {
	marks := make([]string, 0, len(s.Marks)+1)
	for _, m := range s.Marks {
		marks = append(marks, string(m))
	}
	if s.Link != "" {
		marks = append(marks, s.Link)
	}
	return spanJSON{Type: "span", Key: s.Key, Text: s.Text, Marks: marks}
}

// UnmarshalJSON decodes a block from its Portable Text shape
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw anyBlockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Block{Key: raw.Key}

	switch raw.Type {
	case "code":
		b.Kind = KindCode
		b.Language = raw.Language
		b.Code = raw.Code
		return nil
	case "table":
		b.Kind = KindTable
		b.HasHeader = raw.HasHeader
		b.Caption = raw.Caption
		for _, r := range raw.Rows {
			b.Rows = append(b.Rows, Row{Key: r.Key, Cells: r.Cells})
		}
		return nil
	case "block":
	default:
		return fmt.Errorf("unsupported block type %q", raw.Type)
	}

	switch {
	case raw.ListItem != "":
		b.Kind = KindListItem
		b.ListType = ListType(raw.ListItem)
		b.Level = raw.Level
		if b.Level < 1 {
			b.Level = 1
		}
	case raw.Style == "blockquote":
		b.Kind = KindBlockquote
	case len(raw.Style) == 2 && raw.Style[0] == 'h':
		level, err := strconv.Atoi(raw.Style[1:])
		if err != nil || level < 1 {
			return fmt.Errorf("invalid heading style %q", raw.Style)
		}
		b.Kind = KindHeading
		b.Level = level
	default:
		b.Kind = KindParagraph
	}

	for _, md := range raw.MarkDefs {
		b.MarkDefs = append(b.MarkDefs, MarkDef{Key: md.Key, Href: md.Href, Blank: md.Blank})
	}
	for _, s := range raw.Children {
		span := Span{Key: s.Key, Text: s.Text}
		for _, m := range s.Marks {
			if isDecorator(m) {
				span.Marks = append(span.Marks, Decorator(m))
			} else {
				span.Link = m
			}
		}
		b.Spans = append(b.Spans, span)
	}
	return nil
}

func isDecorator(m string) bool {
	switch Decorator(m) {
	case Strong, Emphasis, Code, StrikeThrough:
		return true
	}
	return false
}

// Encode writes blocks as a JSON array
func Encode(w io.Writer, bs []Block, indent bool) error {
	if bs == nil {
		bs = []Block{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(bs); err != nil {
		return fmt.Errorf("failed to encode blocks: %w", err)
	}
	return nil
}

// EncodeString is Encode into a string
func EncodeString(bs []Block, indent bool) (string, error) {
	var sb strings.Builder
	if err := Encode(&sb, bs, indent); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteFile encodes blocks into path. A failed write removes the partial file.
func WriteFile(path string, bs []Block, indent bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	return Encode(f, bs, indent)
}

// Decode reads a JSON array of blocks
func Decode(r io.Reader) ([]Block, error) {
	var bs []Block
	if err := json.NewDecoder(r).Decode(&bs); err != nil {
		return nil, fmt.Errorf("failed to decode blocks: %w", err)
	}
	return bs, nil
}
