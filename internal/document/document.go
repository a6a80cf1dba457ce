package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gerunddev/blockmark/internal/blocks"
)

// ContentField is the document field holding the block array
const ContentField = "content"

// MergeMode controls how converted blocks land in a document
type MergeMode string

const (
	// Append adds blocks after the existing content
	Append MergeMode = "append"
	// Replace discards the existing content
	Replace MergeMode = "replace"
)

// Document is a stored document: arbitrary top-level fields plus a content
// array. Content entries are kept as raw JSON so blocks this tool does not
// produce (callouts, embeds) survive a merge untouched.
type Document struct {
	fields  map[string]json.RawMessage
	content []json.RawMessage
}

// New creates an empty document
func New() *Document {
	return &Document{fields: make(map[string]json.RawMessage)}
}

// Parse decodes a document from JSON
func Parse(data []byte) (*Document, error) {
	d := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(data, &d.fields); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if d.fields == nil {
		d.fields = make(map[string]json.RawMessage)
	}

	if raw, ok := d.fields[ContentField]; ok {
		delete(d.fields, ContentField)
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &d.content); err != nil {
				return nil, fmt.Errorf("document %s is not an array: %w", ContentField, err)
			}
		}
	}

	return d, nil
}

// Load reads a document file; a missing file yields an empty document
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Save writes the document to path, creating parent directories
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// MarshalJSON encodes the fields with content last
func (d *Document) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(d.fields))
	for k := range d.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, k := range keys {
		name, _ := json.Marshal(k)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(d.fields[k])
		buf.WriteByte(',')
	}

	content := d.content
	if content == nil {
		content = []json.RawMessage{}
	}
	data, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"` + ContentField + `":`)
	buf.Write(data)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Merge places converted blocks into the content array and returns how many
// entries the content holds afterwards
func (d *Document) Merge(bs []blocks.Block, mode MergeMode) (int, error) {
	encoded := make([]json.RawMessage, 0, len(bs))
	for i, b := range bs {
		data, err := json.Marshal(b)
		if err != nil {
			return len(d.content), fmt.Errorf("block %d: %w", i, err)
		}
		encoded = append(encoded, data)
	}

	switch mode {
	case Replace:
		d.content = encoded
	case Append, "":
		d.content = append(d.content, encoded...)
	default:
		return len(d.content), fmt.Errorf("unknown merge mode %q", mode)
	}

	return len(d.content), nil
}

// ApplyFields sets top-level fields that are absent or null, leaving existing
// values alone. It returns the names it set, sorted.
func (d *Document) ApplyFields(values map[string]any) ([]string, error) {
	var applied []string
	for name, v := range values {
		if name == ContentField {
			continue
		}
		if raw, ok := d.fields[name]; ok && !isNull(raw) && !isEmptyString(raw) {
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return applied, fmt.Errorf("field %s: %w", name, err)
		}
		d.fields[name] = data
		applied = append(applied, name)
	}
	sort.Strings(applied)
	return applied, nil
}

// Field returns a raw top-level field
func (d *Document) Field(name string) (json.RawMessage, bool) {
	raw, ok := d.fields[name]
	return raw, ok
}

// Len returns the number of content entries
func (d *Document) Len() int {
	return len(d.content)
}

// Blocks decodes the content entries this tool understands. Entries of other
// types are skipped and counted.
func (d *Document) Blocks() ([]blocks.Block, int) {
	var (
		out     []blocks.Block
		skipped int
	)
	for _, raw := range d.content {
		var b blocks.Block
		if err := json.Unmarshal(raw, &b); err != nil {
			skipped++
			continue
		}
		out = append(out, b)
	}
	return out, skipped
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isEmptyString(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte(`""`))
}
