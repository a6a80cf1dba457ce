package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gerunddev/blockmark/internal/blocks"
)

const existingDoc = `{
  "title": "Post",
  "slug": "",
  "content": [
    {"_type": "callout", "_key": "c1", "tone": "warning", "text": "careful"},
    {"_type": "block", "_key": "p1", "style": "normal", "children": [{"_type": "span", "_key": "s1", "text": "old", "marks": []}], "markDefs": []}
  ]
}`

func sampleBlocks() []blocks.Block {
	return []blocks.Block{
		{Kind: blocks.KindHeading, Key: "h", Level: 1, Spans: []blocks.Span{{Key: "hs", Text: "New"}}},
		{Kind: blocks.KindCode, Key: "c", Language: "go", Code: "x := 1"},
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "  \n", "{}", `{"content": null}`} {
		d, err := Parse([]byte(input))
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		if d.Len() != 0 {
			t.Errorf("Parse(%q) has %d entries, want 0", input, d.Len())
		}
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		`[`,
		`[1, 2]`,
		`{"content": {"not": "an array"}}`,
	}

	for _, input := range tests {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("Parse(%s) should fail", input)
		}
	}
}

func TestMergeAppendPreservesForeignBlocks(t *testing.T) {
	d, err := Parse([]byte(existingDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	total, err := d.Merge(sampleBlocks(), Append)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if total != 4 {
		t.Errorf("Merge() total = %d, want 4", total)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out struct {
		Title   string           `json:"title"`
		Content []map[string]any `json:"content"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if out.Title != "Post" {
		t.Errorf("Title = %q, want Post", out.Title)
	}
	var types []string
	for _, c := range out.Content {
		types = append(types, c["_type"].(string))
	}
	if diff := cmp.Diff([]string{"callout", "block", "block", "code"}, types); diff != "" {
		t.Errorf("Content types mismatch (-want +got):\n%s", diff)
	}
	if out.Content[0]["tone"] != "warning" {
		t.Errorf("Foreign block fields were lost: %v", out.Content[0])
	}

	bs, skipped := d.Blocks()
	if skipped != 1 {
		t.Errorf("Blocks() skipped %d, want 1", skipped)
	}
	if len(bs) != 3 {
		t.Errorf("Blocks() decoded %d, want 3", len(bs))
	}
}

func TestMergeReplace(t *testing.T) {
	d, err := Parse([]byte(existingDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	total, err := d.Merge(sampleBlocks(), Replace)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Merge() total = %d, want 2", total)
	}

	bs, skipped := d.Blocks()
	if skipped != 0 {
		t.Errorf("Blocks() skipped %d, want 0", skipped)
	}
	if diff := cmp.Diff(sampleBlocks(), bs); diff != "" {
		t.Errorf("Blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeErrors(t *testing.T) {
	d := New()

	if _, err := d.Merge(sampleBlocks(), "prepend"); err == nil {
		t.Error("Unknown merge mode should fail")
	}
	if _, err := d.Merge([]blocks.Block{{Kind: "embed"}}, Append); err == nil {
		t.Error("Unencodable block should fail")
	}
	if d.Len() != 0 {
		t.Errorf("Failed merges should leave content untouched, got %d entries", d.Len())
	}
}

func TestApplyFields(t *testing.T) {
	d, err := Parse([]byte(existingDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	applied, err := d.ApplyFields(map[string]any{
		"title":   "Ignored",
		"slug":    "post",
		"excerpt": "short",
		"content": "never",
	})
	if err != nil {
		t.Fatalf("ApplyFields failed: %v", err)
	}

	if diff := cmp.Diff([]string{"excerpt", "slug"}, applied); diff != "" {
		t.Errorf("Applied fields mismatch (-want +got):\n%s", diff)
	}

	title, _ := d.Field("title")
	if string(title) != `"Post"` {
		t.Errorf("Existing title was overwritten: %s", title)
	}
	slug, _ := d.Field("slug")
	if string(slug) != `"post"` {
		t.Errorf("slug = %s, want \"post\"", slug)
	}
	if d.Len() != 2 {
		t.Errorf("content should not be touched by ApplyFields, got %d entries", d.Len())
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "post.json")

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if _, err := d.ApplyFields(map[string]any{"title": "Fresh"}); err != nil {
		t.Fatalf("ApplyFields failed: %v", err)
	}
	if _, err := d.Merge(sampleBlocks(), Append); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if err := d.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved document: %v", err)
	}
	text := string(data)
	if strings.Index(text, `"title"`) > strings.Index(text, `"content"`) {
		t.Error("content should be written after the other fields")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bs, _ := loaded.Blocks()
	if diff := cmp.Diff(sampleBlocks(), bs); diff != "" {
		t.Errorf("Loaded blocks mismatch (-want +got):\n%s", diff)
	}
}
