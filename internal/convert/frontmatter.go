package convert

import (
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Meta is the YAML front matter of a markdown source
type Meta struct {
	Title   string         `yaml:"title" json:"title,omitempty"`
	Slug    string         `yaml:"slug" json:"slug,omitempty"`
	Excerpt string         `yaml:"excerpt" json:"excerpt,omitempty"`
	Date    string         `yaml:"date" json:"date,omitempty"`
	Tags    []string       `yaml:"tags" json:"tags,omitempty"`
	Extra   map[string]any `yaml:",inline" json:"extra,omitempty"`
}

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ExtractFrontMatter splits a leading --- delimited YAML block from the body.
// Sources without front matter, or with front matter that fails to parse,
// come back unchanged with a nil Meta.
func ExtractFrontMatter(markdown string) (*Meta, string) {
	if !strings.HasPrefix(strings.TrimLeft(markdown, "\r\n"), "---") {
		return nil, markdown
	}

	var meta Meta
	rest, err := frontmatter.Parse(strings.NewReader(markdown), &meta, yamlFormat)
	if err != nil {
		return nil, markdown
	}

	body := string(rest)
	if body == markdown {
		return nil, markdown
	}
	return &meta, strings.TrimLeft(body, "\r\n")
}

// Fields returns the non-empty well-known front matter values keyed by their
// document field names
func (m *Meta) Fields() map[string]any {
	fields := make(map[string]any)
	if m == nil {
		return fields
	}
	if m.Title != "" {
		fields["title"] = m.Title
	}
	if m.Slug != "" {
		fields["slug"] = m.Slug
	}
	if m.Excerpt != "" {
		fields["excerpt"] = m.Excerpt
	}
	if m.Date != "" {
		fields["date"] = m.Date
	}
	if len(m.Tags) > 0 {
		fields["tags"] = m.Tags
	}
	return fields
}
