// Package record decodes and encodes single review record documents.
package record

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/royfox/little-reviews/internal/apperr"
	"github.com/royfox/little-reviews/internal/models"
)

// Accepted timestamp layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// isoLayout is the layout written into record files.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// fields mirrors the on-disk key layout. Dates stay strings here so that
// both quoted and unquoted timestamps decode the same way.
type fields struct {
	ID          string  `yaml:"id,omitempty"`
	Title       string  `yaml:"title"`
	Type        string  `yaml:"type"`
	Author      string  `yaml:"author,omitempty"`
	Rating      float64 `yaml:"rating"`
	Text        body    `yaml:"text"`
	ReleaseYear int     `yaml:"releaseYear"`
	ReviewDate  string  `yaml:"reviewDate"`
	UpdatedDate string  `yaml:"updatedDate,omitempty"`
}

// body is the review text. A list of paragraphs is joined with blank lines
// so that only the single-string form leaves this package.
type body string

func (b *body) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*b = ""
			return nil
		}
		*b = body(n.Value)
		return nil
	case yaml.SequenceNode:
		var paras []string
		if err := n.Decode(&paras); err != nil {
			return fmt.Errorf("text: %w", err)
		}
		kept := paras[:0]
		for _, p := range paras {
			if p = strings.TrimSpace(p); p != "" {
				kept = append(kept, p)
			}
		}
		*b = body(strings.Join(kept, "\n\n"))
		return nil
	}
	return fmt.Errorf("text: line %d: must be a string or a list of paragraphs", n.Line)
}

// Decode parses one record document. The returned review has no ID; the
// caller assigns it from the file name. now bounds the release year check.
//
// Errors: a YAML syntax error is returned wrapped, a document whose top
// level is not a mapping yields apperr.ErrNotMapping, and anything that
// fails field validation wraps apperr.ErrInvalidRecord.
func Decode(data []byte, now time.Time) (models.Review, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.Review{}, fmt.Errorf("record: parse: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return models.Review{}, apperr.ErrNotMapping
	}

	root := withoutKey(doc.Content[0], "id")
	var f fields
	if err := root.Decode(&f); err != nil {
		return models.Review{}, fmt.Errorf("%w: %w", apperr.ErrInvalidRecord, err)
	}

	r, err := f.review()
	if err != nil {
		return models.Review{}, fmt.Errorf("%w: %w", apperr.ErrInvalidRecord, err)
	}
	if err := Validate(r, now); err != nil {
		return models.Review{}, fmt.Errorf("%w: %w", apperr.ErrInvalidRecord, err)
	}
	return r, nil
}

// withoutKey returns a copy of mapping m without key. A content id may have
// any shape because the file name always replaces it.
func withoutKey(m *yaml.Node, key string) *yaml.Node {
	out := *m
	out.Content = make([]*yaml.Node, 0, len(m.Content))
	for i := 0; i+1 < len(m.Content); i += 2 {
		if k := m.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
			continue
		}
		out.Content = append(out.Content, m.Content[i], m.Content[i+1])
	}
	return &out
}

func (f fields) review() (models.Review, error) {
	mt, ok := models.ParseMediaType(f.Type)
	if !ok {
		mt = models.MediaType(f.Type)
	}
	r := models.Review{
		Title:       strings.TrimSpace(f.Title),
		Author:      strings.TrimSpace(f.Author),
		Type:        mt,
		Rating:      f.Rating,
		Text:        string(f.Text),
		ReleaseYear: f.ReleaseYear,
	}

	rd, err := ParseTime(f.ReviewDate)
	if err != nil {
		return r, fmt.Errorf("reviewDate: %w", err)
	}
	r.ReviewDate = rd

	if strings.TrimSpace(f.UpdatedDate) != "" {
		ud, err := ParseTime(f.UpdatedDate)
		if err != nil {
			return r, fmt.Errorf("updatedDate: %w", err)
		}
		r.UpdatedDate = &ud
	}
	return r, nil
}

// ParseTime parses an ISO 8601 timestamp or date and normalises it to UTC.
// An empty string yields the zero time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO 8601 timestamp: %q", s)
}

// FormatTime renders t the way record files store timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// Encode renders r as a single-record YAML document.
func Encode(r models.Review) ([]byte, error) {
	f := fields{
		ID:          r.ID,
		Title:       r.Title,
		Type:        string(r.Type),
		Author:      r.Author,
		Rating:      r.Rating,
		Text:        body(r.Text),
		ReleaseYear: r.ReleaseYear,
		ReviewDate:  FormatTime(r.ReviewDate),
	}
	if r.UpdatedDate != nil {
		f.UpdatedDate = FormatTime(*r.UpdatedDate)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("record: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("record: encode: %w", err)
	}
	return buf.Bytes(), nil
}
