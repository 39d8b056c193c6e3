// Package models defines the domain types for the review catalogue.
package models

import (
	"strings"
	"time"
)

// MediaType is the closed set of reviewed media kinds.
type MediaType string

const (
	Movie  MediaType = "Movie"
	TVShow MediaType = "TV Show"
	Book   MediaType = "Book"
	Music  MediaType = "Music"
)

// MediaTypes lists every media type in display order.
var MediaTypes = []MediaType{Movie, TVShow, Book, Music}

// ParseMediaType resolves a label (case-insensitive) to a MediaType.
// "TVShow" and "TV" are accepted as aliases of "TV Show".
func ParseMediaType(s string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return Movie, true
	case "tv show", "tvshow", "tv":
		return TVShow, true
	case "book":
		return Book, true
	case "music":
		return Music, true
	}
	return "", false
}

// Valid reports whether t is one of the known media types.
func (t MediaType) Valid() bool {
	switch t {
	case Movie, TVShow, Book, Music:
		return true
	}
	return false
}

// Icon returns the icon name used for t.
func (t MediaType) Icon() string {
	switch t {
	case Movie:
		return "film"
	case TVShow:
		return "tv"
	case Book:
		return "book"
	case Music:
		return "music"
	}
	return ""
}

// AuthorLabel returns how the author field is labelled for t, or "" when
// the type has no author.
func (t MediaType) AuthorLabel() string {
	switch t {
	case Book:
		return "Author"
	case Music:
		return "Artist"
	case Movie, TVShow:
		return ""
	}
	return ""
}

// NeedsAuthor reports whether an author is expected for t.
func (t MediaType) NeedsAuthor() bool {
	return t.AuthorLabel() != ""
}

// Review is one reviewed work as it appears in the aggregate artifact.
type Review struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author,omitempty"`
	Type        MediaType  `json:"type"`
	Rating      float64    `json:"rating"`
	Text        string     `json:"text"`
	ReleaseYear int        `json:"releaseYear"`
	ReviewDate  time.Time  `json:"reviewDate"`
	UpdatedDate *time.Time `json:"updatedDate,omitempty"`
}

// RecordFile describes one file in the Record Store.
type RecordFile struct {
	Name    string    `json:"name"`
	ModTime time.Time `json:"mod_time"`
}

// ID returns the stable identifier derived from the file name.
func (f RecordFile) ID() string {
	return IDFromFileName(f.Name)
}

// IDFromFileName strips the directory and the final extension from name.
func IDFromFileName(name string) string {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
