package models

import (
	"fmt"
	"strings"
	"time"
)

// ContentType distinguishes the two catalog collections. Movies and series
// live in separate tables but share the same resolution shape.
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
)

// ParseContentType normalizes the aliases accepted on the API surface
// ("tv", "show", "film", ...) into a canonical ContentType.
func ParseContentType(raw string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "movie", "movies", "film", "films":
		return ContentTypeMovie, nil
	case "series", "serie", "tv", "show", "shows":
		return ContentTypeSeries, nil
	default:
		return "", fmt.Errorf("unknown content type %q", raw)
	}
}

// CatalogItem is one playable title synchronized into local storage.
// The local ID is assigned once, on first resolution, and never changes.
type CatalogItem struct {
	ID           string      `json:"id"`
	TMDBID       int64       `json:"tmdbId"`
	Type         ContentType `json:"type"`
	Title        string      `json:"title"`
	Overview     string      `json:"overview,omitempty"`
	PosterPath   string      `json:"posterPath,omitempty"`
	BackdropPath string      `json:"backdropPath,omitempty"`
	Slug         string      `json:"slug,omitempty"`
	ReleaseYear  int         `json:"releaseYear,omitempty"`
	Rating       float64     `json:"rating,omitempty"`
	Genres       []string    `json:"genres,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// TitleMetadata is the provider-side metadata record for a single title,
// as returned by the metadata service before it is persisted locally.
type TitleMetadata struct {
	TMDBID       int64
	Type         ContentType
	Title        string
	Overview     string
	PosterPath   string
	BackdropPath string
	ReleaseDate  string // YYYY-MM-DD, may be empty for unscheduled titles
	Status       string
	Rating       float64
	Genres       []string
}

// ReleaseYear parses the year out of ReleaseDate, or 0 if unknown.
func (t *TitleMetadata) ReleaseYear() int {
	if len(t.ReleaseDate) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(t.ReleaseDate[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}

// Released reports whether the title has a release date in the past.
func (t *TitleMetadata) Released(now time.Time) bool {
	if t.ReleaseDate == "" {
		return false
	}
	d, err := time.Parse("2006-01-02", t.ReleaseDate)
	if err != nil {
		return false
	}
	return !d.After(now)
}
