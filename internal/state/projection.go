package state

import (
	"strings"
	"time"

	"github.com/five82/folio/internal/catalog"
)

// Built-in placeholder values used when a record leaves a field empty.
const (
	DefaultTitle     = "Untitled"
	DefaultAuthor    = "unknown"
	DefaultCreatedAt = "unknown"
	DefaultImage     = "https://via.placeholder.com/140x200?text=No+Image"
	DefaultSummary   = "No description available."

	// ListExcerptLength is how much of the summary list rows show.
	ListExcerptLength = 80

	dateLayout = "2006-01-02"
)

// Defaults are the substitutes used for absent record fields.
type Defaults struct {
	Title     string
	Author    string
	CreatedAt string
	Image     string
	Summary   string
}

// BuiltinDefaults returns the placeholder set used when nothing is configured.
func BuiltinDefaults() Defaults {
	return Defaults{
		Title:     DefaultTitle,
		Author:    DefaultAuthor,
		CreatedAt: DefaultCreatedAt,
		Image:     DefaultImage,
		Summary:   DefaultSummary,
	}
}

// Merge fills empty fields of d from fallback.
func (d Defaults) Merge(fallback Defaults) Defaults {
	return Defaults{
		Title:     firstNonEmpty(d.Title, fallback.Title),
		Author:    firstNonEmpty(d.Author, fallback.Author),
		CreatedAt: firstNonEmpty(d.CreatedAt, fallback.CreatedAt),
		Image:     firstNonEmpty(d.Image, fallback.Image),
		Summary:   firstNonEmpty(d.Summary, fallback.Summary),
	}
}

// Entry is a record shaped for display. Every string field is non-empty.
type Entry struct {
	ID        int64
	Title     string
	Author    string
	CreatedAt string
	Image     string
	Summary   string
	// Created is the parsed timestamp used for ordering; zero when unknown.
	Created time.Time
	Owner   string
}

// Project maps a record onto an Entry, substituting each missing field
// independently. It never fails.
func Project(rec catalog.Record, d Defaults) Entry {
	d = d.Merge(BuiltinDefaults())
	created := rec.ParsedCreatedAt()
	return Entry{
		ID:        rec.ID,
		Title:     orDefault(rec.Title, d.Title),
		Author:    orDefault(rec.Author, d.Author),
		CreatedAt: displayDate(rec.CreatedAt, created, d.CreatedAt),
		Image:     orDefault(rec.CoverImageURL, d.Image),
		Summary:   orDefault(rec.Content, d.Summary),
		Created:   created,
		Owner:     strings.TrimSpace(rec.UserID),
	}
}

// Excerpt returns the summary cut to n runes with a trailing ellipsis.
func (e Entry) Excerpt(n int) string {
	if n <= 0 {
		return e.Summary
	}
	flat := strings.Join(strings.Fields(e.Summary), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "..."
}

func displayDate(raw string, parsed time.Time, fallback string) string {
	if !parsed.IsZero() {
		return parsed.Format(dateLayout)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if runes := []rune(raw); len(runes) > len(dateLayout) {
		return string(runes[:len(dateLayout)])
	}
	return raw
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
