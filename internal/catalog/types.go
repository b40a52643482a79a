package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const catalogTimestampLayout = "2006-01-02 15:04:05"

// Record mirrors a single book as the catalog service returns it.
type Record struct {
	ID            int64  `json:"bookId"`
	Title         string `json:"title"`
	Author        string `json:"author,omitempty"`
	Content       string `json:"content,omitempty"`
	CoverImageURL string `json:"coverImageUrl,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UserID        string `json:"userId,omitempty"`
}

// UnmarshalJSON accepts bookId or id, as number or quoted digits.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		BookID        json.RawMessage `json:"bookId"`
		ID            json.RawMessage `json:"id"`
		Title         *string         `json:"title"`
		Author        *string         `json:"author"`
		Content       *string         `json:"content"`
		CoverImageURL *string         `json:"coverImageUrl"`
		CreatedAt     *string         `json:"createdAt"`
		UserID        json.RawMessage `json:"userId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	idField := raw.BookID
	if isNull(idField) {
		idField = raw.ID
	}
	id, err := parseID(idField)
	if err != nil {
		return err
	}

	owner, err := parseLoose(raw.UserID)
	if err != nil {
		return fmt.Errorf("userId: %w", err)
	}

	*r = Record{
		ID:            id,
		Title:         deref(raw.Title),
		Author:        deref(raw.Author),
		Content:       deref(raw.Content),
		CoverImageURL: deref(raw.CoverImageURL),
		CreatedAt:     deref(raw.CreatedAt),
		UserID:        owner,
	}
	return nil
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp, zero when absent or unparseable.
func (r Record) ParsedCreatedAt() time.Time {
	return ParseTime(r.CreatedAt)
}

// Update carries the editable fields of a book. Nil fields are left out of
// the request and treated as unchanged by the service.
type Update struct {
	Title         *string `json:"title,omitempty"`
	Content       *string `json:"content,omitempty"`
	Author        *string `json:"author,omitempty"`
	CoverImageURL *string `json:"coverImageUrl,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u Update) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Author == nil && u.CoverImageURL == nil
}

// Validate rejects an update that sets an empty title.
func (u Update) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Draft is the payload for creating a new book.
type Draft struct {
	Title         string `json:"title"`
	Content       string `json:"content,omitempty"`
	Author        string `json:"author,omitempty"`
	CoverImageURL string `json:"coverImageUrl,omitempty"`
}

// Validate rejects a draft without a title.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Credentials are posted to /user/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ListQuery narrows /book/list requests.
type ListQuery struct {
	// Owner asks the service for one user's works only.
	Owner string
}

// String returns a pointer to s, for building Update values.
func String(s string) *string {
	return &s
}

// ParseTime parses the timestamp layouts the catalog service emits.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", catalogTimestampLayout, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseID(raw json.RawMessage) (int64, error) {
	if isNull(raw) {
		return 0, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		id, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("book id %s: %w", n, err)
		}
		return id, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("book id: %w", err)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("book id %q: %w", s, err)
	}
	return id, nil
}

// parseLoose reads a string or number field as text.
func parseLoose(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
