package state

import (
	"errors"
	"fmt"
	"slices"

	"github.com/five82/folio/internal/catalog"
)

// ErrUnknownEntry is returned when a mutation targets an id the list does not hold.
var ErrUnknownEntry = errors.New("entry not in list")

// List is the ordered, de-duplicated set of entries a view renders.
// It is owned by a single goroutine (the UI event loop or a CLI command)
// and is not safe for concurrent use.
type List struct {
	defaults Defaults
	entries  []Entry
}

// NewList returns an empty list projecting with d.
func NewList(d Defaults) *List {
	return &List{defaults: d.Merge(BuiltinDefaults())}
}

// Defaults returns the placeholder set the list projects with.
func (l *List) Defaults() Defaults {
	return l.defaults
}

// Load replaces the contents with the projected records, newest first.
// When the same id appears more than once the last occurrence wins.
func (l *List) Load(records []catalog.Record) {
	last := make(map[int64]int, len(records))
	for i, rec := range records {
		last[rec.ID] = i
	}

	entries := make([]Entry, 0, len(last))
	for i, rec := range records {
		if last[rec.ID] != i {
			continue
		}
		entries = append(entries, Project(rec, l.defaults))
	}
	slices.SortStableFunc(entries, compareNewestFirst)
	l.entries = entries
}

// ApplyUpdate replaces the present fields of the entry for id, keeping its
// position and creation date.
func (l *List) ApplyUpdate(id int64, fields catalog.Update) error {
	idx := l.Index(id)
	if idx < 0 {
		return fmt.Errorf("update %d: %w", id, ErrUnknownEntry)
	}
	e := l.entries[idx]
	if fields.Title != nil {
		e.Title = orDefault(*fields.Title, l.defaults.Title)
	}
	if fields.Author != nil {
		e.Author = orDefault(*fields.Author, l.defaults.Author)
	}
	if fields.Content != nil {
		e.Summary = orDefault(*fields.Content, l.defaults.Summary)
	}
	if fields.CoverImageURL != nil {
		e.Image = orDefault(*fields.CoverImageURL, l.defaults.Image)
	}
	l.entries[idx] = e
	return nil
}

// ApplyDelete removes the entry for id. Removing an absent id is a no-op.
func (l *List) ApplyDelete(id int64) {
	if idx := l.Index(id); idx >= 0 {
		l.entries = slices.Delete(l.entries, idx, idx+1)
	}
}

// ApplyCreate adds rec at its sorted position. Existing entries keep their
// relative order; an entry with the same id is replaced in place.
func (l *List) ApplyCreate(rec catalog.Record) {
	e := Project(rec, l.defaults)
	if idx := l.Index(e.ID); idx >= 0 {
		l.entries[idx] = e
		return
	}
	pos := len(l.entries)
	for i, existing := range l.entries {
		if compareNewestFirst(e, existing) < 0 {
			pos = i
			break
		}
	}
	l.entries = slices.Insert(l.entries, pos, e)
}

// Entries returns a copy of the ordered entries.
func (l *List) Entries() []Entry {
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *List) Len() int {
	return len(l.entries)
}

// Get returns the entry for id.
func (l *List) Get(id int64) (Entry, bool) {
	idx := l.Index(id)
	if idx < 0 {
		return Entry{}, false
	}
	return l.entries[idx], true
}

// Index returns the position of id, or -1.
func (l *List) Index(id int64) int {
	return slices.IndexFunc(l.entries, func(e Entry) bool { return e.ID == id })
}

// Clone returns an independent copy of the list.
func (l *List) Clone() *List {
	return &List{defaults: l.defaults, entries: slices.Clone(l.entries)}
}

// Reset empties the list, as on a view unmount.
func (l *List) Reset() {
	l.entries = nil
}

// compareNewestFirst orders by creation time descending with unknown
// times last.
func compareNewestFirst(a, b Entry) int {
	switch {
	case a.Created.IsZero() && b.Created.IsZero():
		return 0
	case a.Created.IsZero():
		return 1
	case b.Created.IsZero():
		return -1
	}
	return b.Created.Compare(a.Created)
}
