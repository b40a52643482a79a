package state

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"pgregory.net/rapid"

	"github.com/five82/folio/internal/catalog"
)

func ids(entries []Entry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestList_LoadSortsNewestFirstAndDeduplicates(t *testing.T) {
	l := NewList(BuiltinDefaults())
	l.Load([]catalog.Record{
		{ID: 1, Title: "old", CreatedAt: "2022-01-01T00:00:00"},
		{ID: 2, Title: "undated"},
		{ID: 3, Title: "new", CreatedAt: "2024-01-01T00:00:00"},
		{ID: 1, Title: "old again", CreatedAt: "2022-01-01T00:00:00"},
		{ID: 4, Title: "also undated", CreatedAt: "garbage"},
	})

	if diff := cmp.Diff([]int64{3, 1, 2, 4}, ids(l.Entries())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	e, ok := l.Get(1)
	if !ok || e.Title != "old again" {
		t.Fatalf("Get(1) = %+v, %v; want last occurrence", e, ok)
	}
}

func TestList_ApplyUpdateKeepsPositionAndDate(t *testing.T) {
	l := NewList(BuiltinDefaults())
	l.Load([]catalog.Record{
		{ID: 1, Title: "A", Author: "Kim", CreatedAt: "2024-02-01T00:00:00"},
		{ID: 2, Title: "B", CreatedAt: "2024-01-01T00:00:00"},
	})

	err := l.ApplyUpdate(2, catalog.Update{Title: catalog.String("B2"), Author: catalog.String("")})
	if err != nil {
		t.Fatalf("ApplyUpdate returned error: %v", err)
	}
	want := []Entry{
		Project(catalog.Record{ID: 1, Title: "A", Author: "Kim", CreatedAt: "2024-02-01T00:00:00"}, BuiltinDefaults()),
		Project(catalog.Record{ID: 2, Title: "B2", CreatedAt: "2024-01-01T00:00:00"}, BuiltinDefaults()),
	}
	if diff := cmp.Diff(want, l.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestList_ApplyUpdateUnknownID(t *testing.T) {
	l := NewList(BuiltinDefaults())
	l.Load([]catalog.Record{{ID: 1, Title: "A"}})
	before := l.Entries()

	err := l.ApplyUpdate(7, catalog.Update{Title: catalog.String("x")})
	if !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("ApplyUpdate error = %v, want ErrUnknownEntry", err)
	}
	if diff := cmp.Diff(before, l.Entries()); diff != "" {
		t.Fatalf("list changed on unknown id (-before +after):\n%s", diff)
	}
}

func TestList_ApplyDelete(t *testing.T) {
	l := NewList(BuiltinDefaults())
	l.Load([]catalog.Record{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}, {ID: 3, Title: "C"}})

	l.ApplyDelete(2)
	l.ApplyDelete(2)
	l.ApplyDelete(99)
	if diff := cmp.Diff([]int64{1, 3}, ids(l.Entries())); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestList_ApplyCreate(t *testing.T) {
	l := NewList(BuiltinDefaults())
	l.Load([]catalog.Record{
		{ID: 1, Title: "A", CreatedAt: "2024-03-01T00:00:00"},
		{ID: 2, Title: "B", CreatedAt: "2024-01-01T00:00:00"},
		{ID: 3, Title: "C"},
	})

	l.ApplyCreate(catalog.Record{ID: 4, Title: "D", CreatedAt: "2024-02-01T00:00:00"})
	l.ApplyCreate(catalog.Record{ID: 5, Title: "E"})
	l.ApplyCreate(catalog.Record{ID: 1, Title: "A2", CreatedAt: "2024-03-01T00:00:00"})

	if diff := cmp.Diff([]int64{1, 4, 2, 3, 5}, ids(l.Entries())); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if e, _ := l.Get(1); e.Title != "A2" {
		t.Fatalf("existing id should be replaced in place, got %+v", e)
	}
}

func TestList_CloneIsIndependent(t *testing.T) {
	l := NewList(BuiltinDefaults())
	l.Load([]catalog.Record{{ID: 1, Title: "A"}})
	dup := l.Clone()
	dup.ApplyDelete(1)
	if l.Len() != 1 || dup.Len() != 0 {
		t.Fatalf("Clone shares storage: original %d, clone %d", l.Len(), dup.Len())
	}
}

func recordGen() *rapid.Generator[catalog.Record] {
	return rapid.Custom(func(t *rapid.T) catalog.Record {
		rec := catalog.Record{
			ID:    rapid.Int64Range(1, 40).Draw(t, "id"),
			Title: rapid.StringMatching(`[A-Za-z ]{0,12}`).Draw(t, "title"),
		}
		if rapid.Bool().Draw(t, "dated") {
			day := rapid.IntRange(1, 28).Draw(t, "day")
			month := rapid.IntRange(1, 12).Draw(t, "month")
			rec.CreatedAt = fmt.Sprintf("2023-%02d-%02dT10:00:00", month, day)
		}
		return rec
	})
}

func TestList_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := rapid.SliceOf(recordGen()).Draw(t, "records")
		l := NewList(BuiltinDefaults())
		l.Load(records)

		seen := map[int64]bool{}
		for _, e := range l.Entries() {
			if seen[e.ID] {
				t.Fatalf("duplicate id %d after Load", e.ID)
			}
			seen[e.ID] = true
		}

		if l.Len() == 0 {
			return
		}
		entries := l.Entries()
		target := rapid.SampledFrom(entries).Draw(t, "target")

		update := catalog.Update{Title: catalog.String(rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "newTitle"))}
		once := l.Clone()
		if err := once.ApplyUpdate(target.ID, update); err != nil {
			t.Fatalf("ApplyUpdate: %v", err)
		}
		twice := once.Clone()
		if err := twice.ApplyUpdate(target.ID, update); err != nil {
			t.Fatalf("ApplyUpdate: %v", err)
		}
		if diff := cmp.Diff(once.Entries(), twice.Entries()); diff != "" {
			t.Fatalf("update not idempotent:\n%s", diff)
		}
		if once.Index(target.ID) != l.Index(target.ID) {
			t.Fatalf("update moved entry %d", target.ID)
		}

		deleted := l.Clone()
		deleted.ApplyDelete(target.ID)
		if deleted.Len() != l.Len()-1 {
			t.Fatalf("delete left %d entries, want %d", deleted.Len(), l.Len()-1)
		}
		var want []int64
		for _, e := range entries {
			if e.ID != target.ID {
				want = append(want, e.ID)
			}
		}
		if diff := cmp.Diff(want, ids(deleted.Entries()), cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("delete reordered entries (-want +got):\n%s", diff)
		}
	})
}

// Applying a confirmed update locally must match what a reload would show.
func TestList_UpdateMatchesReload(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := rapid.SliceOfNDistinct(recordGen(), 1, 20, func(r catalog.Record) int64 { return r.ID }).Draw(t, "records")
		target := rapid.IntRange(0, len(records)-1).Draw(t, "target")
		title := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "title")

		local := NewList(BuiltinDefaults())
		local.Load(records)
		if err := local.ApplyUpdate(records[target].ID, catalog.Update{Title: catalog.String(title)}); err != nil {
			t.Fatalf("ApplyUpdate: %v", err)
		}

		server := make([]catalog.Record, len(records))
		copy(server, records)
		server[target].Title = title
		reloaded := NewList(BuiltinDefaults())
		reloaded.Load(server)

		if diff := cmp.Diff(reloaded.Entries(), local.Entries()); diff != "" {
			t.Fatalf("local update diverges from reload (-reload +local):\n%s", diff)
		}
	})
}
