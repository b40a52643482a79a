// Package state shapes catalog records for display and keeps the ordered
// list a view renders.
//
// # Overview
//
// Three pieces live here:
//
//   - projection.go: Project maps a catalog.Record onto an Entry, filling
//     every missing field from a Defaults set
//   - list.go: List loads records, removes duplicate ids, sorts newest
//     first and applies confirmed mutations locally
//   - page.go: Slice cuts the list into fixed-size pages
//
// # Mutation Semantics
//
// The UI calls ApplyUpdate, ApplyDelete or ApplyCreate only after the
// matching catalog request succeeded. The local list therefore never runs
// ahead of the service and never needs a rollback. A fresh Load after any
// sequence of confirmed mutations yields the same entries.
//
//	if err := client.Delete(ctx, id); err != nil {
//		return err // list unchanged
//	}
//	list.ApplyDelete(id)
//
// ApplyUpdate only touches fields present in the catalog.Update; creation
// date and position stay put. Updating an id the list does not hold
// returns ErrUnknownEntry.
//
// # Ordering
//
// Entries are sorted by creation time, newest first. Records whose
// timestamp is missing or unparseable sort after all dated records and
// keep their relative input order.
//
// # Pagination
//
// Slice never clamps. An empty list has zero pages and any page outside
// 1..total is empty; ClampPage is the caller's tool for keeping a page
// index valid after deletes shrink the list.
//
// # Concurrency
//
// List has no lock. Each view owns its list and touches it only from the
// bubbletea Update loop, so there is a single writer and reader.
package state
