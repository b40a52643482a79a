// Package ui implements the folio terminal interface with Bubble Tea.
//
// The model mounts one view at a time: the public catalog, the session-gated
// "my works" list, or a single book. Every mount bumps a generation counter
// and each network response carries the generation it was issued for, so a
// late answer for a view the user already left is dropped.
//
// Network calls run as tea.Cmd functions against a catalog.Service. Local
// state (the state.List behind a list view) changes only in Update, and only
// after the service reports success; failures surface as a blocking notice
// and leave the list untouched.
//
// Dialogs (edit and create forms, delete confirmation, login, notices)
// implement Modal and take all keyboard input while open.
package ui
