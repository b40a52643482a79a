package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/folio/internal/catalog"
)

// Messages. Every response carries the generation of the view mount that
// requested it so late answers for an abandoned view can be dropped.

type listLoadedMsg struct {
	gen     uint64
	records []catalog.Record
	err     error
}

type detailLoadedMsg struct {
	gen    uint64
	id     int64
	record catalog.Record
	err    error
}

type bookUpdatedMsg struct {
	gen    uint64
	id     int64
	fields catalog.Update
	err    error
}

type bookDeletedMsg struct {
	gen uint64
	id  int64
	err error
}

type bookCreatedMsg struct {
	gen    uint64
	record catalog.Record
	err    error
}

type loginMsg struct {
	user  string
	after View
	err   error
}

// Commands

func loadListCmd(ctx context.Context, svc catalog.Service, query catalog.ListQuery, gen uint64) tea.Cmd {
	return func() tea.Msg {
		records, err := svc.List(ctx, query)
		return listLoadedMsg{gen: gen, records: records, err: err}
	}
}

func loadDetailCmd(ctx context.Context, svc catalog.Service, id int64, gen uint64) tea.Cmd {
	return func() tea.Msg {
		rec, err := svc.Detail(ctx, id)
		return detailLoadedMsg{gen: gen, id: id, record: rec, err: err}
	}
}

func updateBookCmd(ctx context.Context, svc catalog.Service, id int64, fields catalog.Update, gen uint64) tea.Cmd {
	return func() tea.Msg {
		err := svc.Update(ctx, id, fields)
		return bookUpdatedMsg{gen: gen, id: id, fields: fields, err: err}
	}
}

func deleteBookCmd(ctx context.Context, svc catalog.Service, id int64, gen uint64) tea.Cmd {
	return func() tea.Msg {
		err := svc.Delete(ctx, id)
		return bookDeletedMsg{gen: gen, id: id, err: err}
	}
}

func createBookCmd(ctx context.Context, svc catalog.Service, draft catalog.Draft, gen uint64) tea.Cmd {
	return func() tea.Msg {
		rec, err := svc.Create(ctx, draft)
		return bookCreatedMsg{gen: gen, record: rec, err: err}
	}
}

func loginCmd(ctx context.Context, svc catalog.Service, creds catalog.Credentials, after View) tea.Cmd {
	return func() tea.Msg {
		err := svc.Login(ctx, creds)
		return loginMsg{user: creds.Email, after: after, err: err}
	}
}
