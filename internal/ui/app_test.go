package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/session"
	"github.com/five82/folio/internal/state"
)

type stubService struct {
	records   []catalog.Record
	detailErr error
	updateErr error
	deleteErr error
	createErr error
	loginErr  error

	queries []catalog.ListQuery
	updates map[int64]catalog.Update
	deleted []int64
	nextID  int64
}

func (s *stubService) List(_ context.Context, q catalog.ListQuery) ([]catalog.Record, error) {
	s.queries = append(s.queries, q)
	return append([]catalog.Record(nil), s.records...), nil
}

func (s *stubService) Detail(_ context.Context, id int64) (catalog.Record, error) {
	if s.detailErr != nil {
		return catalog.Record{}, s.detailErr
	}
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return catalog.Record{}, &catalog.HTTPError{Status: 404, Message: "book not found"}
}

func (s *stubService) Create(_ context.Context, d catalog.Draft) (catalog.Record, error) {
	if s.createErr != nil {
		return catalog.Record{}, s.createErr
	}
	s.nextID++
	return catalog.Record{ID: s.nextID, Title: d.Title, Author: d.Author, CreatedAt: "2030-01-01 00:00:00"}, nil
}

func (s *stubService) Update(_ context.Context, id int64, fields catalog.Update) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.updates == nil {
		s.updates = make(map[int64]catalog.Update)
	}
	s.updates[id] = fields
	return nil
}

func (s *stubService) Delete(_ context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubService) Login(_ context.Context, _ catalog.Credentials) error {
	return s.loginErr
}

// sixBooks returns records 1..6, where a higher id is newer.
func sixBooks() []catalog.Record {
	out := make([]catalog.Record, 0, 6)
	for i := 1; i <= 6; i++ {
		out = append(out, catalog.Record{
			ID:        int64(i),
			Title:     fmt.Sprintf("Book %d", i),
			Author:    "Ann",
			Content:   "Some text",
			CreatedAt: fmt.Sprintf("2024-01-0%d 10:00:00", i),
			UserID:    "ann@example.com",
		})
	}
	return out
}

func newTestModel(t *testing.T, svc *stubService, sess session.Context, start View) Model {
	t.Helper()
	dir := t.TempDir()
	m := New(Options{
		Service:     svc,
		Session:     sess,
		SessionPath: filepath.Join(dir, "session.toml"),
		PrefsPath:   filepath.Join(dir, "prefs.toml"),
		StartView:   start,
		PageSize:    4,
		Now:         func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out, cmd
}

// drain runs cmd and feeds the app messages it produces back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		switch msg.(type) {
		case listLoadedMsg, detailLoadedMsg, bookUpdatedMsg, bookDeletedMsg, bookCreatedMsg,
			loginMsg, deleteConfirmedMsg, bookEditSubmittedMsg, bookDraftSubmittedMsg, loginSubmittedMsg:
			m, cmd = send(t, m, msg)
		default:
			return m
		}
	}
	return m
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	m, cmd := send(t, m, msg)
	return drain(t, m, cmd)
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	return drain(t, m, loadListCmd(m.ctx, m.service, m.listQuery(m.view), m.generation))
}

func pageIDs(m Model) []int64 {
	var ids []int64
	for _, e := range m.pageEntries() {
		ids = append(ids, e.ID)
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestModel_LoadAndPaginate(t *testing.T) {
	svc := &stubService{records: sixBooks()}
	m := loaded(t, newTestModel(t, svc, session.Anonymous, ViewCatalog))

	if m.loading {
		t.Fatalf("still loading after list response")
	}
	if got := m.totalPages(); got != 2 {
		t.Fatalf("totalPages = %d, want 2", got)
	}
	if got := pageIDs(m); !equalIDs(got, []int64{6, 5, 4, 3}) {
		t.Fatalf("page 1 = %v, want newest first", got)
	}

	m = press(t, m, "]")
	if m.page != 2 || !equalIDs(pageIDs(m), []int64{2, 1}) {
		t.Fatalf("page 2 = %v (page %d)", pageIDs(m), m.page)
	}
	m = press(t, m, "]")
	if m.page != 2 {
		t.Fatalf("paging past the end moved to %d", m.page)
	}

	m = press(t, m, "g")
	for i := 0; i < 4; i++ {
		m = press(t, m, "j")
	}
	if m.page != 2 || m.cursor != 0 {
		t.Fatalf("moving down past the page: page %d cursor %d, want 2/0", m.page, m.cursor)
	}
	m = press(t, m, "k")
	if m.page != 1 || m.cursor != 3 {
		t.Fatalf("moving up past the page: page %d cursor %d, want 1/3", m.page, m.cursor)
	}

	view := m.View()
	if !strings.Contains(view, "folio") || !strings.Contains(view, "Book 6") {
		t.Fatalf("rendered view missing header or rows:\n%s", view)
	}
}

func TestModel_ListFailureShowsEmptyState(t *testing.T) {
	m := newTestModel(t, &stubService{}, session.Anonymous, ViewCatalog)
	m, _ = send(t, m, listLoadedMsg{gen: m.generation, err: catalog.ErrNetwork})

	if m.list.Len() != 0 || m.listErr == nil {
		t.Fatalf("failed load should leave an empty list with an error")
	}
	if view := m.View(); !strings.Contains(view, "Failed to load books") {
		t.Fatalf("missing failure message:\n%s", view)
	}
}

func TestModel_StaleResponseDropped(t *testing.T) {
	svc := &stubService{records: sixBooks()}
	m := newTestModel(t, svc, session.Anonymous, ViewCatalog)
	first := m.generation

	// Remount before the first response arrives.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if m.generation == first {
		t.Fatalf("remount did not advance the generation")
	}

	m, _ = send(t, m, listLoadedMsg{gen: first, records: sixBooks()})
	if !m.loading || m.list.Len() != 0 {
		t.Fatalf("stale response was applied: loading=%v len=%d", m.loading, m.list.Len())
	}

	m, _ = send(t, m, listLoadedMsg{gen: m.generation, records: sixBooks()[:2]})
	if m.loading || m.list.Len() != 2 {
		t.Fatalf("current response not applied: loading=%v len=%d", m.loading, m.list.Len())
	}
}

func TestModel_WorksRequiresLogin(t *testing.T) {
	svc := &stubService{records: sixBooks()}
	m := loaded(t, newTestModel(t, svc, session.Anonymous, ViewCatalog))

	m = press(t, m, "m")
	if _, ok := m.modal.(loginForm); !ok {
		t.Fatalf("modal = %T, want loginForm", m.modal)
	}
	if m.view != ViewCatalog {
		t.Fatalf("view = %v before login, want catalog", m.view)
	}

	// The form closes itself when it submits.
	m.modal = nil
	m, cmd := send(t, m, loginMsg{user: "ann@example.com", after: ViewWorks})
	m = drain(t, m, cmd)
	if !m.session.Active() || m.view != ViewWorks {
		t.Fatalf("after login: active=%v view=%v", m.session.Active(), m.view)
	}
	last := svc.queries[len(svc.queries)-1]
	if last.Owner != "ann@example.com" {
		t.Fatalf("works query owner = %q", last.Owner)
	}
	if _, err := os.Stat(m.sessionPath); err != nil {
		t.Fatalf("session file not written: %v", err)
	}

	m = press(t, m, "L")
	if m.session.Active() || m.view != ViewCatalog {
		t.Fatalf("after logout: active=%v view=%v", m.session.Active(), m.view)
	}
}

func TestModel_LoginFailureKeepsGate(t *testing.T) {
	svc := &stubService{loginErr: &catalog.HTTPError{Status: 401, Message: "invalid credentials"}}
	m := newTestModel(t, svc, session.Anonymous, ViewCatalog)

	m = drain(t, m, msgCmd(loginSubmittedMsg{creds: catalog.Credentials{Email: "x@y"}, after: ViewWorks}))
	n, ok := m.modal.(noticeModal)
	if !ok || !n.danger || n.message != "invalid credentials" {
		t.Fatalf("modal = %#v, want danger notice", m.modal)
	}
	if m.session.Active() || m.view != ViewCatalog {
		t.Fatalf("failed login changed state")
	}
}

func worksModel(t *testing.T, svc *stubService) Model {
	t.Helper()
	sess := session.Login("ann@example.com", time.Now())
	return loaded(t, newTestModel(t, svc, sess, ViewWorks))
}

func TestModel_DeleteConfirmed(t *testing.T) {
	svc := &stubService{records: sixBooks()}
	m := worksModel(t, svc)

	m = press(t, m, "d")
	if _, ok := m.modal.(confirmModal); !ok {
		t.Fatalf("modal = %T, want confirmModal", m.modal)
	}
	m = press(t, m, "y")

	if len(svc.deleted) != 1 || svc.deleted[0] != 6 {
		t.Fatalf("deleted = %v, want [6]", svc.deleted)
	}
	if _, found := m.list.Get(6); found || m.list.Len() != 5 {
		t.Fatalf("book 6 still listed (len %d)", m.list.Len())
	}
	if n, ok := m.modal.(noticeModal); !ok || n.danger {
		t.Fatalf("modal = %#v, want success notice", m.modal)
	}
}

func TestModel_DeleteCancelled(t *testing.T) {
	svc := &stubService{records: sixBooks()}
	m := worksModel(t, svc)

	m = press(t, m, "d")
	m = press(t, m, "n")
	if m.modal != nil || len(svc.deleted) != 0 || m.list.Len() != 6 {
		t.Fatalf("cancel deleted something: modal=%T deleted=%v", m.modal, svc.deleted)
	}
}

func TestModel_DeleteOnLastPageClampsPage(t *testing.T) {
	svc := &stubService{records: sixBooks()[:5]}
	m := worksModel(t, svc)
	m = press(t, m, "G")
	if m.page != 2 || len(m.pageEntries()) != 1 {
		t.Fatalf("setup: page %d with %d entries", m.page, len(m.pageEntries()))
	}

	m = drain(t, m, msgCmd(deleteConfirmedMsg{id: 1}))
	if m.page != 1 {
		t.Fatalf("page = %d after emptying the last page, want 1", m.page)
	}
}

func TestModel_UpdateFailureLeavesListUnchanged(t *testing.T) {
	svc := &stubService{
		records:   sixBooks(),
		updateErr: &catalog.HTTPError{Status: 500, Message: "boom"},
	}
	m := worksModel(t, svc)
	before := m.list.Entries()

	m = drain(t, m, msgCmd(bookEditSubmittedMsg{id: 3, fields: catalog.Update{Title: catalog.String("Changed")}}))

	n, ok := m.modal.(noticeModal)
	if !ok || !n.danger || n.message != "boom" {
		t.Fatalf("modal = %#v, want error notice with server message", m.modal)
	}
	if m.busy {
		t.Fatalf("busy flag left set")
	}
	after := m.list.Entries()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("entry %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestModel_UpdateSuccessAppliesFields(t *testing.T) {
	svc := &stubService{records: sixBooks()}
	m := worksModel(t, svc)

	m = drain(t, m, msgCmd(bookEditSubmittedMsg{id: 3, fields: catalog.Update{Author: catalog.String("Bea")}}))
	e, ok := m.list.Get(3)
	if !ok || e.Author != "Bea" || e.Title != "Book 3" {
		t.Fatalf("entry 3 = %+v", e)
	}
	if idx := m.list.Index(3); idx != 3 {
		t.Fatalf("updated entry moved to %d", idx)
	}
}

func TestModel_ReloadIgnoredWhileMutating(t *testing.T) {
	svc := &stubService{records: sixBooks()}
	m := worksModel(t, svc)
	gen := m.generation

	m, cmd := send(t, m, deleteConfirmedMsg{id: 6})
	if !m.busy || cmd == nil {
		t.Fatalf("delete did not start: busy=%v", m.busy)
	}
	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("r")},
		{Type: tea.KeyRunes, Runes: []rune("c")},
		{Type: tea.KeyRunes, Runes: []rune("m")},
		{Type: tea.KeyEnter},
	}
	for _, k := range keys {
		m, _ = send(t, m, k)
		if m.generation != gen || m.view != ViewWorks {
			t.Fatalf("key %q remounted during a pending delete", k.String())
		}
	}

	m = drain(t, m, cmd)
	if _, found := m.list.Get(6); found {
		t.Fatalf("book 6 still listed after delete")
	}
}

func TestModel_MutationResultAfterRemount(t *testing.T) {
	svc := &stubService{records: sixBooks()}
	m := worksModel(t, svc)
	gen := m.generation

	m = press(t, m, "r")
	if m.generation == gen || m.loading {
		t.Fatalf("reload: generation %d loading %v", m.generation, m.loading)
	}

	denied := &catalog.HTTPError{Status: 403, Message: "permission denied"}
	m, _ = send(t, m, bookDeletedMsg{gen: gen, id: 6, err: denied})
	n, ok := m.modal.(noticeModal)
	if !ok || !n.danger || !strings.Contains(n.message, "permission denied") {
		t.Fatalf("modal = %#v, want failure notice", m.modal)
	}
	if m.busy || m.list.Len() != 6 {
		t.Fatalf("failed delete changed state: busy=%v len=%d", m.busy, m.list.Len())
	}

	m.modal = nil
	m, _ = send(t, m, bookDeletedMsg{gen: gen, id: 6})
	if _, found := m.list.Get(6); found {
		t.Fatalf("confirmed delete not applied to the remounted list")
	}

	m.modal = nil
	m, _ = send(t, m, bookUpdatedMsg{gen: gen, id: 42, fields: catalog.Update{Title: catalog.String("Gone")}})
	if n, ok := m.modal.(noticeModal); !ok || n.danger {
		t.Fatalf("update of a book outside the remounted list: modal = %#v", m.modal)
	}
}

func TestModel_CreateShowsNewBook(t *testing.T) {
	svc := &stubService{records: sixBooks(), nextID: 100}
	m := worksModel(t, svc)

	m = drain(t, m, msgCmd(bookDraftSubmittedMsg{draft: catalog.Draft{Title: "Fresh"}}))
	e, ok := m.list.Get(101)
	if !ok || e.Title != "Fresh" {
		t.Fatalf("created entry = %+v, found %v", e, ok)
	}
	if sel, _ := m.selectedEntry(); sel.ID != 101 {
		t.Fatalf("cursor on %d, want the new book", sel.ID)
	}
}

func TestModel_CatalogIgnoresMutationKeys(t *testing.T) {
	m := loaded(t, newTestModel(t, &stubService{records: sixBooks()}, session.Anonymous, ViewCatalog))
	for _, k := range []string{"e", "d", "n"} {
		if m = press(t, m, k); m.modal != nil {
			t.Fatalf("key %q opened %T in the catalog", k, m.modal)
		}
	}
}

func TestModel_DetailRoundTrip(t *testing.T) {
	svc := &stubService{records: sixBooks()}
	m := loaded(t, newTestModel(t, svc, session.Anonymous, ViewCatalog))
	m = press(t, m, "]")
	m = press(t, m, "j")

	m = press(t, m, "enter")
	if m.view != ViewDetail || !m.detail.loaded || m.detail.entry.ID != 1 {
		t.Fatalf("detail: view=%v loaded=%v id=%d", m.view, m.detail.loaded, m.detail.entry.ID)
	}

	m = press(t, m, "esc")
	if m.view != ViewCatalog || m.page != 2 {
		t.Fatalf("back: view=%v page=%d, want catalog page 2", m.view, m.page)
	}
}

func TestModel_DetailNotFound(t *testing.T) {
	svc := &stubService{records: sixBooks(), detailErr: &catalog.HTTPError{Status: 404}}
	m := loaded(t, newTestModel(t, svc, session.Anonymous, ViewCatalog))

	m = press(t, m, "enter")
	if !errors.Is(m.detail.err, catalog.ErrNotFound) {
		t.Fatalf("detail err = %v", m.detail.err)
	}
	if view := m.View(); !strings.Contains(view, "Book not found.") {
		t.Fatalf("missing not-found message:\n%s", view)
	}
}

func TestModel_StartViewFallsBackWithoutSession(t *testing.T) {
	m := newTestModel(t, &stubService{}, session.Anonymous, ViewWorks)
	if m.view != ViewCatalog {
		t.Fatalf("view = %v, want catalog", m.view)
	}
}

func TestEditForm_ChangedFieldsOnly(t *testing.T) {
	d := state.BuiltinDefaults()
	entry := state.Project(catalog.Record{ID: 9, Title: "Dune", Author: "Herbert"}, d)

	f := newEditForm(entry, d)
	if got := f.inputs[fieldCover].Value(); got != "" {
		t.Fatalf("cover prefilled with placeholder %q", got)
	}

	_, cmd, closed := f.submit()
	if !closed || cmd != nil {
		t.Fatalf("unchanged form should close without a request")
	}

	f.inputs[fieldAuthor].SetValue("Frank Herbert")
	u := f.changes()
	if u.Title != nil || u.Content != nil || u.CoverImageURL != nil {
		t.Fatalf("unchanged fields sent: %+v", u)
	}
	if u.Author == nil || *u.Author != "Frank Herbert" {
		t.Fatalf("author = %v", u.Author)
	}

	_, cmd, closed = f.submit()
	if !closed || cmd == nil {
		t.Fatalf("changed form should submit")
	}
	msg, ok := cmd().(bookEditSubmittedMsg)
	if !ok || msg.id != 9 {
		t.Fatalf("submit produced %#v", msg)
	}
}

func TestEditForm_UntouchedFieldsNotResent(t *testing.T) {
	d := state.BuiltinDefaults()
	tests := []struct {
		name   string
		record catalog.Record
	}{
		{"crlf content", catalog.Record{ID: 1, Title: "Dune", Content: "line one\r\nline two"}},
		{"tab content", catalog.Record{ID: 2, Title: "Dune", Content: "a\tb"}},
		{"trailing newline", catalog.Record{ID: 3, Title: "Dune", Content: "body\n"}},
		{"padded title", catalog.Record{ID: 4, Title: "  Dune  ", Content: "body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEditForm(state.Project(tt.record, d), d)
			if u := f.changes(); !u.Empty() {
				t.Fatalf("untouched form reports changes: %+v", u)
			}

			f.inputs[fieldTitle].SetValue("Dune Messiah")
			u := f.changes()
			if u.Content != nil || u.Author != nil || u.CoverImageURL != nil {
				t.Fatalf("title edit resent other fields: %+v", u)
			}
			if u.Title == nil || *u.Title != "Dune Messiah" {
				t.Fatalf("title = %v", u.Title)
			}
		})
	}
}

func TestBookForm_EmptyTitleRejected(t *testing.T) {
	f := newCreateForm()
	next, cmd, closed := f.submit()
	if closed || cmd != nil {
		t.Fatalf("empty draft submitted")
	}
	if got := next.(bookForm).err; got != "Title is required." {
		t.Fatalf("err = %q", got)
	}
}

func TestLoginForm_RequiresEmail(t *testing.T) {
	l := newLoginForm(ViewWorks)
	keys := DefaultKeyMap()
	next, _, _ := l.Update(tea.KeyMsg{Type: tea.KeyTab}, keys)
	next, cmd, closed := next.Update(tea.KeyMsg{Type: tea.KeyEnter}, keys)
	if closed || cmd != nil {
		t.Fatalf("login without email submitted")
	}
	if got := next.(loginForm).err; got != "Email is required." {
		t.Fatalf("err = %q", got)
	}
}

func TestViewFromPref(t *testing.T) {
	if ViewFromPref("works") != ViewWorks || ViewFromPref("") != ViewCatalog || ViewFromPref("detail") != ViewCatalog {
		t.Fatalf("ViewFromPref mapping wrong")
	}
}
