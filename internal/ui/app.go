package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/prefs"
	"github.com/five82/folio/internal/session"
	"github.com/five82/folio/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewCatalog View = iota
	ViewWorks
	ViewDetail
)

// String returns the view's title.
func (v View) String() string {
	switch v {
	case ViewWorks:
		return "My Works"
	case ViewDetail:
		return "Detail"
	default:
		return "Catalog"
	}
}

// prefName is the name stored in prefs.LastView.
func (v View) prefName() string {
	if v == ViewWorks {
		return "works"
	}
	return "catalog"
}

// ViewFromPref maps a stored prefs.LastView value onto a list view.
func ViewFromPref(name string) View {
	if strings.TrimSpace(name) == "works" {
		return ViewWorks
	}
	return ViewCatalog
}

// detailState holds the book shown by the detail view.
type detailState struct {
	id     int64
	entry  state.Entry
	record catalog.Record
	loaded bool
	err    error
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Service     catalog.Service
	Logger      *zap.Logger
	Session     session.Context
	SessionPath string
	PrefsPath   string
	ThemeName   string
	StartView   View
	PageSize    int
	Defaults    state.Defaults
	// Now is the clock used for session timestamps.
	Now func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	service     catalog.Service
	logger      *zap.Logger
	sessionPath string
	prefsPath   string
	pageSize    int
	defaults    state.Defaults
	now         func() time.Time
	keys        keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal
	status   string
	spinner  spinner.Model

	// Session is read once at startup and changed only by login/logout.
	session session.Context

	// Mount state. generation increases on every mount; responses
	// tagged with an older generation are dropped.
	view        View
	listView    View
	generation  uint64
	loading     bool
	busy        bool
	restorePage int

	// List state
	list      *state.List
	listErr   error
	page      int
	cursor    int
	paginator paginator.Model

	// Detail state
	detail         detailState
	detailViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 4
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	defaults := opts.Defaults.Merge(state.BuiltinDefaults())

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.PerPage = pageSize

	startView := opts.StartView
	if startView == ViewDetail || (startView == ViewWorks && !opts.Session.Active()) {
		startView = ViewCatalog
	}

	return Model{
		ctx:         ctx,
		service:     opts.Service,
		logger:      logger,
		sessionPath: opts.SessionPath,
		prefsPath:   prefsPath,
		pageSize:    pageSize,
		defaults:    defaults,
		now:         now,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		spinner:     sp,
		session:     opts.Session,
		view:        startView,
		listView:    startView,
		generation:  1,
		loading:     opts.Service != nil,
		list:        state.NewList(defaults),
		page:        1,
		paginator:   pg,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.service != nil {
		cmds = append(cmds, loadListCmd(m.ctx, m.service, m.listQuery(m.view), m.generation))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initDetailViewport()
		}
		m.ready = true
		m.resizeDetailViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listLoadedMsg:
		return m.handleListLoaded(msg)

	case detailLoadedMsg:
		return m.handleDetailLoaded(msg)

	case bookEditSubmittedMsg:
		m.busy = true
		m.status = "Saving..."
		return m, updateBookCmd(m.ctx, m.service, msg.id, msg.fields, m.generation)

	case bookDraftSubmittedMsg:
		m.busy = true
		m.status = "Creating..."
		return m, createBookCmd(m.ctx, m.service, msg.draft, m.generation)

	case deleteConfirmedMsg:
		m.busy = true
		m.status = "Deleting..."
		return m, deleteBookCmd(m.ctx, m.service, msg.id, m.generation)

	case loginSubmittedMsg:
		m.busy = true
		m.status = "Logging in..."
		return m, loginCmd(m.ctx, m.service, msg.creds, msg.after)

	case bookUpdatedMsg:
		return m.handleBookUpdated(msg)

	case bookDeletedMsg:
		return m.handleBookDeleted(msg)

	case bookCreatedMsg:
		return m.handleBookCreated(msg)

	case loginMsg:
		return m.handleLogin(msg)
	}

	// Cursor blinks and similar ticks belong to the open form.
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if !closed {
			m.modal = modal
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.renderDetail()
		return m, nil

	case m.busy:
		// The mounted list stays put until the pending mutation settles.
		return m, nil

	case key.Matches(msg, m.keys.ViewCatalog):
		m.restorePage = 0
		cmd := m.mountList(ViewCatalog)
		m.savePrefs()
		return m, cmd

	case key.Matches(msg, m.keys.ViewWorks):
		m.restorePage = 0
		cmd := m.openWorks()
		m.savePrefs()
		return m, cmd

	case key.Matches(msg, m.keys.Session):
		return m.toggleSession()

	case key.Matches(msg, m.keys.Reload):
		if m.view == ViewDetail {
			return m, m.mountDetail(m.detail.id)
		}
		m.restorePage = m.page
		return m, m.mountList(m.view)
	}

	if m.view == ViewDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

// mountList switches to a list view and starts a fresh load. The previous
// list is discarded.
func (m *Model) mountList(v View) tea.Cmd {
	m.generation++
	m.view = v
	m.listView = v
	m.list = state.NewList(m.defaults)
	m.listErr = nil
	m.page = 1
	m.cursor = 0
	m.loading = true
	m.detail = detailState{}
	if m.service == nil {
		m.loading = false
		return nil
	}
	return loadListCmd(m.ctx, m.service, m.listQuery(v), m.generation)
}

// openWorks mounts the works view, or asks for a login first.
func (m *Model) openWorks() tea.Cmd {
	if !m.session.Active() {
		m.modal = newLoginForm(ViewWorks)
		return textinput.Blink
	}
	return m.mountList(ViewWorks)
}

// mountDetail switches to the detail view for id.
func (m *Model) mountDetail(id int64) tea.Cmd {
	if m.view != ViewDetail {
		m.restorePage = m.page
	}
	m.generation++
	m.view = ViewDetail
	m.detail = detailState{id: id}
	m.loading = true
	m.detailViewport.SetContent("")
	m.detailViewport.GotoTop()
	if m.service == nil {
		m.loading = false
		return nil
	}
	return loadDetailCmd(m.ctx, m.service, id, m.generation)
}

func (m Model) listQuery(v View) catalog.ListQuery {
	if v == ViewWorks {
		return catalog.ListQuery{Owner: m.session.User}
	}
	return catalog.ListQuery{}
}

// stale reports whether a response belongs to an earlier mount.
func (m Model) stale(gen uint64, kind string) bool {
	if gen == m.generation {
		return false
	}
	m.logger.Debug("dropping stale response",
		zap.String("kind", kind),
		zap.Uint64("generation", gen),
		zap.Uint64("current", m.generation),
	)
	return true
}

func (m Model) handleListLoaded(msg listLoadedMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen, "list") {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.logger.Warn("list load failed", zap.String("view", m.view.String()), zap.Error(msg.err))
		m.list.Reset()
		m.listErr = msg.err
		m.page = 1
		m.cursor = 0
		return m, nil
	}
	m.listErr = nil
	m.list.Load(msg.records)
	m.page = 1
	if m.restorePage > 0 {
		m.page = state.ClampPage(m.restorePage, m.totalPages())
		m.restorePage = 0
	}
	m.clampCursor()
	m.logger.Debug("list loaded", zap.String("view", m.view.String()), zap.Int("books", m.list.Len()))
	return m, nil
}

func (m Model) handleDetailLoaded(msg detailLoadedMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen, "detail") {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.logger.Info("detail load failed", zap.Int64("book_id", msg.id), zap.Error(msg.err))
		m.detail.err = msg.err
		return m, nil
	}
	m.detail.record = msg.record
	m.detail.entry = state.Project(msg.record, m.defaults)
	m.detail.loaded = true
	m.renderDetail()
	return m, nil
}

// listMounted reports whether a mutation result can be applied to the
// list on screen. Failures are reported either way.
func (m Model) listMounted(gen uint64, kind string) bool {
	if m.view == ViewDetail || m.loading {
		m.logger.Debug("mutation result not applied to list",
			zap.String("kind", kind),
			zap.Uint64("generation", gen),
			zap.Uint64("current", m.generation),
		)
		return false
	}
	return true
}

func (m Model) handleBookUpdated(msg bookUpdatedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.status = ""
	if msg.err != nil {
		m.logger.Warn("update failed", zap.Int64("book_id", msg.id), zap.Error(msg.err))
		m.modal = newErrorNotice("Update failed", catalog.Message(msg.err))
		return m, nil
	}
	if m.listMounted(msg.gen, "update") {
		if err := m.list.ApplyUpdate(msg.id, msg.fields); err != nil {
			if msg.gen != m.generation {
				// A remounted list may not contain the book.
				m.logger.Debug("updated book not in current list", zap.Int64("book_id", msg.id))
			} else {
				m.logger.Error("update applied to missing entry", zap.Int64("book_id", msg.id), zap.Error(err))
				m.modal = newErrorNotice("Update failed", err.Error())
				return m, nil
			}
		}
	}
	m.modal = newNotice("Saved", "Book updated.")
	return m, nil
}

func (m Model) handleBookDeleted(msg bookDeletedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.status = ""
	if msg.err != nil {
		m.logger.Warn("delete failed", zap.Int64("book_id", msg.id), zap.Error(msg.err))
		m.modal = newErrorNotice("Delete failed", catalog.Message(msg.err))
		return m, nil
	}
	if m.listMounted(msg.gen, "delete") {
		m.list.ApplyDelete(msg.id)
		m.page = state.ClampPage(m.page, m.totalPages())
		m.clampCursor()
	}
	m.modal = newNotice("Deleted", "Book deleted.")
	return m, nil
}

func (m Model) handleBookCreated(msg bookCreatedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.status = ""
	if msg.err != nil {
		m.logger.Warn("create failed", zap.Error(msg.err))
		m.modal = newErrorNotice("Create failed", catalog.Message(msg.err))
		return m, nil
	}
	if m.listMounted(msg.gen, "create") && m.view == ViewWorks {
		m.list.ApplyCreate(msg.record)
		if idx := m.list.Index(msg.record.ID); idx >= 0 {
			m.page = idx/m.pageSize + 1
			m.cursor = idx % m.pageSize
		}
	}
	m.modal = newNotice("Created", "Book created.")
	return m, nil
}

func (m Model) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.status = ""
	if msg.err != nil {
		m.logger.Info("login failed", zap.String("user", msg.user), zap.Error(msg.err))
		m.modal = newErrorNotice("Login failed", catalog.Message(msg.err))
		return m, nil
	}
	m.session = session.Login(msg.user, m.now())
	if err := session.Save(m.sessionPath, m.session); err != nil {
		m.logger.Warn("session save failed", zap.Error(err))
		m.status = "Logged in (session not saved)"
	} else {
		m.status = "Logged in as " + m.session.User
	}
	if msg.after == ViewWorks {
		cmd := m.mountList(ViewWorks)
		m.savePrefs()
		return m, cmd
	}
	return m, nil
}

// toggleSession logs out when a session is active, otherwise opens the login form.
func (m Model) toggleSession() (tea.Model, tea.Cmd) {
	if !m.session.Active() {
		m.modal = newLoginForm(m.view)
		return m, textinput.Blink
	}
	if err := session.Clear(m.sessionPath); err != nil {
		m.logger.Warn("session clear failed", zap.Error(err))
	}
	m.session = session.Anonymous
	m.status = "Logged out"
	if m.view == ViewWorks || (m.view == ViewDetail && m.listView == ViewWorks) {
		cmd := m.mountList(ViewCatalog)
		m.savePrefs()
		return m, cmd
	}
	return m, nil
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, LastView: m.listView.prefName()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("prefs save failed", zap.Error(err))
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.view {
	case ViewDetail:
		return m.renderDetailView()
	default:
		return m.renderListView()
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
