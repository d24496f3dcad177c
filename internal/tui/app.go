package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"tasknav/internal/model"
	"tasknav/internal/mutate"
	"tasknav/internal/nav"
	"tasknav/internal/repo"
	"tasknav/internal/session"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeRename
)

// pageMsg carries the outcome of a navigation or mutation.
type pageMsg struct {
	page   model.PageData
	crumbs []nav.Crumb
	// navigated resets the selection to the top.
	navigated bool
	// selectID, when set, keeps the cursor on that task.
	selectID string
	err      error
}

const (
	minibufferAutoClearAfter = 4 * time.Second
	// localWriteGrace suppresses watcher reloads caused by our own writes.
	localWriteGrace = time.Second
)

type appModel struct {
	ctx context.Context

	session *session.Session
	nav     *nav.Controller
	mut     *mutate.Coordinator
	watcher *dirWatcher

	width  int
	height int

	list   list.Model
	input  textinput.Model
	mode   mode
	editID string

	page    model.PageData
	crumbs  []nav.Crumb
	loading bool

	lastLocalWrite time.Time

	minibufferText  string
	minibufferErr   bool
	minibufferSetAt time.Time
}

func newAppModel(ctx context.Context, s *session.Session, nc *nav.Controller, mc *mutate.Coordinator) appModel {
	in := textinput.New()
	in.Prompt = "> "
	in.PromptStyle = lipgloss.NewStyle().Foreground(colorInputPrompt)
	in.CharLimit = 500
	return appModel{
		ctx:     ctx,
		session: s,
		nav:     nc,
		mut:     mc,
		list:    newList(nil),
		input:   in,
		page:    s.Page(),
		loading: true,
	}
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.resolveCmd(true)}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.wait())
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeList()
		return m, nil

	case pageMsg:
		m.loading = false
		if msg.err != nil {
			m.showError(msg.err)
			return m, nil
		}
		m.applyPage(msg)
		return m, nil

	case storeChangedMsg:
		var reload tea.Cmd
		if time.Since(m.lastLocalWrite) > localWriteGrace {
			reload = m.reloadCmd()
		}
		if m.watcher == nil {
			return m, reload
		}
		return m, tea.Batch(reload, m.watcher.wait())

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.expireMinibuffer()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter", "right", "l":
		if t, ok := m.selected(); ok {
			return m, m.navigateCmd(func(ctx context.Context) (model.PageData, error) {
				return m.nav.NavigateTo(ctx, t.ID)
			})
		}
		return m, nil
	case "backspace", "esc", "left", "h":
		if m.session.State().AtRoot() {
			return m, nil
		}
		return m, m.navigateCmd(m.nav.NavigateBack)
	case "H", "home":
		return m, m.navigateCmd(m.nav.NavigateRoot)
	case " ", "space", "x":
		if t, ok := m.selected(); ok {
			m.lastLocalWrite = time.Now()
			return m, m.mutateCmd(t.ID, func(ctx context.Context) (mutate.Result, error) {
				return m.mut.Toggle(ctx, t.ID)
			})
		}
		return m, nil
	case "a":
		m.mode = modeAdd
		m.editID = ""
		m.input.Placeholder = "New task"
		m.input.SetValue("")
		return m, m.input.Focus()
	case "e":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeRename
		m.editID = t.ID
		m.input.Placeholder = ""
		m.input.SetValue(t.Title)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "d", "delete":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		next := m.neighborID(t.ID)
		m.lastLocalWrite = time.Now()
		return m, m.mutateCmd(next, func(ctx context.Context) (mutate.Result, error) {
			return m.mut.Remove(ctx, t.ID)
		})
	case "K", "shift+up":
		return m.reorder(-1)
	case "J", "shift+down":
		return m.reorder(1)
	case "r":
		m.loading = true
		return m, m.reloadCmd()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		mode, id := m.mode, m.editID
		m.mode = modeBrowse
		m.input.Blur()
		if title == "" {
			return m, nil
		}
		m.lastLocalWrite = time.Now()
		if mode == modeRename {
			return m, m.mutateCmd(id, func(ctx context.Context) (mutate.Result, error) {
				return m.mut.Update(ctx, id, title)
			})
		}
		parentID := m.session.CurrentID()
		return m, m.mutateCmd("", func(ctx context.Context) (mutate.Result, error) {
			return m.mut.Add(ctx, parentID, title)
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) reorder(delta int) (tea.Model, tea.Cmd) {
	idx := m.list.Index()
	kids := m.page.Children
	to := idx + delta
	if idx < 0 || idx >= len(kids) || to < 0 || to >= len(kids) {
		return m, nil
	}
	order := m.page.ChildIDs()
	order[idx], order[to] = order[to], order[idx]
	moved := order[to]
	parentID := m.session.CurrentID()
	m.lastLocalWrite = time.Now()
	return m, m.mutateCmd(moved, func(ctx context.Context) (mutate.Result, error) {
		return m.mut.Reorder(ctx, parentID, order)
	})
}

func (m appModel) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

// neighborID is the task the cursor should land on once id is gone.
func (m appModel) neighborID(id string) string {
	kids := m.page.Children
	for i, t := range kids {
		if t.ID != id {
			continue
		}
		if i+1 < len(kids) {
			return kids[i+1].ID
		}
		if i > 0 {
			return kids[i-1].ID
		}
	}
	return ""
}

func (m appModel) navigateCmd(fn func(context.Context) (model.PageData, error)) tea.Cmd {
	ctx, nc := m.ctx, m.nav
	return func() tea.Msg {
		page, err := fn(ctx)
		if err != nil {
			return pageMsg{err: err}
		}
		crumbs, err := nc.Breadcrumbs(ctx)
		return pageMsg{page: page, crumbs: crumbs, navigated: true, err: err}
	}
}

func (m appModel) mutateCmd(selectID string, fn func(context.Context) (mutate.Result, error)) tea.Cmd {
	ctx, nc := m.ctx, m.nav
	return func() tea.Msg {
		res, err := fn(ctx)
		if err != nil {
			return pageMsg{err: err}
		}
		if selectID == "" && res.Task != nil {
			selectID = res.Task.ID
		}
		crumbs, err := nc.Breadcrumbs(ctx)
		return pageMsg{page: res.Page, crumbs: crumbs, selectID: selectID, err: err}
	}
}

// resolveCmd publishes the current level through the cache.
func (m appModel) resolveCmd(navigated bool) tea.Cmd {
	ctx, s, nc := m.ctx, m.session, m.nav
	return func() tea.Msg {
		page, err := s.Resolve(ctx)
		if err != nil {
			return pageMsg{err: err}
		}
		crumbs, err := nc.Breadcrumbs(ctx)
		return pageMsg{page: page, crumbs: crumbs, navigated: navigated, err: err}
	}
}

// reloadCmd drops every cached page and resolves the current level again.
func (m appModel) reloadCmd() tea.Cmd {
	m.session.Cache.Clear()
	selectID := ""
	if t, ok := m.selected(); ok {
		selectID = t.ID
	}
	resolve := m.resolveCmd(false)
	return func() tea.Msg {
		msg := resolve()
		if pm, ok := msg.(pageMsg); ok {
			pm.selectID = selectID
			return pm
		}
		return msg
	}
}

func (m *appModel) applyPage(msg pageMsg) {
	m.page = msg.page
	m.crumbs = msg.crumbs
	m.list.SetItems(taskItems(msg.page.Children))
	switch {
	case msg.navigated:
		m.list.Select(0)
	case msg.selectID != "":
		for i, t := range msg.page.Children {
			if t.ID == msg.selectID {
				m.list.Select(i)
				break
			}
		}
	}
}

func (m *appModel) showError(err error) {
	text := err.Error()
	var inv repo.InvalidOperationError
	switch {
	case errors.As(err, &inv):
		text = inv.Reason
	case repo.IsUnavailable(err):
		text = "backend unavailable: " + text
	}
	m.minibufferText = text
	m.minibufferErr = true
	m.minibufferSetAt = time.Now()
}

func (m *appModel) expireMinibuffer() {
	if m.minibufferText != "" && time.Since(m.minibufferSetAt) > minibufferAutoClearAfter {
		m.minibufferText = ""
		m.minibufferErr = false
	}
}

const (
	headerLines = 3
	footerLines = 2
)

func (m *appModel) resizeList() {
	h := m.height - headerLines - footerLines
	if h < 1 {
		h = 1
	}
	w := m.width - 2
	if w < 10 {
		w = 10
	}
	m.list.SetSize(w, h)
	m.input.Width = w - 4
}

func (m appModel) View() string {
	w := m.width
	if w <= 0 {
		w = 80
	}
	var b strings.Builder
	b.WriteString(xansi.Truncate(styleBreadcrumb().Render(m.breadcrumbLine()), w, "…"))
	b.WriteString("\n")
	b.WriteString(xansi.Truncate(styleTitle().Render(m.page.ParentTitle), w, "…"))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.page.Children) == 0:
		b.WriteString(styleMuted().Render("Loading…"))
	case len(m.page.Children) == 0:
		b.WriteString(styleMuted().Render("No tasks. Press a to add one."))
	default:
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	if m.mode != modeBrowse {
		label := "Add task"
		if m.mode == modeRename {
			label = "Rename"
		}
		b.WriteString(styleMuted().Render(label) + " " + m.input.View())
		return lipgloss.NewStyle().PaddingLeft(1).Render(b.String())
	}
	if m.minibufferText != "" {
		st := styleMuted()
		if m.minibufferErr {
			st = styleError()
		}
		b.WriteString(st.Render(xansi.Truncate(m.minibufferText, w-2, "…")))
	} else {
		b.WriteString(styleMuted().Render(footerHelp))
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(b.String())
}

const footerHelp = "enter open · ⌫ back · space toggle · a add · e edit · d delete · J/K move · r reload · q quit"

func (m appModel) breadcrumbLine() string {
	if len(m.crumbs) == 0 {
		return m.session.Cache.RootTitle()
	}
	parts := make([]string, 0, len(m.crumbs))
	for _, c := range m.crumbs {
		parts = append(parts, c.Title)
	}
	return strings.Join(parts, " › ")
}
