package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tasknav/internal/mutate"
	"tasknav/internal/nav"
	"tasknav/internal/repo/repotest"
	"tasknav/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (appModel, *repotest.Counting) {
	t.Helper()
	backend := repotest.New(repotest.Tree())
	s := session.New(backend, session.Options{})
	m := newAppModel(context.Background(), s, nav.New(s, nav.Options{}), mutate.New(s))
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = mm.(appModel)
	m = settle(t, m, m.resolveCmd(true))
	return m, backend
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m appModel, k string) (appModel, tea.Cmd) {
	mm, cmd := m.Update(key(k))
	return mm.(appModel), cmd
}

// settle runs cmd and feeds its pageMsg back into the model.
func settle(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(pageMsg)
	require.True(t, ok, "expected pageMsg")
	mm, _ := m.Update(msg)
	return mm.(appModel)
}

func typeText(m appModel, s string) appModel {
	for _, r := range s {
		mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = mm.(appModel)
	}
	return m
}

func titles(m appModel) []string {
	out := make([]string, 0, len(m.page.Children))
	for _, c := range m.page.Children {
		out = append(out, c.Title)
	}
	return out
}

func TestApp_InitialRootPage(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, "Project", m.page.ParentTitle)
	assert.Equal(t, []string{"Alpha", "Beta"}, titles(m))
	assert.Contains(t, m.View(), "Alpha")
}

func TestApp_EnterAndBackResetSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m.list.Select(0)

	m, cmd := press(m, "enter")
	m = settle(t, m, cmd)
	assert.Equal(t, "Alpha", m.page.ParentTitle)
	assert.Equal(t, 0, m.list.Index())
	require.Len(t, m.crumbs, 2)
	assert.Equal(t, "Project", m.crumbs[0].Title)

	m.list.Select(1)
	m, cmd = press(m, "backspace")
	m = settle(t, m, cmd)
	assert.Equal(t, "Project", m.page.ParentTitle)
	assert.Equal(t, 0, m.list.Index())

	_, cmd = press(m, "backspace")
	assert.Nil(t, cmd, "back at root is a no-op")
}

func TestApp_AddUnderCurrentLevel(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(m, "a")
	require.Equal(t, modeAdd, m.mode)
	m = typeText(m, "New")
	m, cmd := press(m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	m = settle(t, m, cmd)

	assert.Equal(t, []string{"Alpha", "Beta", "New"}, titles(m))
	assert.Equal(t, 2, m.list.Index(), "cursor follows the new task")
}

func TestApp_RenameToggleDelete(t *testing.T) {
	m, backend := newTestModel(t)
	m.list.Select(1)

	m, _ = press(m, "e")
	require.Equal(t, modeRename, m.mode)
	assert.Equal(t, "Beta", m.input.Value())
	m.input.SetValue("Bravo")
	m, cmd := press(m, "enter")
	m = settle(t, m, cmd)
	assert.Equal(t, []string{"Alpha", "Bravo"}, titles(m))

	m, cmd = press(m, " ")
	m = settle(t, m, cmd)
	assert.True(t, m.page.Children[1].Completed)

	m, cmd = press(m, "d")
	m = settle(t, m, cmd)
	assert.Equal(t, []string{"Alpha"}, titles(m))
	assert.Len(t, backend.Snapshot(), 1)
}

func TestApp_ReorderKeepsCursorOnMovedTask(t *testing.T) {
	m, _ := newTestModel(t)
	m.list.Select(0)

	m, cmd := press(m, "J")
	m = settle(t, m, cmd)
	assert.Equal(t, []string{"Beta", "Alpha"}, titles(m))
	assert.Equal(t, 1, m.list.Index())

	_, cmd = press(m, "J")
	assert.Nil(t, cmd, "cannot move past the end")
}

func TestApp_ReloadRefetches(t *testing.T) {
	m, backend := newTestModel(t)
	backend.Reset()

	m, cmd := press(m, "r")
	m = settle(t, m, cmd)
	assert.Equal(t, 1, backend.Calls("load_root_tasks"))
	assert.Equal(t, []string{"Alpha", "Beta"}, titles(m))
}

func TestApp_ExternalChangeReloads(t *testing.T) {
	m, backend := newTestModel(t)
	_, err := backend.Repository.AddTask(context.Background(), "", "From elsewhere")
	require.NoError(t, err)

	mm, cmd := m.Update(storeChangedMsg{})
	m = settle(t, mm.(appModel), cmd)
	assert.Equal(t, []string{"Alpha", "Beta", "From elsewhere"}, titles(m))
}

func TestApp_ErrorsGoToMinibuffer(t *testing.T) {
	m, backend := newTestModel(t)
	backend.FailWith("load_subtasks", errors.New("offline"))

	m, cmd := press(m, "enter")
	m = settle(t, m, cmd)
	assert.Equal(t, "Project", m.page.ParentTitle, "page unchanged on failure")
	assert.True(t, m.minibufferErr)
	assert.Contains(t, m.minibufferText, "offline")

	m.minibufferSetAt = time.Now().Add(-minibufferAutoClearAfter - time.Second)
	m, _ = press(m, "j")
	assert.Empty(t, m.minibufferText)
}

func TestTaskDelegate_TruncatesLongTitles(t *testing.T) {
	m, _ := newTestModel(t)
	d := newTaskDelegate()
	task := m.page.Children[0]
	task.Title = strings.Repeat("long ", 40)
	row := d.row(task, 30, false)
	assert.Contains(t, row, "…")
	assert.Contains(t, row, "[ ] ")
}
