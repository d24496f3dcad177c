package tui

import (
	"fmt"
	"io"
	"strings"

	"tasknav/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }
func (i taskItem) Title() string       { return i.task.Title }

func taskItems(ts []model.Task) []list.Item {
	out := make([]list.Item, 0, len(ts))
	for _, t := range ts {
		out = append(out, taskItem{task: t})
	}
	return out
}

// taskDelegate renders one row per task: checkbox, title and a subtask
// count, cut to the list width.
type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal: lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		done: lipgloss.NewStyle().Foreground(colorDoneFg).Strikethrough(true),
	}
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	contentW := m.Width()
	if !ok || contentW < 4 {
		return
	}
	fmt.Fprint(w, d.row(it.task, contentW, index == m.Index()))
}

func (d taskDelegate) row(t model.Task, width int, selected bool) string {
	box := "[ ] "
	if t.Completed {
		box = "[x] "
	}
	titleW := width - xansi.StringWidth(box)
	if titleW < 1 {
		titleW = 1
	}
	title := xansi.Truncate(t.Title, titleW, "…")

	line := box + title
	if pad := width - xansi.StringWidth(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}

	switch {
	case selected:
		return d.selected.Render(line)
	case t.Completed:
		return d.done.Render(line)
	default:
		return d.normal.Render(line)
	}
}

func newList(items []list.Item) list.Model {
	l := list.New(items, newTaskDelegate(), 0, 0)
	// Header, breadcrumbs and footer are drawn by the app, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	// Emacs-style navigation aliases.
	l.KeyMap.CursorUp.SetKeys(append(l.KeyMap.CursorUp.Keys(), "ctrl+p")...)
	l.KeyMap.CursorDown.SetKeys(append(l.KeyMap.CursorDown.Keys(), "ctrl+n")...)
	return l
}
