package localtree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestList() *List {
	n := 0
	l := NewList()
	l.newID = func() string { n++; return fmt.Sprintf("todo-%d", n) }
	return l
}

func titles(l *List) []string {
	var out []string
	for _, t := range l.Tasks() {
		out = append(out, t.Title)
	}
	return out
}

func TestList_ToggleGroupsDoneLast(t *testing.T) {
	l := newTestList()
	a := l.Add("a")
	l.Add("b")
	l.Add("c")

	require.True(t, l.Toggle(a.ID))
	assert.Equal(t, []string{"b", "c", "a"}, titles(l))

	// New items still land before completed ones.
	l.Add("d")
	assert.Equal(t, []string{"b", "c", "d", "a"}, titles(l))
}

func TestList_SubTodos(t *testing.T) {
	l := newTestList()
	p := l.Add("parent")
	sub, ok := l.AddSub(p.ID, "child")
	require.True(t, ok)
	assert.True(t, l.Tasks()[0].IsExpanded)

	require.True(t, l.UpdateSubText(p.ID, sub.ID, "renamed"))
	assert.Equal(t, "renamed", l.Tasks()[0].Children[0].Title)

	require.True(t, l.SetOpen(p.ID, false))
	assert.False(t, l.Tasks()[0].IsExpanded)

	require.True(t, l.RemoveSub(p.ID, sub.ID))
	assert.Empty(t, l.Tasks()[0].Children)

	_, ok = l.AddSub("missing", "x")
	assert.False(t, ok)
}

func TestList_ReorderAndRemove(t *testing.T) {
	l := newTestList()
	l.Add("a")
	b := l.Add("b")
	l.Add("c")

	require.True(t, l.Reorder(0, 2))
	assert.Equal(t, []string{"b", "c", "a"}, titles(l))
	assert.False(t, l.Reorder(0, 5))

	require.True(t, l.UpdateText(b.ID, "B"))
	require.True(t, l.Remove(b.ID))
	assert.Equal(t, []string{"c", "a"}, titles(l))
	assert.False(t, l.Remove(b.ID))
}
