package model

// RootKey is the cache key used for the implicit top-level parent.
const RootKey = "root"

// DefaultRootTitle is shown as the parent title of the root page.
const DefaultRootTitle = "Project"

type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Children  []Task `json:"children"`

	// UI state only; not part of a task's identity.
	IsExpanded bool `json:"isExpanded,omitempty"`
}

// Equal compares identity and persisted fields recursively, ignoring IsExpanded.
func (t Task) Equal(o Task) bool {
	if t.ID != o.ID || t.Title != o.Title || t.Completed != o.Completed {
		return false
	}
	if len(t.Children) != len(o.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// PageData is one tree level: the parent's title plus its direct children.
type PageData struct {
	ParentTitle string `json:"parentTitle"`
	Children    []Task `json:"children"`
}

type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionBack    Direction = "back"
)

// NavigationState tracks the visited level. CurrentID == "" means root.
// History holds ancestors in visit order and never the current id.
type NavigationState struct {
	CurrentID string    `json:"activeTaskId"`
	History   []string  `json:"historyStack"`
	Direction Direction `json:"direction"`
}

func InitialNavigationState() NavigationState {
	return NavigationState{History: []string{}, Direction: DirectionForward}
}

func (s NavigationState) Clone() NavigationState {
	out := s
	out.History = append([]string{}, s.History...)
	return out
}

func (s NavigationState) AtRoot() bool { return s.CurrentID == "" }

// CacheKey maps a parent id to its page cache key.
func CacheKey(parentID string) string {
	if parentID == "" {
		return RootKey
	}
	return parentID
}

// CloneTasks deep-copies a task slice so callers can't alias cached data.
func CloneTasks(ts []Task) []Task {
	if ts == nil {
		return nil
	}
	out := make([]Task, len(ts))
	for i, t := range ts {
		out[i] = t
		out[i].Children = CloneTasks(t.Children)
	}
	return out
}

// DirectChildren copies one level of tasks with their subtrees dropped. A
// page only ever holds its parent's direct children.
func DirectChildren(ts []Task) []Task {
	out := make([]Task, len(ts))
	for i, t := range ts {
		out[i] = t
		out[i].Children = []Task{}
	}
	return out
}

func (p PageData) Clone() PageData {
	return PageData{ParentTitle: p.ParentTitle, Children: CloneTasks(p.Children)}
}

// ChildIDs returns the ids of the page's direct children in display order.
func (p PageData) ChildIDs() []string {
	out := make([]string, 0, len(p.Children))
	for _, c := range p.Children {
		out = append(out, c.ID)
	}
	return out
}
