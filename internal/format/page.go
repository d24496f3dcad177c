package format

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"tasknav/internal/model"

	"github.com/charmbracelet/glamour"
)

// Page is the CLI view of one navigation level.
type Page struct {
	ID          string       `json:"id"`
	ParentTitle string       `json:"parentTitle"`
	Breadcrumbs []string     `json:"breadcrumbs,omitempty"`
	Children    []model.Task `json:"children"`
	Task        *model.Task  `json:"task,omitempty"`
}

// WritePage renders p as json, plain text or terminal markdown.
func WritePage(w io.Writer, p Page, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, p, pretty)
	case "text":
		_, err := io.WriteString(w, PageText(p))
		return err
	case "markdown", "md":
		md := PageMarkdown(p)
		if !pretty {
			_, err := io.WriteString(w, md)
			return err
		}
		out, err := RenderMarkdown(md)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// PageText renders one line per child: checkbox, title and id.
func PageText(p Page) string {
	var b strings.Builder
	if len(p.Breadcrumbs) > 0 {
		b.WriteString(strings.Join(p.Breadcrumbs, " > "))
		b.WriteString("\n")
	}
	b.WriteString(p.ParentTitle)
	b.WriteString("\n")
	if len(p.Children) == 0 {
		b.WriteString("  (no tasks)\n")
		return b.String()
	}
	for _, t := range p.Children {
		fmt.Fprintf(&b, "  %s %s  %s\n", checkbox(t.Completed), t.Title, t.ID)
	}
	return b.String()
}

// PageMarkdown renders the page as a heading plus a task list.
func PageMarkdown(p Page) string {
	var b strings.Builder
	if len(p.Breadcrumbs) > 1 {
		b.WriteString("_")
		b.WriteString(strings.Join(p.Breadcrumbs[:len(p.Breadcrumbs)-1], " / "))
		b.WriteString("_\n\n")
	}
	fmt.Fprintf(&b, "# %s\n\n", p.ParentTitle)
	if len(p.Children) == 0 {
		b.WriteString("_No tasks._\n")
		return b.String()
	}
	for _, t := range p.Children {
		fmt.Fprintf(&b, "- %s %s `%s`\n", checkbox(t.Completed), t.Title, t.ID)
	}
	return b.String()
}

var (
	mdRendererMu sync.Mutex
	mdRenderer   *glamour.TermRenderer
)

// RenderMarkdown renders md for a terminal. The style is fixed so output
// never waits on terminal background queries.
func RenderMarkdown(md string) (string, error) {
	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	if mdRenderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return "", err
		}
		mdRenderer = r
	}
	return mdRenderer.Render(md)
}
