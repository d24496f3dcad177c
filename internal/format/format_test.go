package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tasknav/internal/model"

	"github.com/charmbracelet/x/ansi"
)

func samplePage() Page {
	return Page{
		ID:          "A",
		ParentTitle: "Alpha",
		Breadcrumbs: []string{"Project", "Alpha"},
		Children: []model.Task{
			{ID: "A1", Title: "Alpha one", Completed: true, Children: []model.Task{}},
			{ID: "A2", Title: "Alpha two", Children: []model.Task{}},
		},
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, samplePage(), "json", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got Page
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected strict json, got %q: %v", buf.String(), err)
	}
	if got.ParentTitle != "Alpha" || len(got.Children) != 2 {
		t.Fatalf("unexpected page: %+v", got)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected compact single-line json, got %q", buf.String())
	}
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, samplePage(), "text", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Project > Alpha", "[x] Alpha one  A1", "[ ] Alpha two  A2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWrite_TextEmptyPage(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePage(&buf, Page{ParentTitle: "Project", Children: []model.Task{}}, "text", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "(no tasks)") {
		t.Fatalf("expected empty marker, got %q", buf.String())
	}
}

func TestWrite_MarkdownRaw(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, samplePage(), "markdown", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "_Project_\n\n# Alpha\n") {
		t.Fatalf("unexpected heading:\n%s", out)
	}
	if !strings.Contains(out, "- [ ] Alpha two `A2`") {
		t.Fatalf("missing list item:\n%s", out)
	}
}

func TestWrite_MarkdownRendered(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, samplePage(), "markdown", true); err != nil {
		t.Fatalf("write: %v", err)
	}
	plain := strings.Join(strings.Fields(ansi.Strip(buf.String())), " ")
	if !strings.Contains(plain, "Alpha one") || !strings.Contains(plain, "Alpha two") {
		t.Fatalf("rendered markdown lost content:\n%s", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, samplePage(), "edn", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
