package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	m "testscope.dev/pkg/testscope/internal/model"
)

func TestTUI_DisplayManaged(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	tui.DisplayManaged(context.Background(), []m.Location{"/build/classes", "/lib/engine.jar"})

	output := buf.String()
	if !strings.Contains(output, "Managed locations (2)") {
		t.Error("Output should contain title")
	}
	if !strings.Contains(output, "/lib/engine.jar") {
		t.Error("Output should contain each location")
	}
	if !strings.Contains(output, "2 managed location(s)") {
		t.Error("Output should contain summary")
	}
}

func TestTUI_DisplayReports_Empty(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	tui.DisplayReports(context.Background(), nil)

	output := buf.String()
	if !strings.Contains(output, "No deployment units.") {
		t.Errorf("Expected empty message, got: %s", output)
	}
}

func TestTUI_DisplayReports_SmallList(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	tui.DisplayReports(context.Background(), []m.UnitReport{{
		ID:         "testscope-1",
		TestClass:  "app.ServiceTest",
		TestMethod: "TestCreate",
		Shape:      "trimmed",
		Classes:    []m.TypeName{"app.ServiceTest", "app.Service"},
		Extensions: []string{"testscope.dev/internal.BeanRegistrantExtension"},
	}})

	output := buf.String()
	for _, want := range []string{
		"app.ServiceTest#TestCreate",
		"shape: trimmed",
		"app.Service",
		"testscope.dev/internal.BeanRegistrantExtension",
		"1 unit(s) | 2 class(es) total",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q, got: %s", want, output)
		}
	}

	if strings.Contains(output, "Lines ") {
		t.Error("Short output should not be paginated")
	}
}

func TestTUI_CanceledContext(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tui.DisplayReports(ctx, nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output after cancellation, got %q", buf.String())
	}
}

func manyLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("  line-%03d", i)
	}

	return lines
}

func TestBrowserModel_Pagination_VisibleContent(t *testing.T) {
	model := newBrowserModel("Deployment units", manyLines(100), "none", []string{"summary row"})
	model.height = 25
	model.width = 80

	if !model.needsPagination() {
		t.Fatal("Expected needsPagination to be true with 100 lines and height 25")
	}

	view := model.View()

	if !strings.Contains(view, "line-000") {
		t.Error("First page should contain the first line")
	}
	if strings.Contains(view, "line-099") {
		t.Error("First page should NOT contain the last line")
	}
	if !strings.Contains(view, "Lines 1-18 of 100") {
		t.Errorf("Should show line indicator when paginated, got: %s", view)
	}
	if !strings.Contains(view, "summary row") {
		t.Error("Should always show summary")
	}
	if !strings.Contains(view, "quit") {
		t.Error("Should show key help when paginated")
	}
}

func TestBrowserModel_NoPagination_ShowsAllContent(t *testing.T) {
	model := newBrowserModel("Deployment units", manyLines(5), "none", nil)
	model.height = 40

	if model.needsPagination() {
		t.Error("Five lines should fit on a 40 line screen")
	}

	view := model.View()
	for _, line := range manyLines(5) {
		if !strings.Contains(view, line) {
			t.Errorf("View missing %q", line)
		}
	}
}

func TestBrowserModel_Navigation(t *testing.T) {
	model := newBrowserModel("Deployment units", manyLines(100), "none", []string{"summary row"})
	model.height = 25

	press := func(bm browserModel, msg tea.KeyMsg) browserModel {
		t.Helper()

		next, _ := bm.Update(msg)

		return next.(browserModel)
	}

	runes := func(s string) tea.KeyMsg {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}

	model = press(model, runes("j"))
	if model.offset != 1 {
		t.Errorf("offset after j = %d, want 1", model.offset)
	}

	model = press(model, runes("k"))
	model = press(model, runes("k"))
	if model.offset != 0 {
		t.Errorf("offset should not go below zero, got %d", model.offset)
	}

	model = press(model, runes("d"))
	if model.offset != model.linesPerPage() {
		t.Errorf("offset after page down = %d, want %d", model.offset, model.linesPerPage())
	}

	model = press(model, runes("G"))
	if model.offset != model.maxOffset() {
		t.Errorf("offset after G = %d, want %d", model.offset, model.maxOffset())
	}

	model = press(model, runes("j"))
	if model.offset != model.maxOffset() {
		t.Errorf("offset should stay at the bottom, got %d", model.offset)
	}

	if !strings.Contains(model.View(), "line-099") {
		t.Error("Last page should contain the last line")
	}

	model = press(model, tea.KeyMsg{Type: tea.KeyPgUp})
	if model.offset != model.maxOffset()-model.linesPerPage() {
		t.Errorf("offset after pgup = %d", model.offset)
	}

	model = press(model, runes("g"))
	if model.offset != 0 {
		t.Errorf("offset after g = %d, want 0", model.offset)
	}
}

func TestBrowserModel_ResizeClampsOffset(t *testing.T) {
	model := newBrowserModel("Deployment units", manyLines(30), "none", nil)
	model.height = 10
	model.offset = model.maxOffset()

	next, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 100})
	resized := next.(browserModel)

	if resized.offset != 0 {
		t.Errorf("offset after growing the window = %d, want 0", resized.offset)
	}
	if resized.needsPagination() {
		t.Error("30 lines should fit on a 100 line screen")
	}
}

func TestBrowserModel_Quit(t *testing.T) {
	model := newBrowserModel("Deployment units", manyLines(3), "none", nil)

	next, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return the quit command")
	}

	if !next.(browserModel).quitting {
		t.Error("model should be quitting")
	}

	if next.View() != "" {
		t.Error("quitting model should render nothing")
	}
}

func TestNewUI(t *testing.T) {
	cmd := &cobra.Command{}

	if _, ok := NewUI(cmd, true).(*TUI); !ok {
		t.Error("interactive output should use the TUI")
	}

	if _, ok := NewUI(cmd, false).(*SimpleUI); !ok {
		t.Error("non-interactive output should use the simple UI")
	}
}
