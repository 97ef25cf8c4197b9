package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	m "testscope.dev/pkg/testscope/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea. Output that fits on one screen is
// printed directly; longer output opens a scrollable browser.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplayManaged shows the managed classpath locations.
func (p *TUI) DisplayManaged(ctx context.Context, locations []m.Location) {
	lines := make([]string, 0, len(locations))
	for _, loc := range locations {
		lines = append(lines, "  "+string(loc))
	}

	model := newBrowserModel(
		fmt.Sprintf("Managed locations (%d)", len(locations)),
		lines,
		"No managed locations.",
		[]string{fmt.Sprintf("%d managed location(s)", len(locations))},
	)

	p.show(ctx, model)
}

// DisplayReports shows every resolved deployment unit.
func (p *TUI) DisplayReports(ctx context.Context, reports []m.UnitReport) {
	classes := 0
	for _, report := range reports {
		classes += len(report.Classes)
	}

	model := newBrowserModel(
		"Deployment units",
		unitLines(reports),
		"No deployment units.",
		[]string{fmt.Sprintf("%d unit(s) | %d class(es) total", len(reports), classes)},
	)

	p.show(ctx, model)
}

func (p *TUI) show(ctx context.Context, model browserModel) {
	if err := ctx.Err(); err != nil {
		return
	}

	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	if !model.needsPagination() {
		_, _ = fmt.Fprint(p.output, model.View())
		return
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		slog.Error("Failed to run unit browser", "error", err)
		_, _ = fmt.Fprint(p.output, model.View())
	}
}

// unitLines flattens reports into the browser's content lines.
func unitLines(reports []m.UnitReport) []string {
	var lines []string

	for i, report := range reports {
		if i > 0 {
			lines = append(lines, "")
		}

		lines = append(lines, titleStyle.Render(unitTarget(report)), faintStyle.Render(unitSummary(report)))
		lines = append(lines, strings.Split(renderUnitTable(report), "\n")...)
	}

	return lines
}

// browserKeys are the navigation bindings of the browser.
type browserKeys struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
}

func newBrowserKeys() browserKeys {
	return browserKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "u"), key.WithHelp("u", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "d"), key.WithHelp("d", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browserKeys) short() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PageDown, k.PageUp, k.Top, k.Bottom, k.Quit}
}

// browserModel is a scrollable list of lines with a fixed title and summary.
type browserModel struct {
	title    string
	lines    []string
	empty    string
	summary  []string
	keys     browserKeys
	help     help.Model
	height   int
	width    int
	offset   int
	quitting bool
}

func newBrowserModel(title string, lines []string, empty string, summary []string) browserModel {
	return browserModel{
		title:   title,
		lines:   lines,
		empty:   empty,
		summary: summary,
		keys:    newBrowserKeys(),
		help:    help.New(),
	}
}

func (bm browserModel) Init() tea.Cmd {
	return nil
}

func (bm browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		bm.height = msg.Height
		bm.width = msg.Width
		bm.help.Width = msg.Width
		bm.offset = min(bm.offset, bm.maxOffset())

		return bm, nil

	case tea.KeyMsg:
		return bm.handleKeyPress(msg)
	}

	return bm, nil
}

func (bm browserModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, bm.keys.Quit):
		bm.quitting = true
		return bm, tea.Quit

	case key.Matches(msg, bm.keys.Down):
		return bm.scrollDown(), nil

	case key.Matches(msg, bm.keys.Up):
		return bm.scrollUp(), nil

	case key.Matches(msg, bm.keys.Top):
		bm.offset = 0
		return bm, nil

	case key.Matches(msg, bm.keys.Bottom):
		bm.offset = bm.maxOffset()
		return bm, nil

	case key.Matches(msg, bm.keys.PageDown):
		return bm.scrollPageDown(), nil

	case key.Matches(msg, bm.keys.PageUp):
		return bm.scrollPageUp(), nil
	}

	return bm, nil
}

func (bm browserModel) scrollDown() browserModel {
	bm.offset = min(bm.offset+1, bm.maxOffset())
	return bm
}

func (bm browserModel) scrollUp() browserModel {
	bm.offset = max(bm.offset-1, 0)
	return bm
}

func (bm browserModel) scrollPageDown() browserModel {
	bm.offset = min(bm.offset+bm.linesPerPage(), bm.maxOffset())
	return bm
}

func (bm browserModel) scrollPageUp() browserModel {
	bm.offset = max(bm.offset-bm.linesPerPage(), 0)
	return bm
}

// reservedLines counts the title, summary and footer rows around the list.
func (bm browserModel) reservedLines() int {
	// title + blank, blank + summary, blank + position + help
	return 2 + 1 + len(bm.summary) + 3
}

func (bm browserModel) linesPerPage() int {
	if bm.height == 0 {
		return 10
	}

	return max(bm.height-bm.reservedLines(), 1)
}

func (bm browserModel) maxOffset() int {
	return max(len(bm.lines)-bm.linesPerPage(), 0)
}

func (bm browserModel) needsPagination() bool {
	if len(bm.lines) == 0 || bm.height == 0 {
		return false
	}

	return len(bm.lines) > bm.linesPerPage()
}

func (bm browserModel) View() string {
	if bm.quitting {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(bm.title))

	if len(bm.lines) == 0 {
		fmt.Fprintf(&b, "  %s\n", bm.empty)
		return b.String()
	}

	paginated := bm.needsPagination()
	start, end := bm.window(paginated)

	for _, line := range bm.lines[start:end] {
		fmt.Fprintf(&b, "%s\n", line)
	}

	b.WriteString("\n")

	for _, line := range bm.summary {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	if paginated {
		fmt.Fprintf(&b, "\n  Lines %d-%d of %d\n", start+1, end, len(bm.lines))
		fmt.Fprintf(&b, "  %s\n", bm.help.ShortHelpView(bm.keys.short()))
	}

	return b.String()
}

// window returns the visible slice bounds of lines.
func (bm browserModel) window(paginated bool) (int, int) {
	if !paginated {
		return 0, len(bm.lines)
	}

	start := min(max(bm.offset, 0), bm.maxOffset())
	end := min(start+bm.linesPerPage(), len(bm.lines))

	return start, end
}
