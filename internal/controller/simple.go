package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "testscope.dev/pkg/testscope/internal/model"
)

// SimpleUI implements UI using the cobra command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayManaged prints the managed classpath locations.
func (s *SimpleUI) DisplayManaged(ctx context.Context, locations []m.Location) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.title(fmt.Sprintf("Managed locations (%d)", len(locations)))

	for _, loc := range locations {
		s.printf("  %s\n", loc)
	}
}

// DisplayReports prints one table per resolved deployment unit.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.UnitReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	if len(reports) == 0 {
		s.printf("No deployment units.\n")
		return
	}

	for _, report := range reports {
		s.title(unitTarget(report))
		s.printf("%s\n", unitSummary(report))
		s.printf("\n%s\n", renderUnitTable(report))
	}
}

func renderUnitTable(report m.UnitReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Kind", "Name"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	appendRows := func(kind string, names []string) {
		for _, name := range names {
			table.Append([]string{kind, name})
		}
	}

	classes := make([]string, 0, len(report.Classes))
	for _, c := range report.Classes {
		classes = append(classes, string(c))
	}

	appendRows("class", classes)
	appendRows("interceptor", report.Interceptors)
	appendRows("decorator", report.Decorators)
	appendRows("stereotype", report.AlternativeStereotypes)
	appendRows("alternative", report.AlternativeClasses)
	appendRows("extension", report.Extensions)

	table.SetFooter([]string{"Total Classes", fmt.Sprintf("%d", len(report.Classes))})
	table.Render()

	return strings.TrimRight(tableBuffer.String(), "\n")
}

func unitTarget(report m.UnitReport) string {
	target := string(report.TestClass)
	if report.TestMethod != "" {
		target += "#" + report.TestMethod
	}

	return target
}

func unitSummary(report m.UnitReport) string {
	return fmt.Sprintf("id: %s  shape: %s  managed locations: %d", report.ID, report.Shape, len(report.Managed))
}

func (s *SimpleUI) title(text string) {
	s.printf("%s\n", text)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
