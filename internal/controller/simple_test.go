package controller

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	m "testscope.dev/pkg/testscope/internal/model"
)

func TestSimpleUI_DisplayReports(t *testing.T) {
	tests := []struct {
		name         string
		reports      []m.UnitReport
		wantContains []string
	}{
		{
			name:         "no reports",
			reports:      nil,
			wantContains: []string{"No deployment units."},
		},
		{
			name: "single unit",
			reports: []m.UnitReport{{
				ID:                     "testscope-1",
				TestClass:              "app.ServiceTest",
				TestMethod:             "TestCreate",
				Shape:                  "trimmed",
				Managed:                []m.Location{"/build/classes"},
				Classes:                []m.TypeName{"app.ServiceTest", "app.Service"},
				Interceptors:           []string{"app.Audit"},
				AlternativeStereotypes: []string{"testscope.dev/scope.ProducesAlternative"},
				Extensions:             []string{"testscope.dev/internal.BeanRegistrantExtension"},
			}},
			wantContains: []string{
				"app.ServiceTest#TestCreate",
				"id: testscope-1  shape: trimmed  managed locations: 1",
				"app.Service",
				"interceptor",
				"app.Audit",
				"testscope.dev/scope.ProducesAlternative",
				"testscope.dev/internal.BeanRegistrantExtension",
			},
		},
		{
			name: "several units",
			reports: []m.UnitReport{
				{ID: "testscope-1", TestClass: "app.ATest", Shape: "legacy"},
				{ID: "testscope-2", TestClass: "app.BTest", Shape: "legacy"},
			},
			wantContains: []string{"app.ATest", "app.BTest", "testscope-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&buf)

			NewSimpleUI(cmd).DisplayReports(context.Background(), tt.reports)

			output := buf.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(output, want) {
					t.Errorf("DisplayReports() output missing %q\ngot:\n%s", want, output)
				}
			}
		})
	}
}

func TestSimpleUI_DisplayManaged(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	NewSimpleUI(cmd).DisplayManaged(context.Background(), []m.Location{"/build/classes", "/lib/engine.jar"})

	output := buf.String()
	for _, want := range []string{"Managed locations (2)", "  /build/classes\n", "  /lib/engine.jar\n"} {
		if !strings.Contains(output, want) {
			t.Errorf("DisplayManaged() output missing %q\ngot:\n%s", want, output)
		}
	}
}

func TestSimpleUI_CanceledContext(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui := NewSimpleUI(cmd)
	ui.DisplayManaged(ctx, []m.Location{"/build/classes"})
	ui.DisplayReports(ctx, nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output after cancellation, got %q", buf.String())
	}
}

func TestIsTTY(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if IsTTY(f) {
		t.Error("IsTTY() = true for a regular file")
	}
}
