// Package controller provides output adapters for displaying deployment
// resolution results.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	m "testscope.dev/pkg/testscope/internal/model"
)

// UI defines the interface for displaying engine results.
// Implementations can use different output methods.
type UI interface {
	DisplayManaged(ctx context.Context, locations []m.Location)
	DisplayReports(ctx context.Context, reports []m.UnitReport)
}

// NewUI returns the UI used by the command line: the interactive browser
// when the output is a terminal, plain text otherwise.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
