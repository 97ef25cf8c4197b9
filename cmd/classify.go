package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"testscope.dev/pkg/testscope/internal/domain"
)

// classifyCmd represents the classify command.
var classifyCmd = newClassifyCmd()

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Print the managed classpath locations",
		Long:  classifyLongDescription,
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return workflow.Classify(context.Background(), domain.ClassifyArgs{IndexArgs: indexArgs()})
		},
	}
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
