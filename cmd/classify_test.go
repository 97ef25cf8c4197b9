package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testscope.dev/pkg/testscope/internal/domain"
	domainmocks "testscope.dev/pkg/testscope/internal/domain/mocks"
	m "testscope.dev/pkg/testscope/internal/model"
)

func TestClassifyCmd_PassesClasspath(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newClassifyCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Classify", mock.Anything, mock.MatchedBy(func(args domain.ClassifyArgs) bool {
		return len(args.Classpath) == 2 &&
			args.Classpath[0] == m.Location("target/classes") &&
			args.Classpath[1] == m.Location("lib/dep.jar") &&
			len(args.Sources) == 1 &&
			args.Sources[0] == m.Location("./app") &&
			args.Self == m.Location("lib/engine.jar")
	})).Return(nil)

	cmd.SetArgs([]string{
		"classify",
		"-c", "target/classes", "-c", "lib/dep.jar",
		"--source", "./app",
		"--self", "lib/engine.jar",
	})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestClassifyCmd_PositionalArgsAreRejected(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newClassifyCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	cmd.SetArgs([]string{"classify", "target/classes"})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestNewClassifyCmd(t *testing.T) {
	cmd := newClassifyCmd()

	assert.Equal(t, "classify", cmd.Use)
	assert.Equal(t, classifyLongDescription, cmd.Long)
}
