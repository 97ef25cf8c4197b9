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

func TestResolveCmd_PassesTargets(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newResolveCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Resolve", mock.Anything, mock.MatchedBy(func(args domain.ResolveArgs) bool {
		return len(args.Targets) == 2 &&
			args.Targets[0] == domain.Target{Class: "example.com/app.ServiceTest"} &&
			args.Targets[1] == domain.Target{Class: "example.com/app.RepoTest", Method: "TestSave"} &&
			args.Reports == m.Path(".testscope-units")
	})).Return(nil)

	cmd.SetArgs([]string{"resolve", "example.com/app.ServiceTest", "example.com/app.RepoTest#TestSave"})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestResolveCmd_IndexAndRuntimeFlags(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newResolveCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Resolve", mock.Anything, mock.MatchedBy(func(args domain.ResolveArgs) bool {
		return len(args.Indexes) == 2 &&
			args.Indexes[0] == m.Path("a.yaml") &&
			args.Indexes[1] == m.Path("b.yaml") &&
			len(args.Classpath) == 1 &&
			args.Classpath[0] == m.Location("lib/app.jar") &&
			args.Runtime.Version == "2.4.1" &&
			args.Runtime.Arity == 8 &&
			args.Parallel == 3 &&
			len(args.AdditionalClasses) == 1 &&
			args.AdditionalClasses[0] == m.TypeName("example.com/app.Extra")
	})).Return(nil)

	cmd.SetArgs([]string{
		"resolve",
		"--index", "a.yaml", "-i", "b.yaml",
		"--classpath", "lib/app.jar",
		"--runtime-version", "2.4.1",
		"--arity", "8",
		"--parallel", "3",
		"--additional", "example.com/app.Extra",
		"example.com/app.ServiceTest",
	})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestResolveCmd_CapabilityOverrides(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newResolveCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Resolve", mock.Anything, mock.MatchedBy(func(args domain.ResolveArgs) bool {
		return args.Capabilities[m.CapabilityServlet] &&
			!args.Capabilities[m.CapabilityMockito] &&
			len(args.Capabilities) == 2
	})).Return(nil)

	cmd.SetArgs([]string{"resolve", "--capability", "servlet=true,mockito=false", "example.com/app.ServiceTest"})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestResolveCmd_RequiresTarget(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newResolveCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	cmd.SetArgs([]string{"resolve"})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestNewResolveCmd(t *testing.T) {
	cmd := newResolveCmd()

	assert.Equal(t, "resolve TYPE[#METHOD]...", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, resolveLongDescription, cmd.Long)

	for _, name := range []string{parallelFlagName, runtimeVersionFlagName, arityFlagName, additionalFlagName, capabilityFlagName} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestParseTargets(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []domain.Target
		wantErr bool
	}{
		{"class only", []string{"a.T"}, []domain.Target{{Class: "a.T"}}, false},
		{"with method", []string{"a.T#TestX"}, []domain.Target{{Class: "a.T", Method: "TestX"}}, false},
		{"trims spaces", []string{" a.T "}, []domain.Target{{Class: "a.T"}}, false},
		{"missing class", []string{"#TestX"}, nil, true},
		{"empty", []string{""}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTargets(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCapabilities(t *testing.T) {
	caps, err := parseCapabilities(map[string]string{"Servlet": "true", "easymock": "0"})
	require.NoError(t, err)
	assert.Equal(t, map[m.Capability]bool{m.CapabilityServlet: true, m.CapabilityEasyMock: false}, caps)

	_, err = parseCapabilities(map[string]string{"servlet": "maybe"})
	require.Error(t, err)
}

func TestParseTypeNames(t *testing.T) {
	assert.Equal(t, []m.TypeName{"a.A", "b.B"}, parseTypeNames([]string{"a.A", " ", "b.B"}))
	assert.Empty(t, parseTypeNames(nil))
}
