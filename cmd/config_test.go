package cmd

import (
	"log/slog"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"testscope.dev/pkg/testscope/internal/domain"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "testscope", configBaseName)
	assert.Equal(t, "testscope.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "parallel", parallelFlagName)
	assert.Equal(t, "resolve.parallel", resolveParallelKey)
	assert.Equal(t, "index.files", indexFilesKey)
	assert.Equal(t, "classpath.entries", classpathEntriesKey)
	assert.Equal(t, ".testscope-units", defaultReportsDir)
	assert.Equal(t, 1, defaultResolveParallel)
	assert.Equal(t, "TESTSCOPE", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestClassifierOptions_Defaults(t *testing.T) {
	opts := classifierOptions()

	assert.Equal(t, domain.DefaultDescriptorResource, opts.DescriptorResource)
	assert.Equal(t, domain.DefaultOutputSuffix, opts.OutputSuffix)
	assert.Equal(t, domain.DefaultSourceDescriptor, opts.SourceDescriptor)
}

func TestClassifierOptions_FromConfig(t *testing.T) {
	viper.Set(outputSuffixKey, "/bin")
	t.Cleanup(func() { viper.Set(outputSuffixKey, domain.DefaultOutputSuffix) })

	assert.Equal(t, "/bin", classifierOptions().OutputSuffix)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}
