package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	"testscope.dev/pkg/testscope/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "testscope"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."
	envFileName      = ".env"

	outputFlagName         = "output"
	indexFlagName          = "index"
	sourceFlagName         = "source"
	classpathFlagName      = "classpath"
	selfFlagName           = "self"
	verboseFlagName        = "verbose"
	runtimeVersionFlagName = "runtime-version"
	arityFlagName          = "arity"
	additionalFlagName     = "additional"
	capabilityFlagName     = "capability"
	parallelFlagName       = "parallel"

	indexFilesKey       = "index.files"
	indexSourcesKey     = "index.sources"
	classpathEntriesKey = "classpath.entries"
	classpathSelfKey    = "classpath.self"
	descriptorKey       = "classpath.descriptor"
	outputSuffixKey     = "classpath.output_suffix"
	sourceDescriptorKey = "classpath.source_descriptor"
	runtimeVersionKey   = "runtime.version"
	runtimeArityKey     = "runtime.arity"
	capabilitiesKey     = "capabilities"
	resolveParallelKey  = "resolve.parallel"
	resolveAdditionKey  = "resolve.additional"

	defaultReportsDir      = ".testscope-units"
	defaultResolveParallel = 1

	envPrefix = "TESTSCOPE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".testscope.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	// A missing .env file is not an error.
	_ = godotenv.Load(filepath.Join(configFolderPath, envFileName))

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)
	viper.SetDefault(indexFilesKey, []string{})
	viper.SetDefault(indexSourcesKey, []string{})
	viper.SetDefault(classpathEntriesKey, []string{})
	viper.SetDefault(classpathSelfKey, string(domain.DefaultSelfLocation))
	viper.SetDefault(descriptorKey, domain.DefaultDescriptorResource)
	viper.SetDefault(outputSuffixKey, domain.DefaultOutputSuffix)
	viper.SetDefault(sourceDescriptorKey, domain.DefaultSourceDescriptor)
	viper.SetDefault(runtimeVersionKey, "")
	viper.SetDefault(runtimeArityKey, 0)
	viper.SetDefault(capabilitiesKey, map[string]string{})
	viper.SetDefault(resolveParallelKey, defaultResolveParallel)
	viper.SetDefault(resolveAdditionKey, []string{})

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// classifierOptions reads the classification probes from the configuration.
func classifierOptions() domain.ClassifierOptions {
	return domain.ClassifierOptions{
		DescriptorResource: viper.GetString(descriptorKey),
		OutputSuffix:       viper.GetString(outputSuffixKey),
		SourceDescriptor:   viper.GetString(sourceDescriptorKey),
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
