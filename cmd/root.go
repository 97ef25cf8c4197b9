// Package cmd provides the root command and CLI setup for testscope.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"testscope.dev/pkg/testscope/internal/adapter"
	"testscope.dev/pkg/testscope/internal/controller"
	"testscope.dev/pkg/testscope/internal/domain"
	m "testscope.dev/pkg/testscope/internal/model"
)

var fsAdapter adapter.LocationFSAdapter
var indexAdapter adapter.IndexFileAdapter
var sourceAdapter adapter.GoSourceAdapter
var unitStore adapter.UnitStore
var classifier domain.Classifier
var catalog *domain.ExtensionCatalog
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write unit reports.
var reportsOutputDirFlag string

var (
	indexFilesFlag   []string
	indexSourcesFlag []string
	classpathFlag    []string
	selfFlag         string
	verboseFlag      bool
)

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalLocationFSAdapter()
	indexAdapter = adapter.NewLocalIndexFileAdapter(fsAdapter)
	sourceAdapter = adapter.NewLocalGoSourceAdapter(fsAdapter)
	unitStore = adapter.NewLocalUnitStore(fsAdapter)
	classifier = domain.NewClassifier(fsAdapter, classifierOptions())
	catalog = domain.NewExtensionCatalog()
	workflow = domain.NewWorkflow(
		fsAdapter,
		indexAdapter,
		sourceAdapter,
		unitStore,
		ui,
		classifier,
		catalog,
	)
}

const locationsHelp = `Locations are directories or archives (.jar, .zip, .war). Metadata comes
from YAML index files (--index) and Go source trees (--source); when no
classpath is given, every location named by the metadata is used.`

const rootLongDescription = `Testscope computes the minimal deployment a dependency-injection test
container needs to run one test: the classes reachable from the test class,
the interceptors, decorators and alternatives to enable, and the container
extensions to install.

` + locationsHelp

const resolveLongDescription = `Resolve the deployment unit for each target. Targets are qualified type
names, optionally followed by #Method to select a test method.

` + locationsHelp

const classifyLongDescription = `Classify the classpath and print the locations the container manages.

` + locationsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "testscope",
		Short: "Test deployment resolver for dependency-injection containers",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd returns a fresh root command with the shared flags configured.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for deployment unit reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&indexFilesFlag, indexFlagName, "i", viper.GetStringSlice(indexFilesKey), "metadata index file (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(indexFlagName), indexFilesKey)

	cmd.PersistentFlags().StringArrayVarP(&indexSourcesFlag, sourceFlagName, "s", viper.GetStringSlice(indexSourcesKey), "Go source tree to index (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(sourceFlagName), indexSourcesKey)

	cmd.PersistentFlags().StringArrayVarP(&classpathFlag, classpathFlagName, "c", viper.GetStringSlice(classpathEntriesKey), "classpath location (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(classpathFlagName), classpathEntriesKey)

	cmd.PersistentFlags().StringVar(&selfFlag, selfFlagName, viper.GetString(classpathSelfKey), "location of the engine's own types")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(selfFlagName), classpathSelfKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// indexArgs collects the metadata sources and classpath from the configuration.
func indexArgs() domain.IndexArgs {
	return domain.IndexArgs{
		Indexes:   parsePaths(viper.GetStringSlice(indexFilesKey)),
		Sources:   parseLocations(viper.GetStringSlice(indexSourcesKey)),
		Classpath: parseLocations(viper.GetStringSlice(classpathEntriesKey)),
		Self:      m.Location(viper.GetString(classpathSelfKey)),
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

func parseLocations(args []string) []m.Location {
	locations := make([]m.Location, 0, len(args))
	for _, arg := range args {
		locations = append(locations, m.Location(arg))
	}

	return locations
}
