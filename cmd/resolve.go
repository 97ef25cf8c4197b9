package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testscope.dev/pkg/testscope/internal/domain"
	m "testscope.dev/pkg/testscope/internal/model"
)

var (
	resolveParallelFlag   int
	runtimeVersionFlag    string
	runtimeArityFlag      int
	additionalClassesFlag []string
	capabilitiesFlag      map[string]string
)

// resolveCmd represents the resolve command.
var resolveCmd = newResolveCmd()

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve TYPE[#METHOD]...",
		Short: "Resolve the deployment unit of one or more tests",
		Long:  resolveLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := parseTargets(args)
			if err != nil {
				return err
			}

			caps, err := parseCapabilities(viper.GetStringMapString(capabilitiesKey))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			return workflow.Resolve(ctx, domain.ResolveArgs{
				IndexArgs:         indexArgs(),
				Targets:           targets,
				AdditionalClasses: parseTypeNames(viper.GetStringSlice(resolveAdditionKey)),
				Runtime: m.Runtime{
					Version: viper.GetString(runtimeVersionKey),
					Arity:   viper.GetInt(runtimeArityKey),
				},
				Capabilities: caps,
				Reports:      m.Path(viper.GetString(outputFlagName)),
				Parallel:     viper.GetInt(resolveParallelKey),
			})
		},
	}

	configureResolveFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func configureResolveFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&resolveParallelFlag, parallelFlagName, "p", viper.GetInt(resolveParallelKey), "number of targets resolved concurrently")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), resolveParallelKey)

	cmd.Flags().StringVar(&runtimeVersionFlag, runtimeVersionFlagName, viper.GetString(runtimeVersionKey), "container runtime version (overrides the index)")
	bindFlagToConfig(cmd.Flags().Lookup(runtimeVersionFlagName), runtimeVersionKey)

	cmd.Flags().IntVar(&runtimeArityFlag, arityFlagName, viper.GetInt(runtimeArityKey), "descriptor constructor arity advertised by the runtime")
	bindFlagToConfig(cmd.Flags().Lookup(arityFlagName), runtimeArityKey)

	cmd.Flags().StringArrayVarP(&additionalClassesFlag, additionalFlagName, "a", viper.GetStringSlice(resolveAdditionKey), "extra class to seed the closure with (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(additionalFlagName), resolveAdditionKey)

	cmd.Flags().StringToStringVar(&capabilitiesFlag, capabilityFlagName, nil, "capability override as NAME=true|false (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(capabilityFlagName), capabilitiesKey)
}

// parseTargets splits TYPE[#METHOD] arguments.
func parseTargets(args []string) ([]domain.Target, error) {
	targets := make([]domain.Target, 0, len(args))

	for _, arg := range args {
		class, method, _ := strings.Cut(strings.TrimSpace(arg), "#")
		if class == "" {
			return nil, fmt.Errorf("invalid target %q: missing type name", arg)
		}

		targets = append(targets, domain.Target{Class: m.TypeName(class), Method: method})
	}

	return targets, nil
}

func parseTypeNames(args []string) []m.TypeName {
	names := make([]m.TypeName, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			names = append(names, m.TypeName(arg))
		}
	}

	return names
}

// parseCapabilities converts configured overrides into capability flags.
func parseCapabilities(values map[string]string) (map[m.Capability]bool, error) {
	caps := make(map[m.Capability]bool, len(values))

	for name, value := range values {
		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid value %q for capability %q: %w", value, name, err)
		}

		caps[m.Capability(strings.ToLower(strings.TrimSpace(name)))] = enabled
	}

	return caps, nil
}
