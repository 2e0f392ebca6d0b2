package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/workspacedeps/internal"
	"github.com/rios0rios0/workspacedeps/internal/infrastructure/controllers"
)

func buildRootCommand(consolidateController *controllers.ConsolidateController) *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "workspacedeps [path]",
		Short: "Consolidate common dependencies into workspace.dependencies",
		Long: `Analyzes a Cargo workspace and moves dependencies shared by multiple
members into [workspace.dependencies], rewriting the members to reference
the pool with workspace = true.

Version conflicts between members are resolved with a configurable
strategy (highest-compatible by default) and reported when they cannot
be reconciled.

Usage modes:
  workspacedeps .              Analyze the current workspace and ask before writing
  workspacedeps . --fix        Apply the changes without asking
  workspacedeps check .        Validation-only mode for CI pipelines`,
		Args: cobra.MaximumNArgs(1),
		Run: func(command *cobra.Command, args []string) {
			consolidateController.Execute(command, args)
		},
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().StringSlice("exclude", nil,
		"Dependency names to leave alone")
	cmd.PersistentFlags().StringSlice("exclude-members", nil,
		"Member name patterns to skip")
	cmd.PersistentFlags().Int("min-members", 2, //nolint:mnd // documented default
		"Minimum number of members sharing a dependency before it is consolidated")
	cmd.PersistentFlags().String("version-resolution", "highest-compatible",
		"Conflict strategy: skip, fail, highest, lowest or highest-compatible")
	cmd.PersistentFlags().String("format", "text",
		"Output format: text or json")
	cmd.PersistentFlags().Bool("no-dependencies", false,
		"Skip the [dependencies] sections")
	cmd.PersistentFlags().Bool("no-dev-dependencies", false,
		"Skip the [dev-dependencies] sections")
	cmd.PersistentFlags().Bool("no-build-dependencies", false,
		"Skip the [build-dependencies] sections")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	// Root-only flags
	cmd.Flags().Bool("fix", false,
		"Apply the changes without asking for confirmation")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  cobra.MaximumNArgs(1),
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	// Inject controllers via DIG
	consolidateController := injectConsolidateController()
	cobraRoot := buildRootCommand(consolidateController)

	// Add all subcommands
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'workspacedeps': %s", err)
	}
}
