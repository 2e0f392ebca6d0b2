package controllers

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/workspacedeps/internal/domain/commands"
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/output"
)

// ConsolidateController handles the root command: analyze the workspace
// and consolidate shared dependencies into the pool.
type ConsolidateController struct {
	command commands.Consolidate
}

// NewConsolidateController creates a new ConsolidateController.
func NewConsolidateController(command commands.Consolidate) *ConsolidateController {
	return &ConsolidateController{command: command}
}

// GetBind returns the Cobra command metadata for the consolidate controller.
func (it *ConsolidateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "workspacedeps [path]",
		Short: "Consolidate common dependencies into workspace.dependencies",
		Long: `Moves shared dependencies to [workspace.dependencies] and updates members
to use workspace = true. Reduces duplication and ensures version
consistency across the workspace.`,
	}
}

// Execute runs the consolidation mode.
func (it *ConsolidateController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	opts, err := resolveOptions(cmd, args)
	if err != nil {
		logger.Errorf("Invalid options: %v", err)
		os.Exit(1)
	}

	fix, _ := cmd.Flags().GetBool("fix")
	if opts.Format == output.FormatJSON && !fix {
		logger.Error("JSON output requires --fix (non-interactive mode) or the check subcommand")
		os.Exit(1)
	}

	if execErr := it.command.Execute(ctx, commands.ConsolidateOptions{
		AnalysisOptions: opts,
		Fix:             fix,
		In:              os.Stdin,
		Out:             os.Stdout,
	}); execErr != nil {
		logger.Errorf("Consolidation failed: %v", execErr)
		os.Exit(1)
	}
}
