package controllers

import (
	"context"
	"errors"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/workspacedeps/internal/domain/commands"
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
)

// CheckController handles the "check" subcommand (validation-only mode).
type CheckController struct {
	command commands.Check
}

// NewCheckController creates a new CheckController.
func NewCheckController(command commands.Check) *CheckController {
	return &CheckController{command: command}
}

// GetBind returns the Cobra command metadata for the check controller.
func (it *CheckController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "check [path]",
		Short: "Fail when dependencies could be consolidated",
		Long: `Analyze the workspace without modifying any manifest and exit with an
error when dependencies could be consolidated or conflicts remain.
Intended for CI pipelines.`,
	}
}

// Execute runs the check mode.
func (it *CheckController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	opts, err := resolveOptions(cmd, args)
	if err != nil {
		logger.Errorf("Invalid options: %v", err)
		os.Exit(1)
	}

	execErr := it.command.Execute(ctx, commands.CheckOptions{
		AnalysisOptions: opts,
		Out:             os.Stdout,
	})
	if execErr == nil {
		return
	}

	var checkErr *entities.CheckError
	if errors.As(execErr, &checkErr) {
		logger.Error(checkErr.Error())
	} else {
		logger.Errorf("Check failed to run: %v", execErr)
	}
	os.Exit(1)
}
