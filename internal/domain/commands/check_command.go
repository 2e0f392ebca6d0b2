package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/domain/repositories"
	"github.com/rios0rios0/workspacedeps/internal/output"
)

// Check is the interface for the check command (validation-only mode).
type Check interface {
	Execute(ctx context.Context, opts CheckOptions) error
}

// CheckOptions holds runtime options for one check run.
type CheckOptions struct {
	AnalysisOptions
	Out io.Writer
}

// CheckCommand analyzes the workspace without touching any manifest and
// fails when consolidation work is pending, for use in CI.
type CheckCommand struct {
	workspaceRepo repositories.WorkspaceRepository
}

// NewCheckCommand creates a new CheckCommand.
func NewCheckCommand(workspaceRepo repositories.WorkspaceRepository) *CheckCommand {
	return &CheckCommand{workspaceRepo: workspaceRepo}
}

// Execute runs the analysis and returns a CheckError when dependencies
// could be consolidated or conflicts remain.
func (it *CheckCommand) Execute(_ context.Context, opts CheckOptions) error {
	_, report, analysis, err := runAnalysis(it.workspaceRepo, opts.AnalysisOptions)
	if err != nil {
		return err
	}

	switch opts.Format {
	case output.FormatJSON:
		data, jsonErr := report.ToJSON()
		if jsonErr != nil {
			return jsonErr
		}
		fmt.Fprint(opts.Out, data)
	default:
		fmt.Fprint(opts.Out, report.ToText(opts.Strategy))
	}

	if count := len(analysis.CommonDependencies); count > 0 {
		return &entities.CheckError{Consolidations: count}
	}
	if count := len(analysis.Conflicts); count > 0 {
		return &entities.CheckError{Conflicts: count}
	}

	if opts.Format == output.FormatText {
		fmt.Fprintln(opts.Out, "Check passed: no dependencies to consolidate")
	}
	return nil
}
