package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/workspacedeps/internal/analyzer"
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/domain/repositories"
	"github.com/rios0rios0/workspacedeps/internal/output"
	"github.com/rios0rios0/workspacedeps/internal/resolver"
)

// Consolidate is the interface for the consolidate command (root mode).
type Consolidate interface {
	Execute(ctx context.Context, opts ConsolidateOptions) error
}

// AnalysisOptions holds the options shared by every analysis run.
type AnalysisOptions struct {
	WorkspacePath  string
	Sections       []entities.Section
	Exclude        []string
	ExcludeMembers []string
	MinMembers     int
	Strategy       resolver.Strategy
	Format         output.Format
	Verbose        bool
}

// ConsolidateOptions holds runtime options for one consolidation run.
type ConsolidateOptions struct {
	AnalysisOptions
	Fix bool
	In  io.Reader // confirmation prompt input
	Out io.Writer // report output
}

// ConsolidateCommand analyzes the workspace and, when confirmed, rewrites
// the manifests to inherit from the shared pool.
type ConsolidateCommand struct {
	workspaceRepo repositories.WorkspaceRepository
	writer        repositories.ManifestWriter
}

// NewConsolidateCommand creates a new ConsolidateCommand.
func NewConsolidateCommand(
	workspaceRepo repositories.WorkspaceRepository,
	writer repositories.ManifestWriter,
) *ConsolidateCommand {
	return &ConsolidateCommand{
		workspaceRepo: workspaceRepo,
		writer:        writer,
	}
}

// Execute runs the full consolidation flow: discover, analyze, report,
// confirm, apply.
func (it *ConsolidateCommand) Execute(_ context.Context, opts ConsolidateOptions) error {
	info, report, analysis, err := runAnalysis(it.workspaceRepo, opts.AnalysisOptions)
	if err != nil {
		return err
	}

	if opts.Format == output.FormatText {
		fmt.Fprint(opts.Out, report.ToText(opts.Strategy))
	}

	if len(analysis.CommonDependencies) == 0 {
		return it.finish(opts, report, 0)
	}

	if !opts.Fix {
		confirmed, promptErr := it.confirm(opts)
		if promptErr != nil {
			return promptErr
		}
		if !confirmed {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	logger.Infof("Updating %s...", info.RootManifest)
	if applyErr := it.writer.Apply(info, analysis.CommonDependencies); applyErr != nil {
		return fmt.Errorf("failed to apply consolidation: %w", applyErr)
	}

	return it.finish(opts, report, len(analysis.CommonDependencies))
}

// confirm asks for interactive approval before touching any manifest.
func (it *ConsolidateCommand) confirm(opts ConsolidateOptions) (bool, error) {
	fmt.Fprint(opts.Out, "Apply these changes? [y/N] ")

	line, err := bufio.NewReader(opts.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (it *ConsolidateCommand) finish(opts ConsolidateOptions, report *output.Report, applied int) error {
	if opts.Format == output.FormatJSON {
		data, err := report.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprint(opts.Out, data)
	} else if applied > 0 {
		fmt.Fprintf(opts.Out, "Consolidated %d dependencies\n", applied)
	}
	return nil
}

// runAnalysis is the shared pipeline: discover the workspace, extract the
// declarations, and run the consolidation engine.
func runAnalysis(
	workspaceRepo repositories.WorkspaceRepository,
	opts AnalysisOptions,
) (*entities.WorkspaceInfo, *output.Report, *entities.Analysis, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	if len(opts.Sections) == 0 {
		return nil, nil, nil, errors.New("no dependency sections selected for processing")
	}

	info, err := workspaceRepo.Discover(opts.WorkspacePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to discover workspace: %w", err)
	}

	filtered := info.FilterMembers(opts.ExcludeMembers)
	if filtered > 0 {
		logger.Infof("Found %d members (%d excluded by pattern)", len(info.Members), filtered)
	} else {
		logger.Infof("Found %d members", len(info.Members))
	}

	data, err := workspaceRepo.ParseWorkspaceData(info, opts.Sections)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse workspace manifests: %w", err)
	}

	analysis := analyzer.Analyze(data, opts.Exclude, opts.MinMembers, opts.Strategy)
	report := output.New(analysis, info.Root(), len(info.Members))
	return info, report, analysis, nil
}
