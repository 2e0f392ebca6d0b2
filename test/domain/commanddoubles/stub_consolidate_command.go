//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/workspacedeps/internal/domain/commands"
)

// StubConsolidateCommand is a stub implementation of commands.Consolidate.
type StubConsolidateCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastOpts         commands.ConsolidateOptions
}

var _ commands.Consolidate = (*StubConsolidateCommand)(nil)

func (s *StubConsolidateCommand) Execute(
	_ context.Context,
	opts commands.ConsolidateOptions,
) error {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.ExecuteErr
}
