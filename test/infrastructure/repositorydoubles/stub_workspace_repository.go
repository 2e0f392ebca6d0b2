//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations — no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/domain/repositories"
)

// StubWorkspaceRepository implements repositories.WorkspaceRepository with
// canned responses. Configure the fields your test needs.
type StubWorkspaceRepository struct {
	// --- Discover ---
	Info        *entities.WorkspaceInfo
	DiscoverErr error
	// spy: paths requested
	DiscoveredPaths []string

	// --- ParseWorkspaceData ---
	Data     *entities.WorkspaceData
	ParseErr error
	// spy: sections requested
	ParsedSections [][]entities.Section
}

var _ repositories.WorkspaceRepository = (*StubWorkspaceRepository)(nil)

func (s *StubWorkspaceRepository) Discover(path string) (*entities.WorkspaceInfo, error) {
	s.DiscoveredPaths = append(s.DiscoveredPaths, path)
	if s.DiscoverErr != nil {
		return nil, s.DiscoverErr
	}
	return s.Info, nil
}

func (s *StubWorkspaceRepository) ParseWorkspaceData(
	_ *entities.WorkspaceInfo,
	sections []entities.Section,
) (*entities.WorkspaceData, error) {
	s.ParsedSections = append(s.ParsedSections, sections)
	if s.ParseErr != nil {
		return nil, s.ParseErr
	}
	return s.Data, nil
}
