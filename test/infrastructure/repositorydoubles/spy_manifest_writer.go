//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/domain/repositories"
)

// SpyManifestWriter implements repositories.ManifestWriter as a configurable spy.
type SpyManifestWriter struct {
	ApplyErr error
	// spy: inputs received
	AppliedDeps [][]entities.CommonDependency
	AppliedInfo []*entities.WorkspaceInfo
}

var _ repositories.ManifestWriter = (*SpyManifestWriter)(nil)

func (s *SpyManifestWriter) Apply(
	info *entities.WorkspaceInfo,
	deps []entities.CommonDependency,
) error {
	s.AppliedInfo = append(s.AppliedInfo, info)
	s.AppliedDeps = append(s.AppliedDeps, deps)
	return s.ApplyErr
}
