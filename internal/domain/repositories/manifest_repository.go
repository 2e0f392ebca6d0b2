package repositories

import (
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
)

// ManifestWriter abstracts applying a consolidation to the workspace: the
// shared entries are written into the root manifest and every member
// declaration they cover is reduced to a workspace reference. Formatting
// and comments of untouched lines are preserved.
type ManifestWriter interface {
	Apply(info *entities.WorkspaceInfo, deps []entities.CommonDependency) error
}
