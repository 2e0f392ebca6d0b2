package repositories

import (
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
)

// WorkspaceRepository abstracts workspace discovery and declaration
// extraction. Implementations are responsible for filtering out path- and
// git-sourced declarations and for normalizing the default-features flag,
// so the analysis never sees an absent value.
type WorkspaceRepository interface {
	// Discover locates the root manifest under path and lists the members.
	Discover(path string) (*entities.WorkspaceInfo, error)

	// ParseWorkspaceData extracts the shared pool, each member's explicit
	// declarations, and the already-satisfied workspace references for the
	// selected sections.
	ParseWorkspaceData(info *entities.WorkspaceInfo, sections []entities.Section) (*entities.WorkspaceData, error)
}
