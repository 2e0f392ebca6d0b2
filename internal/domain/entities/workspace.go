package entities

import "path/filepath"

// MemberInfo is one workspace member discovered from the root manifest.
type MemberInfo struct {
	Name         string
	ManifestPath string
}

// WorkspaceInfo is the discovered workspace layout.
type WorkspaceInfo struct {
	RootManifest string // Path to the root Cargo.toml
	Members      []MemberInfo
}

// Root returns the workspace root directory.
func (it *WorkspaceInfo) Root() string {
	return filepath.Dir(it.RootManifest)
}

// FilterMembers removes members whose name matches any of the given glob
// patterns and returns how many were removed. Invalid patterns match
// nothing.
func (it *WorkspaceInfo) FilterMembers(patterns []string) int {
	if len(patterns) == 0 {
		return 0
	}

	kept := it.Members[:0]
	for _, member := range it.Members {
		excluded := false
		for _, pattern := range patterns {
			if ok, err := filepath.Match(pattern, member.Name); err == nil && ok {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, member)
		}
	}

	removed := len(it.Members) - len(kept)
	it.Members = kept
	return removed
}

// WorkspaceData is everything the extraction pass feeds into the analysis:
// the shared pool, every member's explicit declarations, and the
// declarations already inheriting from the pool.
type WorkspaceData struct {
	WorkspaceDeps []WorkspaceDependency
	MemberDeps    map[string][]DependencySpec
	WorkspaceRefs []WorkspaceRef
}
