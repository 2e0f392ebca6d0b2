package entities

// DependencySpec is one dependency declaration observed in one member's
// manifest. Declarations pointing at a local path or a git source never
// become specs; they are filtered out during extraction. DefaultFeatures is
// normalized at extraction time: an absent flag means true.
type DependencySpec struct {
	Name            string  // Dependency name as written in the manifest
	Version         string  // Version requirement string, verbatim
	Section         Section // Owning dependency table
	Package         string  // Renamed upstream package, empty when not renamed
	Registry        string  // Custom registry, empty for the default one
	DefaultFeatures bool
}

// WorkspaceDependency is one entry of the shared [workspace.dependencies]
// pool in the root manifest.
type WorkspaceDependency struct {
	Name            string
	Version         string
	Package         string
	Registry        string
	DefaultFeatures bool
}

// WorkspaceRef records a member declaration that already inherits from the
// shared pool via workspace = true.
type WorkspaceRef struct {
	Name    string
	Section Section
}

// DependencyKey is the identity under which declarations from different
// members (and different sections) are considered the same dependency.
// Declarations sharing a name but differing in package or registry never
// merge.
type DependencyKey struct {
	Name     string
	Package  string
	Registry string
}

// Key returns the grouping identity of the declaration.
func (d DependencySpec) Key() DependencyKey {
	return DependencyKey{Name: d.Name, Package: d.Package, Registry: d.Registry}
}

// Key returns the grouping identity of the pool entry.
func (d WorkspaceDependency) Key() DependencyKey {
	return DependencyKey{Name: d.Name, Package: d.Package, Registry: d.Registry}
}

// MemberSection is one (member, section) usage of a dependency.
type MemberSection struct {
	Member  string
	Section Section
}
