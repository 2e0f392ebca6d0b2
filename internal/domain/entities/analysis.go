package entities

// ConflictType classifies why a dependency could not be consolidated.
type ConflictType string

const (
	ConflictVersionResolution ConflictType = "version_resolution"
	ConflictDefaultFeatures   ConflictType = "default_features"
)

// VersionSpec is one distinct (version, default-features) pair observed for
// a conflicting dependency, with everyone who declared it. The reserved
// "workspace" member marks the shared pool itself.
type VersionSpec struct {
	Version         string
	DefaultFeatures bool
	Members         []string
}

// CommonDependency is a dependency that resolved to a single shared
// declaration. ResolvedFrom is nil when only one version was ever declared;
// otherwise it maps each original version string to the observers that
// declared it (for reporting only).
type CommonDependency struct {
	Name            string
	Version         string
	Package         string
	Registry        string
	DefaultFeatures bool
	Users           []MemberSection
	ResolvedFrom    map[string][]string
}

// ConflictingDependency is a dependency whose declarations could not be
// collapsed to one shared entry.
type ConflictingDependency struct {
	Name          string
	Package       string
	Registry      string
	VersionSpecs  []VersionSpec
	ConflictTypes []ConflictType
}

// Analysis is the full result of one consolidation pass. All slices are
// fully sorted (by name, then version, then member) before the analysis is
// handed to any consumer.
type Analysis struct {
	CommonDependencies  []CommonDependency
	Conflicts           []ConflictingDependency
	UnusedWorkspaceDeps []string
}
