package entities

import "fmt"

// Section identifies one of the three dependency tables a member manifest
// may declare.
type Section int

const (
	SectionDependencies Section = iota
	SectionDevDependencies
	SectionBuildDependencies
)

// AllSections returns every section in manifest order.
func AllSections() []Section {
	return []Section{SectionDependencies, SectionDevDependencies, SectionBuildDependencies}
}

// String returns the manifest table name for the section.
func (s Section) String() string {
	switch s {
	case SectionDependencies:
		return "dependencies"
	case SectionDevDependencies:
		return "dev-dependencies"
	case SectionBuildDependencies:
		return "build-dependencies"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}
