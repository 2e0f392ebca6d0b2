package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/resolver"
)

// Format selects how an analysis is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps a CLI/config value to a Format.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatText, FormatJSON:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("unknown output format %q", raw)
	}
}

// schemaVersion identifies the JSON envelope layout.
const schemaVersion = "1"

// Report is the serializable projection of one analysis. It never
// re-derives or alters an engine decision; the analysis arrives fully
// sorted and is rendered as-is.
type Report struct {
	Version                     string       `json:"version"`
	Workspace                   Workspace    `json:"workspace"`
	Summary                     Summary      `json:"summary"`
	CommonDependencies          []Dependency `json:"common_dependencies"`
	Conflicts                   []Conflict   `json:"conflicts"`
	UnusedWorkspaceDependencies []string     `json:"unused_workspace_dependencies"`
}

type Workspace struct {
	Root        string `json:"root"`
	MemberCount int    `json:"member_count"`
}

type Summary struct {
	DependenciesToConsolidate int `json:"dependencies_to_consolidate"`
	ConflictsResolved         int `json:"conflicts_resolved"`
	ConflictsUnresolved       int `json:"conflicts_unresolved"`
	UnusedWorkspaceDeps       int `json:"unused_workspace_deps"`
}

type Dependency struct {
	Name            string              `json:"name"`
	Version         string              `json:"version"`
	Members         []Member            `json:"members"`
	Package         string              `json:"package,omitempty"`
	Registry        string              `json:"registry,omitempty"`
	DefaultFeatures bool                `json:"default_features"`
	ResolvedFrom    map[string][]string `json:"resolved_from,omitempty"`
}

type Member struct {
	Name    string `json:"name"`
	Section string `json:"section"`
}

type Conflict struct {
	Name          string                  `json:"name"`
	Package       string                  `json:"package,omitempty"`
	Registry      string                  `json:"registry,omitempty"`
	VersionSpecs  []VersionSpec           `json:"version_specs"`
	ConflictTypes []entities.ConflictType `json:"conflict_types"`
}

type VersionSpec struct {
	Version         string   `json:"version"`
	DefaultFeatures bool     `json:"default_features"`
	Members         []string `json:"members"`
}

// New builds a Report from an analysis.
func New(analysis *entities.Analysis, workspaceRoot string, memberCount int) *Report {
	resolvedCount := 0
	deps := make([]Dependency, 0, len(analysis.CommonDependencies))
	for _, dep := range analysis.CommonDependencies {
		if dep.ResolvedFrom != nil {
			resolvedCount++
		}
		members := make([]Member, 0, len(dep.Users))
		for _, user := range dep.Users {
			members = append(members, Member{Name: user.Member, Section: user.Section.String()})
		}
		deps = append(deps, Dependency{
			Name:            dep.Name,
			Version:         dep.Version,
			Members:         members,
			Package:         dep.Package,
			Registry:        dep.Registry,
			DefaultFeatures: dep.DefaultFeatures,
			ResolvedFrom:    dep.ResolvedFrom,
		})
	}

	conflicts := make([]Conflict, 0, len(analysis.Conflicts))
	for _, conflict := range analysis.Conflicts {
		specs := make([]VersionSpec, 0, len(conflict.VersionSpecs))
		for _, spec := range conflict.VersionSpecs {
			specs = append(specs, VersionSpec{
				Version:         spec.Version,
				DefaultFeatures: spec.DefaultFeatures,
				Members:         spec.Members,
			})
		}
		conflicts = append(conflicts, Conflict{
			Name:          conflict.Name,
			Package:       conflict.Package,
			Registry:      conflict.Registry,
			VersionSpecs:  specs,
			ConflictTypes: conflict.ConflictTypes,
		})
	}

	return &Report{
		Version:   schemaVersion,
		Workspace: Workspace{Root: workspaceRoot, MemberCount: memberCount},
		Summary: Summary{
			DependenciesToConsolidate: len(analysis.CommonDependencies),
			ConflictsResolved:         resolvedCount,
			ConflictsUnresolved:       len(analysis.Conflicts),
			UnusedWorkspaceDeps:       len(analysis.UnusedWorkspaceDeps),
		},
		CommonDependencies:          deps,
		Conflicts:                   conflicts,
		UnusedWorkspaceDependencies: analysis.UnusedWorkspaceDeps,
	}
}

// ToJSON serializes the report as indented JSON with a trailing newline.
func (r *Report) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize report to JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// ToText renders the human-readable report.
func (r *Report) ToText(strategy resolver.Strategy) string {
	var b strings.Builder

	b.WriteString("\nSummary:\n")
	fmt.Fprintf(&b, "  %d dependencies to consolidate\n", r.Summary.DependenciesToConsolidate)
	if r.Summary.ConflictsResolved > 0 {
		fmt.Fprintf(&b, "  %d version conflicts resolved\n", r.Summary.ConflictsResolved)
	}
	if r.Summary.ConflictsUnresolved > 0 {
		fmt.Fprintf(&b, "  %d conflicts could not resolve\n", r.Summary.ConflictsUnresolved)
	}
	if r.Summary.UnusedWorkspaceDeps > 0 {
		fmt.Fprintf(&b, "  %d unused workspace dependencies\n", r.Summary.UnusedWorkspaceDeps)
	}
	b.WriteString("\n")

	if len(r.CommonDependencies) > 0 {
		b.WriteString("Will consolidate:\n")
		for _, dep := range r.CommonDependencies {
			fmt.Fprintf(&b, "  %s = %q in: %s\n", dep.Name, dep.Version, formatMembers(dep.Members))
		}
		b.WriteString("\n")

		r.writeResolvedConflicts(&b, strategy)
	} else {
		b.WriteString("No dependencies to consolidate.\n\n")
	}

	if len(r.Conflicts) > 0 {
		b.WriteString("Could not resolve:\n")
		for _, conflict := range r.Conflicts {
			fmt.Fprintf(&b, "  %s (%s):\n", conflict.Name, formatReasons(conflict.ConflictTypes))
			for _, spec := range conflict.VersionSpecs {
				if len(spec.Members) == 0 {
					continue
				}
				fmt.Fprintf(&b, "    %s (default-features=%t) in: %s\n",
					spec.Version, spec.DefaultFeatures, strings.Join(spec.Members, ", "))
			}
		}
		b.WriteString("\n")
	}

	if len(r.UnusedWorkspaceDependencies) > 0 {
		b.WriteString("Unused workspace dependencies:\n")
		for _, name := range r.UnusedWorkspaceDependencies {
			fmt.Fprintf(&b, "  %s\n", name)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (r *Report) writeResolvedConflicts(b *strings.Builder, strategy resolver.Strategy) {
	var resolved []Dependency
	for _, dep := range r.CommonDependencies {
		if dep.ResolvedFrom != nil {
			resolved = append(resolved, dep)
		}
	}
	if len(resolved) == 0 {
		return
	}

	fmt.Fprintf(b, "Resolved conflicts (using %s):\n", strategy)
	for _, dep := range resolved {
		versions := make([]string, 0, len(dep.ResolvedFrom))
		for version := range dep.ResolvedFrom {
			versions = append(versions, version)
		}
		// ResolvedFrom is a map; order its keys here for stable text.
		sort.Strings(versions)
		fmt.Fprintf(b, "  %s: %s -> %s\n", dep.Name, strings.Join(versions, ", "), dep.Version)
	}
	b.WriteString("\n")
}

func formatMembers(members []Member) string {
	parts := make([]string, 0, len(members))
	for _, member := range members {
		if member.Section == entities.SectionDependencies.String() {
			parts = append(parts, member.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", member.Name, member.Section))
	}
	return strings.Join(parts, ", ")
}

func formatReasons(types []entities.ConflictType) string {
	reasons := make([]string, 0, len(types))
	for _, t := range types {
		switch t {
		case entities.ConflictVersionResolution:
			reasons = append(reasons, "version resolution")
		case entities.ConflictDefaultFeatures:
			reasons = append(reasons, "default-features differ")
		default:
			reasons = append(reasons, string(t))
		}
	}
	return strings.Join(reasons, ", ")
}
