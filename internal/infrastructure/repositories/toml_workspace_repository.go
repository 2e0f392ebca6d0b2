package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
)

const manifestFileName = "Cargo.toml"

// TomlWorkspaceRepository discovers a workspace from its root manifest and
// extracts dependency declarations from every member manifest.
type TomlWorkspaceRepository struct{}

// NewTomlWorkspaceRepository creates a new TomlWorkspaceRepository.
func NewTomlWorkspaceRepository() *TomlWorkspaceRepository {
	return &TomlWorkspaceRepository{}
}

// rootManifest is the subset of the root manifest discovery needs.
type rootManifest struct {
	Workspace struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

// memberManifest is the subset of a member manifest discovery needs.
type memberManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// Discover reads the root manifest under path and resolves the member list
// from the [workspace].members glob patterns.
func (it *TomlWorkspaceRepository) Discover(path string) (*entities.WorkspaceInfo, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace path %q: %w", path, err)
	}

	rootManifestPath := filepath.Join(root, manifestFileName)
	data, err := os.ReadFile(rootManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rootManifestPath, err)
	}

	var manifest rootManifest
	if unmarshalErr := toml.Unmarshal(data, &manifest); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse TOML at %s: %w", rootManifestPath, unmarshalErr)
	}

	members, err := it.resolveMembers(root, manifest)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no workspace members found under %s; is this a workspace?", root)
	}

	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	return &entities.WorkspaceInfo{
		RootManifest: rootManifestPath,
		Members:      members,
	}, nil
}

// resolveMembers expands member glob patterns against the workspace root
// and loads each member's package name.
func (it *TomlWorkspaceRepository) resolveMembers(
	root string,
	manifest rootManifest,
) ([]entities.MemberInfo, error) {
	excluded := make(map[string]struct{}, len(manifest.Workspace.Exclude))
	for _, dir := range manifest.Workspace.Exclude {
		excluded[filepath.Join(root, dir)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var members []entities.MemberInfo

	for _, pattern := range manifest.Workspace.Members {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid members pattern %q: %w", pattern, err)
		}

		for _, dir := range matches {
			if _, skip := excluded[dir]; skip {
				continue
			}
			if _, ok := seen[dir]; ok {
				continue
			}
			seen[dir] = struct{}{}

			manifestPath := filepath.Join(dir, manifestFileName)
			data, readErr := os.ReadFile(manifestPath)
			if readErr != nil {
				logger.Debugf("Skipping %s: %v", dir, readErr)
				continue
			}

			var member memberManifest
			if unmarshalErr := toml.Unmarshal(data, &member); unmarshalErr != nil {
				return nil, fmt.Errorf("failed to parse TOML at %s: %w", manifestPath, unmarshalErr)
			}
			if member.Package.Name == "" {
				continue
			}

			members = append(members, entities.MemberInfo{
				Name:         member.Package.Name,
				ManifestPath: manifestPath,
			})
		}
	}

	return members, nil
}

// ParseWorkspaceData extracts the shared pool and every member's
// declarations for the selected sections.
func (it *TomlWorkspaceRepository) ParseWorkspaceData(
	info *entities.WorkspaceInfo,
	sections []entities.Section,
) (*entities.WorkspaceData, error) {
	workspaceDeps, err := it.parseWorkspaceDependencies(info.RootManifest)
	if err != nil {
		return nil, err
	}

	memberDeps := make(map[string][]entities.DependencySpec)
	var workspaceRefs []entities.WorkspaceRef

	for _, member := range info.Members {
		deps, refs, parseErr := it.parseMemberDependencies(member.ManifestPath, sections)
		if parseErr != nil {
			return nil, parseErr
		}
		if len(deps) > 0 {
			memberDeps[member.Name] = deps
		}
		workspaceRefs = append(workspaceRefs, refs...)
	}

	return &entities.WorkspaceData{
		WorkspaceDeps: workspaceDeps,
		MemberDeps:    memberDeps,
		WorkspaceRefs: workspaceRefs,
	}, nil
}

// parseWorkspaceDependencies reads the [workspace.dependencies] pool from
// the root manifest.
func (it *TomlWorkspaceRepository) parseWorkspaceDependencies(
	manifestPath string,
) ([]entities.WorkspaceDependency, error) {
	doc, err := readManifestDocument(manifestPath)
	if err != nil {
		return nil, err
	}

	workspace, ok := doc["workspace"].(map[string]any)
	if !ok {
		return nil, nil
	}
	table, ok := workspace["dependencies"].(map[string]any)
	if !ok {
		return nil, nil
	}

	var deps []entities.WorkspaceDependency
	for _, name := range sortedKeys(table) {
		entry, ok := parseDependencyEntry(table[name])
		if !ok || entry.version == "" {
			continue
		}
		deps = append(deps, entities.WorkspaceDependency{
			Name:            name,
			Version:         entry.version,
			Package:         entry.pkg,
			Registry:        entry.registry,
			DefaultFeatures: entry.defaultFeatures,
		})
	}
	return deps, nil
}

// parseMemberDependencies extracts declarations and workspace references
// from one member manifest, limited to the selected sections.
func (it *TomlWorkspaceRepository) parseMemberDependencies(
	manifestPath string,
	sections []entities.Section,
) ([]entities.DependencySpec, []entities.WorkspaceRef, error) {
	doc, err := readManifestDocument(manifestPath)
	if err != nil {
		return nil, nil, err
	}

	var deps []entities.DependencySpec
	var refs []entities.WorkspaceRef

	for _, section := range sections {
		table, ok := doc[section.String()].(map[string]any)
		if !ok {
			continue
		}

		for _, name := range sortedKeys(table) {
			raw := table[name]

			if entryTable, isTable := raw.(map[string]any); isTable {
				if _, usesWorkspace := entryTable["workspace"]; usesWorkspace {
					refs = append(refs, entities.WorkspaceRef{Name: name, Section: section})
					continue
				}
			}

			entry, ok := parseDependencyEntry(raw)
			if !ok || entry.version == "" {
				continue
			}
			deps = append(deps, entities.DependencySpec{
				Name:            name,
				Version:         entry.version,
				Section:         section,
				Package:         entry.pkg,
				Registry:        entry.registry,
				DefaultFeatures: entry.defaultFeatures,
			})
		}
	}

	return deps, refs, nil
}

// dependencyEntry is the consolidation-relevant subset of one dependency
// declaration. defaultFeatures is already normalized: absent means true.
type dependencyEntry struct {
	version         string
	pkg             string
	registry        string
	defaultFeatures bool
}

// parseDependencyEntry interprets one dependency value: a bare version
// string, or a table. Tables carrying path or git sources are rejected —
// they never participate in consolidation.
func parseDependencyEntry(raw any) (dependencyEntry, bool) {
	switch value := raw.(type) {
	case string:
		return dependencyEntry{version: value, defaultFeatures: true}, true
	case map[string]any:
		if _, hasPath := value["path"]; hasPath {
			return dependencyEntry{}, false
		}
		if _, hasGit := value["git"]; hasGit {
			return dependencyEntry{}, false
		}

		entry := dependencyEntry{defaultFeatures: true}
		entry.version, _ = value["version"].(string)
		entry.pkg, _ = value["package"].(string)
		entry.registry, _ = value["registry"].(string)
		if df, ok := value["default-features"].(bool); ok {
			entry.defaultFeatures = df
		}
		return entry, true
	default:
		return dependencyEntry{}, false
	}
}

func readManifestDocument(manifestPath string) (map[string]any, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestPath, err)
	}

	var doc map[string]any
	if unmarshalErr := toml.Unmarshal(data, &doc); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse TOML at %s: %w", manifestPath, unmarshalErr)
	}
	return doc, nil
}

func sortedKeys(table map[string]any) []string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
