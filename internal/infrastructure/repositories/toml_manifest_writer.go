package repositories

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
)

const workspaceDepsHeader = "workspace.dependencies"

var (
	sectionHeaderPattern = regexp.MustCompile(`^\s*\[\s*([^\]]+?)\s*\]\s*(?:#.*)?$`)
	entryKeyPattern      = regexp.MustCompile(`^(\s*)("?[A-Za-z0-9_.-]+"?)\s*=\s*(.*)$`)
)

// TomlManifestWriter applies a consolidation to the workspace manifests.
// It edits files line by line so that comments, ordering, and formatting of
// untouched declarations survive the rewrite.
type TomlManifestWriter struct{}

// NewTomlManifestWriter creates a new TomlManifestWriter.
func NewTomlManifestWriter() *TomlManifestWriter {
	return &TomlManifestWriter{}
}

// Apply writes the shared entries into the root manifest and reduces every
// covered member declaration to a workspace reference.
func (it *TomlManifestWriter) Apply(
	info *entities.WorkspaceInfo,
	deps []entities.CommonDependency,
) error {
	deps = dedupeByName(deps)
	if len(deps) == 0 {
		return nil
	}

	if err := it.updateRootManifest(info.RootManifest, deps); err != nil {
		return err
	}

	for _, member := range info.Members {
		if err := it.updateMemberManifest(member, deps); err != nil {
			return err
		}
	}
	return nil
}

// dedupeByName keeps a single consolidation per dependency name. The shared
// pool is keyed by name alone, so two variants of the same name (renamed
// package, custom registry) cannot both live there: the first in sort order
// wins and the others stay declared in their members, untouched.
func dedupeByName(deps []entities.CommonDependency) []entities.CommonDependency {
	seen := make(map[string]struct{}, len(deps))
	kept := make([]entities.CommonDependency, 0, len(deps))
	for _, dep := range deps {
		if _, dup := seen[dep.Name]; dup {
			logger.Warnf(
				"Skipping %s (package=%q, registry=%q): the shared pool already has an entry named %s",
				dep.Name, dep.Package, dep.Registry, dep.Name,
			)
			continue
		}
		seen[dep.Name] = struct{}{}
		kept = append(kept, dep)
	}
	return kept
}

// updateRootManifest adds or updates [workspace.dependencies] entries.
func (it *TomlManifestWriter) updateRootManifest(
	manifestPath string,
	deps []entities.CommonDependency,
) error {
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", manifestPath, err)
	}
	lines := strings.Split(string(content), "\n")

	byName := make(map[string]entities.CommonDependency, len(deps))
	names := make([]string, 0, len(deps))
	for _, dep := range deps {
		byName[dep.Name] = dep
		names = append(names, dep.Name)
	}
	sort.Strings(names)

	start, end := sectionRange(lines, workspaceDepsHeader)
	if start < 0 {
		lines = insertWorkspaceDepsSection(lines, names, byName)
	} else {
		lines = updateWorkspaceDepsSection(lines, start, end, names, byName)
	}

	updated := strings.Join(lines, "\n")
	if updated == string(content) {
		return nil
	}
	if writeErr := os.WriteFile(manifestPath, []byte(updated), 0o644); writeErr != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath, writeErr)
	}
	return nil
}

// updateWorkspaceDepsSection rewrites existing entry lines in place and
// appends the remaining entries, sorted, at the end of the section.
func updateWorkspaceDepsSection(
	lines []string,
	start, end int,
	names []string,
	byName map[string]entities.CommonDependency,
) []string {
	written := make(map[string]struct{})

	for i := start + 1; i < end; i++ {
		match := entryKeyPattern.FindStringSubmatch(lines[i])
		if match == nil {
			continue
		}
		name := strings.Trim(match[2], `"`)
		dep, ok := byName[name]
		if !ok {
			continue
		}
		lines[i] = match[1] + formatWorkspaceEntry(dep)
		written[name] = struct{}{}
	}

	var missing []string
	for _, name := range names {
		if _, ok := written[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return lines
	}

	// Insert before the trailing blank lines that separate sections.
	insertAt := end
	for insertAt > start+1 && strings.TrimSpace(lines[insertAt-1]) == "" {
		insertAt--
	}
	entries := make([]string, 0, len(missing))
	for _, name := range missing {
		entries = append(entries, formatWorkspaceEntry(byName[name]))
	}

	result := make([]string, 0, len(lines)+len(entries))
	result = append(result, lines[:insertAt]...)
	result = append(result, entries...)
	result = append(result, lines[insertAt:]...)
	return result
}

// insertWorkspaceDepsSection appends a fresh [workspace.dependencies]
// section after the [workspace] table (or at the end of the file).
func insertWorkspaceDepsSection(
	lines []string,
	names []string,
	byName map[string]entities.CommonDependency,
) []string {
	section := []string{"", "[" + workspaceDepsHeader + "]"}
	for _, name := range names {
		section = append(section, formatWorkspaceEntry(byName[name]))
	}

	insertAt := len(lines)
	if _, end := sectionRange(lines, "workspace"); end >= 0 {
		insertAt = end
		for insertAt > 0 && strings.TrimSpace(lines[insertAt-1]) == "" {
			insertAt--
		}
	}

	result := make([]string, 0, len(lines)+len(section))
	result = append(result, lines[:insertAt]...)
	result = append(result, section...)
	result = append(result, lines[insertAt:]...)
	return result
}

// formatWorkspaceEntry renders one shared pool entry. default-features is
// written only when false, which is the manifest's own convention.
func formatWorkspaceEntry(dep entities.CommonDependency) string {
	if dep.Package == "" && dep.Registry == "" && dep.DefaultFeatures {
		return fmt.Sprintf("%s = %q", dep.Name, dep.Version)
	}

	parts := []string{fmt.Sprintf("version = %q", dep.Version)}
	if dep.Package != "" {
		parts = append(parts, fmt.Sprintf("package = %q", dep.Package))
	}
	if dep.Registry != "" {
		parts = append(parts, fmt.Sprintf("registry = %q", dep.Registry))
	}
	if !dep.DefaultFeatures {
		parts = append(parts, "default-features = false")
	}
	return fmt.Sprintf("%s = { %s }", dep.Name, strings.Join(parts, ", "))
}

// updateMemberManifest converts this member's consolidated declarations to
// workspace references, keeping unrelated keys (features, optional, ...).
func (it *TomlManifestWriter) updateMemberManifest(
	member entities.MemberInfo,
	deps []entities.CommonDependency,
) error {
	// section table name -> dependency name -> consolidated
	covered := make(map[string]map[string]struct{})
	for _, dep := range deps {
		for _, user := range dep.Users {
			if user.Member != member.Name {
				continue
			}
			section := user.Section.String()
			if covered[section] == nil {
				covered[section] = make(map[string]struct{})
			}
			covered[section][dep.Name] = struct{}{}
		}
	}
	if len(covered) == 0 {
		return nil
	}

	content, err := os.ReadFile(member.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", member.ManifestPath, err)
	}

	lines := strings.Split(string(content), "\n")
	currentSection := ""
	subTableSkip := false

	for i, line := range lines {
		if match := sectionHeaderPattern.FindStringSubmatch(line); match != nil {
			currentSection = match[1]
			subTableSkip = false

			// [dependencies.name] sub-table form: rewrite the whole table.
			if section, name, ok := splitSubTableHeader(currentSection); ok {
				if names, processed := covered[section]; processed {
					if _, consolidated := names[name]; consolidated {
						subTableSkip = true
						lines[i] = line + "\nworkspace = true"
					}
				}
			}
			continue
		}

		if subTableSkip {
			if match := entryKeyPattern.FindStringSubmatch(line); match != nil {
				key := strings.Trim(match[2], `"`)
				switch key {
				case "version", "package", "registry", "default-features":
					lines[i] = "" // dropped below
				}
			}
			continue
		}

		names, processed := covered[currentSection]
		if !processed {
			continue
		}
		match := entryKeyPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		name := strings.Trim(match[2], `"`)
		if _, consolidated := names[name]; !consolidated {
			continue
		}
		lines[i] = match[1] + name + " = " + workspaceReference(match[3])
	}

	updated := strings.Join(compactEmptied(lines, string(content)), "\n")
	if updated == string(content) {
		return nil
	}
	logger.Debugf("Rewriting %s", member.ManifestPath)
	if writeErr := os.WriteFile(member.ManifestPath, []byte(updated), 0o644); writeErr != nil {
		return fmt.Errorf("failed to write %s: %w", member.ManifestPath, writeErr)
	}
	return nil
}

// compactEmptied removes lines that were blanked during sub-table
// rewriting, without touching lines that were blank in the original.
func compactEmptied(lines []string, original string) []string {
	originalLines := strings.Split(original, "\n")
	result := make([]string, 0, len(lines))
	for i, line := range lines {
		if line == "" && i < len(originalLines) && originalLines[i] != "" {
			continue
		}
		result = append(result, line)
	}
	return result
}

// splitSubTableHeader decomposes "dependencies.serde" style headers. The
// split happens on the first dot outside quotes, so quoted dotted names
// ([dependencies."my.crate"]) stay intact.
func splitSubTableHeader(header string) (section, name string, ok bool) {
	idx := -1
	inString := false
	for i, r := range header {
		switch {
		case inString:
			if r == '"' {
				inString = false
			}
		case r == '"':
			inString = true
		case r == '.':
			idx = i
		}
		if idx >= 0 {
			break
		}
	}
	if idx < 0 {
		return "", "", false
	}
	section = header[:idx]
	name = strings.Trim(header[idx+1:], `"`)
	switch section {
	case "dependencies", "dev-dependencies", "build-dependencies":
		return section, name, true
	default:
		return "", "", false
	}
}

// workspaceReference turns a declaration value into a workspace reference,
// carrying over every key that is not owned by the shared entry and any
// trailing comment.
func workspaceReference(value string) string {
	body, comment := splitTrailingComment(value)
	if comment != "" {
		comment = " " + comment
	}

	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "{") {
		return "{ workspace = true }" + comment
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "{"), "}")
	kept := []string{"workspace = true"}
	for _, part := range splitTopLevel(inner) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := part
		if idx := strings.IndexByte(part, '='); idx >= 0 {
			key = strings.TrimSpace(part[:idx])
		}
		switch strings.Trim(key, `"`) {
		case "version", "package", "registry", "default-features", "workspace":
			continue
		}
		kept = append(kept, part)
	}
	return "{ " + strings.Join(kept, ", ") + " }" + comment
}

// splitTrailingComment separates a # comment that sits outside strings from
// the value preceding it.
func splitTrailingComment(value string) (string, string) {
	inString := false
	for i, r := range value {
		switch {
		case inString:
			if r == '"' {
				inString = false
			}
		case r == '"':
			inString = true
		case r == '#':
			return value[:i], strings.TrimSpace(value[i:])
		}
	}
	return value, ""
}

// splitTopLevel splits an inline table body on commas that are outside
// strings, arrays, and nested tables.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0

	for i, r := range s {
		switch {
		case inString:
			if r == '"' {
				inString = false
			}
		case r == '"':
			inString = true
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// sectionRange returns the line index of the [header] line and the
// exclusive end of its section, or (-1, -1) when absent.
func sectionRange(lines []string, header string) (int, int) {
	start := -1
	for i, line := range lines {
		match := sectionHeaderPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if start >= 0 {
			return start, i
		}
		if match[1] == header {
			start = i
		}
	}
	if start >= 0 {
		return start, len(lines)
	}
	return -1, -1
}
