package analyzer

import (
	"sort"

	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/resolver"
)

// workspaceMarker labels the shared pool itself when it appears as an
// observer of a version, next to real member names.
const workspaceMarker = "workspace"

// versionKey is one distinct (version, default-features) pair tracked for a
// dependency key.
type versionKey struct {
	version         string
	defaultFeatures bool
}

// usage records who declared a given (version, default-features) pair.
type usage struct {
	users       []entities.MemberSection
	inWorkspace bool
}

// tracker accumulates every declaration observed for one DependencyKey.
type tracker struct {
	specs map[versionKey]*usage
}

func newTracker() *tracker {
	return &tracker{specs: make(map[versionKey]*usage)}
}

func (t *tracker) at(vk versionKey) *usage {
	u, ok := t.specs[vk]
	if !ok {
		u = &usage{}
		t.specs[vk] = u
	}
	return u
}

// distinctVersions returns the set of version strings present in the
// tracker, regardless of default-features.
func (t *tracker) distinctVersions() []string {
	seen := make(map[string]struct{})
	versions := make([]string, 0, len(t.specs))
	for vk := range t.specs {
		if _, ok := seen[vk.version]; ok {
			continue
		}
		seen[vk.version] = struct{}{}
		versions = append(versions, vk.version)
	}
	sort.Strings(versions)
	return versions
}

// inWorkspace reports whether any tracked pair is already in the pool.
func (t *tracker) inWorkspace() bool {
	for _, u := range t.specs {
		if u.inWorkspace {
			return true
		}
	}
	return false
}

// memberUsers returns every real (member, section) user across all tracked
// pairs, sorted. Pool entries are not member users.
func (t *tracker) memberUsers() []entities.MemberSection {
	var users []entities.MemberSection
	for _, u := range t.specs {
		users = append(users, u.users...)
	}
	sortMemberSections(users)
	return users
}

// observerLists maps each version string to its observers (member names
// plus the workspace marker for pool entries), the shape the resolver and
// the resolved-from report both consume.
func (t *tracker) observerLists() map[string][]string {
	lists := make(map[string][]string)
	for vk, u := range t.specs {
		observers := lists[vk.version]
		for _, user := range u.users {
			observers = append(observers, user.Member)
		}
		if u.inWorkspace {
			observers = append(observers, workspaceMarker)
		}
		lists[vk.version] = observers
	}
	for _, observers := range lists {
		sort.Strings(observers)
	}
	return lists
}

// featuresFor collects the default-features values recorded against version
// strings that normalize to the same concrete version as the given one.
// With an empty version it collects across every tracked pair.
func (t *tracker) featuresFor(version string) []bool {
	seen := make(map[bool]struct{})
	var values []bool
	for vk := range t.specs {
		if version != "" && !resolver.SameVersion(vk.version, version) {
			continue
		}
		if _, ok := seen[vk.defaultFeatures]; ok {
			continue
		}
		seen[vk.defaultFeatures] = struct{}{}
		values = append(values, vk.defaultFeatures)
	}
	return values
}

// versionSpecs renders the tracker as sorted conflict reporting entries.
func (t *tracker) versionSpecs() []entities.VersionSpec {
	specs := make([]entities.VersionSpec, 0, len(t.specs))
	for vk, u := range t.specs {
		members := make([]string, 0, len(u.users)+1)
		for _, user := range u.users {
			members = append(members, user.Member)
		}
		if u.inWorkspace {
			members = append(members, workspaceMarker)
		}
		sort.Strings(members)
		specs = append(specs, entities.VersionSpec{
			Version:         vk.version,
			DefaultFeatures: vk.defaultFeatures,
			Members:         members,
		})
	}
	sort.Slice(specs, func(i, j int) bool {
		if specs[i].Version != specs[j].Version {
			return specs[i].Version < specs[j].Version
		}
		return !specs[i].DefaultFeatures && specs[j].DefaultFeatures
	})
	return specs
}

// buildTrackers groups every pool entry and member declaration into one
// tracker per DependencyKey. Insertion order never affects the result.
func buildTrackers(data *entities.WorkspaceData) map[entities.DependencyKey]*tracker {
	trackers := make(map[entities.DependencyKey]*tracker)

	at := func(key entities.DependencyKey) *tracker {
		t, ok := trackers[key]
		if !ok {
			t = newTracker()
			trackers[key] = t
		}
		return t
	}

	for _, wsDep := range data.WorkspaceDeps {
		vk := versionKey{version: wsDep.Version, defaultFeatures: wsDep.DefaultFeatures}
		at(wsDep.Key()).at(vk).inWorkspace = true
	}

	for member, deps := range data.MemberDeps {
		for _, dep := range deps {
			vk := versionKey{version: dep.Version, defaultFeatures: dep.DefaultFeatures}
			u := at(dep.Key()).at(vk)
			u.users = append(u.users, entities.MemberSection{Member: member, Section: dep.Section})
		}
	}

	return trackers
}

// shouldConsolidate decides eligibility for one key: pool entries stay
// consolidated as long as a single member uses them; new entries need the
// member threshold.
func shouldConsolidate(inWorkspace bool, memberCount, minMembers int) bool {
	return (inWorkspace && memberCount > 0) || (!inWorkspace && memberCount >= minMembers)
}

// Analyze runs the consolidation engine over the extracted workspace data:
// groups declarations by key, resolves version disagreement under the given
// strategy, reconciles default-features, applies the eligibility rules, and
// flags unused pool entries. A key that cannot be resolved becomes a
// conflict; it never aborts the analysis of other keys.
func Analyze(
	data *entities.WorkspaceData,
	exclude []string,
	minMembers int,
	strategy resolver.Strategy,
) *entities.Analysis {
	trackers := buildTrackers(data)

	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}

	var commonDeps []entities.CommonDependency
	var conflicts []entities.ConflictingDependency

	for key, t := range trackers {
		if _, skip := excluded[key.Name]; skip {
			continue
		}

		common, conflict := analyzeKey(key, t, minMembers, strategy)
		if conflict != nil {
			conflicts = append(conflicts, *conflict)
		}
		if common != nil {
			commonDeps = append(commonDeps, *common)
		}
	}

	sortCommonDeps(commonDeps)
	sortConflicts(conflicts)

	return &entities.Analysis{
		CommonDependencies:  commonDeps,
		Conflicts:           conflicts,
		UnusedWorkspaceDeps: unusedWorkspaceDeps(data, commonDeps),
	}
}

// analyzeKey resolves a single dependency key into either a consolidated
// dependency, a conflict, or neither (below the member threshold).
func analyzeKey(
	key entities.DependencyKey,
	t *tracker,
	minMembers int,
	strategy resolver.Strategy,
) (*entities.CommonDependency, *entities.ConflictingDependency) {
	versions := t.distinctVersions()
	users := t.memberUsers()
	inWorkspace := t.inWorkspace()

	if len(versions) == 1 {
		version := versions[0]
		features := t.featuresFor(version)
		if len(features) > 1 {
			return nil, conflictFor(key, t, entities.ConflictDefaultFeatures)
		}
		if !shouldConsolidate(inWorkspace, len(users), minMembers) {
			return nil, nil
		}
		return &entities.CommonDependency{
			Name:            key.Name,
			Version:         version,
			Package:         key.Package,
			Registry:        key.Registry,
			DefaultFeatures: features[0],
			Users:           users,
		}, nil
	}

	observerLists := t.observerLists()
	resolved, _, err := resolver.Resolve(observerLists, strategy)
	if err != nil {
		types := []entities.ConflictType{entities.ConflictVersionResolution}
		if len(t.featuresFor("")) > 1 {
			types = append(types, entities.ConflictDefaultFeatures)
		}
		return nil, conflictFor(key, t, types...)
	}

	features := t.featuresFor(resolved)
	if len(features) > 1 {
		return nil, conflictFor(key, t, entities.ConflictDefaultFeatures)
	}
	if !shouldConsolidate(inWorkspace, len(users), minMembers) {
		return nil, nil
	}
	return &entities.CommonDependency{
		Name:            key.Name,
		Version:         resolved,
		Package:         key.Package,
		Registry:        key.Registry,
		DefaultFeatures: features[0],
		Users:           users,
		ResolvedFrom:    observerLists,
	}, nil
}

func conflictFor(
	key entities.DependencyKey,
	t *tracker,
	types ...entities.ConflictType,
) *entities.ConflictingDependency {
	return &entities.ConflictingDependency{
		Name:          key.Name,
		Package:       key.Package,
		Registry:      key.Registry,
		VersionSpecs:  t.versionSpecs(),
		ConflictTypes: types,
	}
}

// unusedWorkspaceDeps flags pool entries referenced by neither a
// consolidated dependency nor an already-satisfied workspace reference. The
// comparison is by name only, matching the pool's naming granularity.
func unusedWorkspaceDeps(
	data *entities.WorkspaceData,
	commonDeps []entities.CommonDependency,
) []string {
	used := make(map[string]struct{})
	for _, dep := range commonDeps {
		used[dep.Name] = struct{}{}
	}
	for _, ref := range data.WorkspaceRefs {
		used[ref.Name] = struct{}{}
	}

	seen := make(map[string]struct{})
	var unused []string
	for _, wsDep := range data.WorkspaceDeps {
		if _, ok := used[wsDep.Name]; ok {
			continue
		}
		if _, ok := seen[wsDep.Name]; ok {
			continue
		}
		seen[wsDep.Name] = struct{}{}
		unused = append(unused, wsDep.Name)
	}
	sort.Strings(unused)
	return unused
}

func sortMemberSections(users []entities.MemberSection) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].Member != users[j].Member {
			return users[i].Member < users[j].Member
		}
		return users[i].Section < users[j].Section
	})
}

func sortCommonDeps(deps []entities.CommonDependency) {
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Name != deps[j].Name {
			return deps[i].Name < deps[j].Name
		}
		if deps[i].Package != deps[j].Package {
			return deps[i].Package < deps[j].Package
		}
		return deps[i].Registry < deps[j].Registry
	})
}

func sortConflicts(conflicts []entities.ConflictingDependency) {
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Name != conflicts[j].Name {
			return conflicts[i].Name < conflicts[j].Name
		}
		if conflicts[i].Package != conflicts[j].Package {
			return conflicts[i].Package < conflicts[j].Package
		}
		return conflicts[i].Registry < conflicts[j].Registry
	})
}
