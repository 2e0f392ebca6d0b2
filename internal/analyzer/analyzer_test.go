//go:build unit

package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/workspacedeps/internal/analyzer"
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/resolver"
	builders "github.com/rios0rios0/workspacedeps/test/domain/entitybuilders"
)

func spec(name, version string) entities.DependencySpec {
	return builders.NewDependencyBuilder().
		WithName(name).
		WithVersion(version).
		BuildDependency()
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("should consolidate a dependency shared at one version", func(t *testing.T) {
		// given
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0")},
				"crate-b": {spec("serde", "1.0.0")},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		require.Len(t, analysis.CommonDependencies, 1)
		dep := analysis.CommonDependencies[0]
		assert.Equal(t, "serde", dep.Name)
		assert.Equal(t, "1.0.0", dep.Version)
		assert.True(t, dep.DefaultFeatures)
		assert.Equal(t, []entities.MemberSection{
			{Member: "crate-a", Section: entities.SectionDependencies},
			{Member: "crate-b", Section: entities.SectionDependencies},
		}, dep.Users)
		assert.Empty(t, analysis.Conflicts)
	})

	t.Run("should skip a dependency below the member threshold", func(t *testing.T) {
		// given
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0")},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		assert.Empty(t, analysis.CommonDependencies)
		assert.Empty(t, analysis.Conflicts)
	})

	t.Run("should keep a pool entry consolidated with a single user", func(t *testing.T) {
		// given
		data := &entities.WorkspaceData{
			WorkspaceDeps: []entities.WorkspaceDependency{
				{Name: "serde", Version: "1.0.0", DefaultFeatures: true},
			},
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0")},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		require.Len(t, analysis.CommonDependencies, 1)
		assert.Equal(t, "serde", analysis.CommonDependencies[0].Name)
		assert.Empty(t, analysis.UnusedWorkspaceDeps)
	})

	t.Run("should honor the exclusion list before any other rule", func(t *testing.T) {
		// given
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0"), spec("tokio", "1.35.0")},
				"crate-b": {spec("serde", "2.0.0"), spec("tokio", "1.35.0")},
			},
		}

		// when
		analysis := analyzer.Analyze(
			data, []string{"serde"}, 2, resolver.StrategyHighestCompatible,
		)

		// then
		require.Len(t, analysis.CommonDependencies, 1)
		assert.Equal(t, "tokio", analysis.CommonDependencies[0].Name)
		assert.Empty(t, analysis.Conflicts, "excluded names never become conflicts")
	})

	t.Run("should report a default-features conflict at a single version", func(t *testing.T) {
		// given
		withFeatures := builders.NewDependencyBuilder().
			WithName("serde").
			WithVersion("1.0.0").
			WithDefaultFeatures(false).
			BuildDependency()
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0")},
				"crate-b": {withFeatures},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		assert.Empty(t, analysis.CommonDependencies)
		require.Len(t, analysis.Conflicts, 1)
		conflict := analysis.Conflicts[0]
		assert.Equal(t, []entities.ConflictType{entities.ConflictDefaultFeatures}, conflict.ConflictTypes)
		require.Len(t, conflict.VersionSpecs, 2)
	})

	t.Run("should resolve a version disagreement with the highest strategy", func(t *testing.T) {
		// given
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("anyhow", "1.0.75")},
				"crate-b": {spec("anyhow", "1.0.78")},
				"crate-c": {spec("anyhow", "1.0.80")},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighest)

		// then
		require.Len(t, analysis.CommonDependencies, 1)
		dep := analysis.CommonDependencies[0]
		assert.Equal(t, "1.0.80", dep.Version)
		assert.Equal(t, map[string][]string{
			"1.0.75": {"crate-a"},
			"1.0.78": {"crate-b"},
			"1.0.80": {"crate-c"},
		}, dep.ResolvedFrom)
	})

	t.Run("should turn a disagreement into a conflict with the skip strategy", func(t *testing.T) {
		// given
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("anyhow", "1.0.75")},
				"crate-b": {spec("anyhow", "1.0.80")},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategySkip)

		// then
		assert.Empty(t, analysis.CommonDependencies)
		require.Len(t, analysis.Conflicts, 1)
		assert.Equal(t,
			[]entities.ConflictType{entities.ConflictVersionResolution},
			analysis.Conflicts[0].ConflictTypes,
		)
	})

	t.Run("should report both conflict types on an unresolvable disagreement", func(t *testing.T) {
		// given
		noFeatures := builders.NewDependencyBuilder().
			WithName("serde").
			WithVersion("2.0.0").
			WithDefaultFeatures(false).
			BuildDependency()
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0")},
				"crate-b": {noFeatures},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		require.Len(t, analysis.Conflicts, 1)
		assert.Equal(t, []entities.ConflictType{
			entities.ConflictVersionResolution,
			entities.ConflictDefaultFeatures,
		}, analysis.Conflicts[0].ConflictTypes)
	})

	t.Run("should include the pool in resolution observers", func(t *testing.T) {
		// given
		data := &entities.WorkspaceData{
			WorkspaceDeps: []entities.WorkspaceDependency{
				{Name: "anyhow", Version: "1.0.75", DefaultFeatures: true},
			},
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("anyhow", "1.0.80")},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighest)

		// then
		require.Len(t, analysis.CommonDependencies, 1)
		dep := analysis.CommonDependencies[0]
		assert.Equal(t, "1.0.80", dep.Version)
		assert.Equal(t, map[string][]string{
			"1.0.75": {"workspace"},
			"1.0.80": {"crate-a"},
		}, dep.ResolvedFrom)
	})

	t.Run("should track renamed packages separately from the plain crate", func(t *testing.T) {
		// given
		renamed := builders.NewDependencyBuilder().
			WithName("serde").
			WithVersion("1.0.0").
			WithPackage("serde-renamed").
			BuildDependency()
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0"), renamed},
				"crate-b": {spec("serde", "1.0.0")},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		require.Len(t, analysis.CommonDependencies, 1)
		assert.Empty(t, analysis.CommonDependencies[0].Package,
			"the renamed declaration has only one user and stays put")
	})

	t.Run("should merge users across manifest sections", func(t *testing.T) {
		// given
		devDep := builders.NewDependencyBuilder().
			WithName("serde").
			WithVersion("1.0.0").
			WithSection(entities.SectionDevDependencies).
			BuildDependency()
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0")},
				"crate-b": {devDep},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		require.Len(t, analysis.CommonDependencies, 1)
		assert.Equal(t, []entities.MemberSection{
			{Member: "crate-a", Section: entities.SectionDependencies},
			{Member: "crate-b", Section: entities.SectionDevDependencies},
		}, analysis.CommonDependencies[0].Users)
	})

	t.Run("should list an unused pool entry exactly once", func(t *testing.T) {
		// given
		data := &entities.WorkspaceData{
			WorkspaceDeps: []entities.WorkspaceDependency{
				{Name: "regex", Version: "1.10.0", DefaultFeatures: true},
			},
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0")},
				"crate-b": {spec("serde", "1.0.0")},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		assert.Equal(t, []string{"regex"}, analysis.UnusedWorkspaceDeps)
	})

	t.Run("should not flag a pool entry referenced via workspace = true", func(t *testing.T) {
		// given
		data := &entities.WorkspaceData{
			WorkspaceDeps: []entities.WorkspaceDependency{
				{Name: "regex", Version: "1.10.0", DefaultFeatures: true},
			},
			WorkspaceRefs: []entities.WorkspaceRef{
				{Name: "regex", Section: entities.SectionDependencies},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		assert.Empty(t, analysis.UnusedWorkspaceDeps)
	})

	t.Run("should produce identical output regardless of member order", func(t *testing.T) {
		// given
		forward := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {spec("serde", "1.0.0"), spec("anyhow", "1.0.75")},
				"crate-b": {spec("anyhow", "1.0.80"), spec("serde", "1.0.0")},
			},
		}
		backward := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-b": {spec("serde", "1.0.0"), spec("anyhow", "1.0.80")},
				"crate-a": {spec("anyhow", "1.0.75"), spec("serde", "1.0.0")},
			},
		}

		// when
		first := analyzer.Analyze(forward, nil, 2, resolver.StrategyHighest)
		second := analyzer.Analyze(backward, nil, 2, resolver.StrategyHighest)

		// then
		assert.Equal(t, first, second)
	})

	t.Run("should reconcile default-features across equivalent version spellings", func(t *testing.T) {
		// given
		abbreviated := builders.NewDependencyBuilder().
			WithName("serde").
			WithVersion("1.0").
			WithDefaultFeatures(false).
			BuildDependency()
		full := builders.NewDependencyBuilder().
			WithName("serde").
			WithVersion("1.0.0").
			WithDefaultFeatures(true).
			BuildDependency()
		data := &entities.WorkspaceData{
			MemberDeps: map[string][]entities.DependencySpec{
				"crate-a": {abbreviated},
				"crate-b": {full},
			},
		}

		// when
		analysis := analyzer.Analyze(data, nil, 2, resolver.StrategyHighestCompatible)

		// then
		assert.Empty(t, analysis.CommonDependencies)
		require.Len(t, analysis.Conflicts, 1)
		assert.Contains(t, analysis.Conflicts[0].ConflictTypes, entities.ConflictDefaultFeatures)
	})
}
