//go:build unit

package repositories_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/infrastructure/repositories"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func userOf(member string) []entities.MemberSection {
	return []entities.MemberSection{
		{Member: member, Section: entities.SectionDependencies},
	}
}

func TestTomlManifestWriterApply(t *testing.T) {
	t.Parallel()

	t.Run("should create the shared section when it does not exist", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app"]
`)
		memberManifest := writeManifest(t, filepath.Join(root, "app"), `[package]
name = "app"

[dependencies]
serde = "1.0.195"
`)
		info := &entities.WorkspaceInfo{
			RootManifest: rootManifest,
			Members: []entities.MemberInfo{
				{Name: "app", ManifestPath: memberManifest},
			},
		}
		deps := []entities.CommonDependency{{
			Name:            "serde",
			Version:         "1.0.195",
			DefaultFeatures: true,
			Users:           userOf("app"),
		}}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		assert.Contains(t, readFile(t, rootManifest), "[workspace.dependencies]")
		assert.Contains(t, readFile(t, rootManifest), `serde = "1.0.195"`)
		assert.Contains(t, readFile(t, memberManifest), "serde = { workspace = true }")
	})

	t.Run("should update an existing shared entry in place", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app"]

[workspace.dependencies]
serde = "1.0.100"

[profile.release]
lto = true
`)
		info := &entities.WorkspaceInfo{RootManifest: rootManifest}
		deps := []entities.CommonDependency{{
			Name:            "serde",
			Version:         "1.0.195",
			DefaultFeatures: true,
		}}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		content := readFile(t, rootManifest)
		assert.Contains(t, content, `serde = "1.0.195"`)
		assert.NotContains(t, content, "1.0.100")
		assert.Contains(t, content, "[profile.release]", "unrelated sections survive")
	})

	t.Run("should append new entries to an existing shared section", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app"]

[workspace.dependencies]
anyhow = "1.0.80"
`)
		info := &entities.WorkspaceInfo{RootManifest: rootManifest}
		deps := []entities.CommonDependency{{
			Name:            "serde",
			Version:         "1.0.195",
			DefaultFeatures: true,
		}}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		content := readFile(t, rootManifest)
		assert.Contains(t, content, `anyhow = "1.0.80"`)
		assert.Contains(t, content, `serde = "1.0.195"`)
	})

	t.Run("should render package, registry and default-features in shared entries", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app"]
`)
		info := &entities.WorkspaceInfo{RootManifest: rootManifest}
		deps := []entities.CommonDependency{{
			Name:            "renamed",
			Version:         "0.3.0",
			Package:         "actual-crate",
			Registry:        "company",
			DefaultFeatures: false,
		}}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		assert.Contains(t, readFile(t, rootManifest),
			`renamed = { version = "0.3.0", package = "actual-crate", registry = "company", default-features = false }`)
	})

	t.Run("should keep extra keys when reducing a member declaration", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app"]
`)
		memberManifest := writeManifest(t, filepath.Join(root, "app"), `[package]
name = "app"

[dependencies]
tokio = { version = "1.35.0", features = ["rt", "macros"], optional = true }
`)
		info := &entities.WorkspaceInfo{
			RootManifest: rootManifest,
			Members: []entities.MemberInfo{
				{Name: "app", ManifestPath: memberManifest},
			},
		}
		deps := []entities.CommonDependency{{
			Name:            "tokio",
			Version:         "1.35.0",
			DefaultFeatures: true,
			Users:           userOf("app"),
		}}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		assert.Contains(t, readFile(t, memberManifest),
			`tokio = { workspace = true, features = ["rt", "macros"], optional = true }`)
	})

	t.Run("should rewrite a sub-table declaration", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app"]
`)
		memberManifest := writeManifest(t, filepath.Join(root, "app"), `[package]
name = "app"

[dependencies.config]
version = "0.14.0"
features = ["yaml"]
`)
		info := &entities.WorkspaceInfo{
			RootManifest: rootManifest,
			Members: []entities.MemberInfo{
				{Name: "app", ManifestPath: memberManifest},
			},
		}
		deps := []entities.CommonDependency{{
			Name:            "config",
			Version:         "0.14.0",
			DefaultFeatures: true,
			Users:           userOf("app"),
		}}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		content := readFile(t, memberManifest)
		assert.Contains(t, content, "[dependencies.config]\nworkspace = true")
		assert.NotContains(t, content, `version = "0.14.0"`)
		assert.Contains(t, content, `features = ["yaml"]`, "feature list survives the rewrite")
	})

	t.Run("should leave untouched members and comments alone", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app", "other"]
`)
		memberManifest := writeManifest(t, filepath.Join(root, "app"), `[package]
name = "app"

[dependencies]
# pinned on purpose
serde = "1.0.195"
regex = "1.10.0"
`)
		otherManifest := writeManifest(t, filepath.Join(root, "other"), `[package]
name = "other"

[dependencies]
serde = "1.0.195"
`)
		info := &entities.WorkspaceInfo{
			RootManifest: rootManifest,
			Members: []entities.MemberInfo{
				{Name: "app", ManifestPath: memberManifest},
				{Name: "other", ManifestPath: otherManifest},
			},
		}
		deps := []entities.CommonDependency{{
			Name:            "serde",
			Version:         "1.0.195",
			DefaultFeatures: true,
			Users: []entities.MemberSection{
				{Member: "app", Section: entities.SectionDependencies},
			},
		}}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		appContent := readFile(t, memberManifest)
		assert.Contains(t, appContent, "# pinned on purpose")
		assert.Contains(t, appContent, `regex = "1.10.0"`)
		assert.Contains(t, appContent, "serde = { workspace = true }")
		assert.Equal(t, "[package]\nname = \"other\"\n\n[dependencies]\nserde = \"1.0.195\"\n",
			readFile(t, otherManifest), "members without covered users are never rewritten")
	})

	t.Run("should keep one pool entry when two variants share a name", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app", "other"]
`)
		memberManifest := writeManifest(t, filepath.Join(root, "app"), `[package]
name = "app"

[dependencies]
serde = "1.0.0"
`)
		otherManifest := writeManifest(t, filepath.Join(root, "other"), `[package]
name = "other"

[dependencies]
serde = { version = "2.0.0", registry = "private" }
`)
		info := &entities.WorkspaceInfo{
			RootManifest: rootManifest,
			Members: []entities.MemberInfo{
				{Name: "app", ManifestPath: memberManifest},
				{Name: "other", ManifestPath: otherManifest},
			},
		}
		deps := []entities.CommonDependency{
			{
				Name:            "serde",
				Version:         "1.0.0",
				DefaultFeatures: true,
				Users:           userOf("app"),
			},
			{
				Name:            "serde",
				Version:         "2.0.0",
				Registry:        "private",
				DefaultFeatures: true,
				Users:           userOf("other"),
			},
		}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		rootContent := readFile(t, rootManifest)
		assert.Equal(t, 1, strings.Count(rootContent, "serde"),
			"the pool never carries the same name twice")
		assert.Contains(t, rootContent, `serde = "1.0.0"`)
		assert.NotContains(t, rootContent, "2.0.0")
		assert.Contains(t, readFile(t, memberManifest), "serde = { workspace = true }")
		assert.Contains(t, readFile(t, otherManifest),
			`serde = { version = "2.0.0", registry = "private" }`,
			"the losing variant stays declared in its member")
	})

	t.Run("should carry a trailing comment into the workspace reference", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app"]
`)
		memberManifest := writeManifest(t, filepath.Join(root, "app"), `[package]
name = "app"

[dependencies]
serde = "1.0.195" # pinned with care
tokio = { version = "1.35.0", features = ["rt"] } # async runtime
`)
		info := &entities.WorkspaceInfo{
			RootManifest: rootManifest,
			Members: []entities.MemberInfo{
				{Name: "app", ManifestPath: memberManifest},
			},
		}
		deps := []entities.CommonDependency{
			{Name: "serde", Version: "1.0.195", DefaultFeatures: true, Users: userOf("app")},
			{Name: "tokio", Version: "1.35.0", DefaultFeatures: true, Users: userOf("app")},
		}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		content := readFile(t, memberManifest)
		assert.Contains(t, content, "serde = { workspace = true } # pinned with care")
		assert.Contains(t, content,
			`tokio = { workspace = true, features = ["rt"] } # async runtime`)
	})

	t.Run("should rewrite a sub-table with a quoted dotted name", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = ["app"]
`)
		memberManifest := writeManifest(t, filepath.Join(root, "app"), `[package]
name = "app"

[dependencies."my.crate"]
version = "0.2.0"
features = ["extras"]
`)
		info := &entities.WorkspaceInfo{
			RootManifest: rootManifest,
			Members: []entities.MemberInfo{
				{Name: "app", ManifestPath: memberManifest},
			},
		}
		deps := []entities.CommonDependency{{
			Name:            "my.crate",
			Version:         "0.2.0",
			DefaultFeatures: true,
			Users:           userOf("app"),
		}}

		writer := repositories.NewTomlManifestWriter()

		// when
		err := writer.Apply(info, deps)

		// then
		require.NoError(t, err)
		content := readFile(t, memberManifest)
		assert.Contains(t, content, "[dependencies.\"my.crate\"]\nworkspace = true")
		assert.NotContains(t, content, `version = "0.2.0"`)
		assert.Contains(t, content, `features = ["extras"]`)
	})

	t.Run("should do nothing when there is nothing to consolidate", func(t *testing.T) {
		// given
		root := t.TempDir()
		rootManifest := writeManifest(t, root, `[workspace]
members = []
`)
		info := &entities.WorkspaceInfo{RootManifest: rootManifest}

		writer := repositories.NewTomlManifestWriter()
		before := readFile(t, rootManifest)

		// when
		err := writer.Apply(info, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, before, readFile(t, rootManifest))
	})
}
