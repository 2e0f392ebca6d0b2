//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// DependencyBuilder helps create test dependency specs with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	name            string
	version         string
	section         entities.Section
	pkg             string
	registry        string
	defaultFeatures bool
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder:     testkit.NewBaseBuilder(),
		name:            "serde",
		version:         "1.0.0",
		section:         entities.SectionDependencies,
		pkg:             "",
		registry:        "",
		defaultFeatures: true,
	}
}

// WithName sets the dependency name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithVersion sets the version requirement.
func (b *DependencyBuilder) WithVersion(version string) *DependencyBuilder {
	b.version = version
	return b
}

// WithSection sets the manifest section the dependency lives in.
func (b *DependencyBuilder) WithSection(section entities.Section) *DependencyBuilder {
	b.section = section
	return b
}

// WithPackage sets the real crate name for a renamed dependency.
func (b *DependencyBuilder) WithPackage(pkg string) *DependencyBuilder {
	b.pkg = pkg
	return b
}

// WithRegistry sets the alternative registry name.
func (b *DependencyBuilder) WithRegistry(registry string) *DependencyBuilder {
	b.registry = registry
	return b
}

// WithDefaultFeatures sets the default-features flag.
func (b *DependencyBuilder) WithDefaultFeatures(enabled bool) *DependencyBuilder {
	b.defaultFeatures = enabled
	return b
}

// Build creates the dependency spec (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency spec with a concrete return type.
func (b *DependencyBuilder) BuildDependency() entities.DependencySpec {
	return entities.DependencySpec{
		Name:            b.name,
		Version:         b.version,
		Section:         b.section,
		Package:         b.pkg,
		Registry:        b.registry,
		DefaultFeatures: b.defaultFeatures,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "serde"
	b.version = "1.0.0"
	b.section = entities.SectionDependencies
	b.pkg = ""
	b.registry = ""
	b.defaultFeatures = true
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	return &DependencyBuilder{
		BaseBuilder:     b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:            b.name,
		version:         b.version,
		section:         b.section,
		pkg:             b.pkg,
		registry:        b.registry,
		defaultFeatures: b.defaultFeatures,
	}
}
