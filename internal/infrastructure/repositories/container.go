package repositories

import (
	domainRepos "github.com/rios0rios0/workspacedeps/internal/domain/repositories"
	"go.uber.org/dig"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register repository constructors
	if err := container.Provide(NewTomlWorkspaceRepository); err != nil {
		return err
	}
	if err := container.Provide(NewTomlManifestWriter); err != nil {
		return err
	}

	// Bind interfaces to concrete implementations
	if err := container.Provide(
		func(impl *TomlWorkspaceRepository) domainRepos.WorkspaceRepository { return impl },
	); err != nil {
		return err
	}
	if err := container.Provide(
		func(impl *TomlManifestWriter) domainRepos.ManifestWriter { return impl },
	); err != nil {
		return err
	}

	return nil
}
