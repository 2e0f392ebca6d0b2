package controllers

import (
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"go.uber.org/dig"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewConsolidateController); err != nil {
		return err
	}
	if err := container.Provide(NewCheckController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates the subcommand controllers into a slice for the
// AppInternal. The consolidate controller is the root command and is wired
// separately in cmd.
func NewControllers(
	checkController *CheckController,
) *[]entities.Controller {
	return &[]entities.Controller{
		checkController,
	}
}
