package main

import (
	"github.com/rios0rios0/workspacedeps/internal"
	"github.com/rios0rios0/workspacedeps/internal/infrastructure/controllers"
	"go.uber.org/dig"
)

func injectAppContext() *internal.AppInternal {
	container := dig.New()

	// Register all providers
	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	// Invoke to get AppInternal
	var appInternal *internal.AppInternal
	if err := container.Invoke(func(ai *internal.AppInternal) {
		appInternal = ai
	}); err != nil {
		panic(err)
	}

	return appInternal
}

func injectConsolidateController() *controllers.ConsolidateController {
	container := dig.New()

	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	var consolidateController *controllers.ConsolidateController
	if err := container.Invoke(func(cc *controllers.ConsolidateController) {
		consolidateController = cc
	}); err != nil {
		panic(err)
	}

	return consolidateController
}
