package e2e

import (
	"github.com/cucumber/godog"

	"canopy/e2e/steps/progression"
)

// RegisterSteps registers all step definitions from the modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	progression.RegisterSteps(ctx, tc)
}
