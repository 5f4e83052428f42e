package e2e

import (
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the feature suite against a live server. Point
// CANOPY_E2E_URL at it; without the variable set the suite is skipped so
// unit runs stay hermetic.
func TestFeatures(t *testing.T) {
	if os.Getenv("CANOPY_E2E_URL") == "" {
		t.Skip("CANOPY_E2E_URL not set; skipping end-to-end features")
	}

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			RegisterSteps(ctx, NewTestContext())
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature suite failed")
	}
}
