package e2e

import (
	"context"

	"github.com/cucumber/godog"

	"vehiclereg/e2e/steps/common"
	"vehiclereg/e2e/steps/wizard"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.Reset()
		return ctx, nil
	})

	// Generic status and response assertions
	common.RegisterSteps(ctx, tc)

	// Registration wizard flow
	wizard.RegisterSteps(ctx, tc)
}
