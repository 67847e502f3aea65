package link

import (
	"context"

	"github.com/clarity-cash/claritycash/aggregator"
)

// SandboxDriver stands in for the embedded browser widget in headless
// environments. It walks a controller through the same transitions the
// real widget produces: report ready, then deliver exactly one terminal
// event, minting the public token through the aggregator's sandbox
// endpoint instead of user interaction.
type SandboxDriver struct {
	aggregator aggregator.Client
}

// NewSandboxDriver creates a driver over the sandbox aggregator.
func NewSandboxDriver(client aggregator.Client) *SandboxDriver {
	return &SandboxDriver{aggregator: client}
}

// Run drives the controller to a terminal state. A sandbox failure to
// mint a public token becomes a widget exit, exactly like a user cancel.
func (d *SandboxDriver) Run(ctx context.Context, c *Controller) {
	c.HandleOpen(ctx)

	publicToken, err := d.aggregator.SandboxCreatePublicToken(ctx)
	if err != nil {
		c.HandleExit(ctx, err)
		return
	}
	c.HandleSuccess(ctx, publicToken)
}
