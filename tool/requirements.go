package tool

import "context"

// RequirementPolicy decides whether a registered category's requirements are
// met. The registry defines no requirement rules of its own; the default
// policy treats registration presence as sufficient, and deployments attach
// stricter policies (installed binaries, reachable services) as needed.
//
// Check is called with a registered category only; returning nil means the
// requirements are satisfied.
type RequirementPolicy interface {
	Check(ctx context.Context, reg Registration) error
}

// RequirementPolicyFunc adapts a function to the RequirementPolicy interface.
type RequirementPolicyFunc func(ctx context.Context, reg Registration) error

// Check implements RequirementPolicy.
func (f RequirementPolicyFunc) Check(ctx context.Context, reg Registration) error {
	return f(ctx, reg)
}

// presencePolicy is the default policy: a registered category satisfies its
// requirements.
type presencePolicy struct{}

func (presencePolicy) Check(ctx context.Context, reg Registration) error {
	return ctx.Err()
}
