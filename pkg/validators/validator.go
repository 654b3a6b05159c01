// Package validators defines the validator interface, the run-scoped
// validator registry, and the phase dispatcher with short-circuit
// semantics, along with the built-in core validators.
package validators

import (
	"context"
	"time"

	"github.com/vigil-dev/vigil/pkg/cache"
	"github.com/vigil-dev/vigil/pkg/project"
	"github.com/vigil-dev/vigil/pkg/prompt"
	"github.com/vigil-dev/vigil/pkg/types"
)

// ComputationType distinguishes pure programmatic checks from checks
// that delegate judgment to a model call
type ComputationType string

const (
	ComputationProgrammatic ComputationType = "programmatic"
	ComputationLLM          ComputationType = "llm"
)

// Request carries everything one validation call may need
type Request struct {
	Rule   types.Rule
	Phase  types.ValidationPhase
	Bundle types.Bundle

	// AllBundles holds every bundle of the rule's bundle type; populated
	// only for validators implementing CrossBundle
	AllBundles []types.Bundle

	// Params are the fully resolved parameters for this phase
	Params map[string]interface{}

	// Project supplies resource inventories for rules that need them
	Project *project.Context

	// Prompt executes model calls for LLM-backed validators
	Prompt prompt.Runner

	// Cache stores expensive validator outputs
	Cache    *cache.Store
	CacheTTL time.Duration
}

// Validator is one validation implementation. A nil Finding from
// Validate means the phase passed.
type Validator interface {
	// Type returns the namespaced validator type ("core:file_exists")
	Type() string

	// Computation reports whether the validator is programmatic or LLM-backed
	Computation() ComputationType

	// DefaultFailureMessage is the template used when the phase
	// declares none
	DefaultFailureMessage() string

	// DefaultExpectedBehavior is used when the phase declares none
	DefaultExpectedBehavior() string

	// Validate runs the check against the request's bundle
	Validate(ctx context.Context, req Request) (*types.Finding, error)
}

// CrossBundle marks validators that need all bundles of the rule's
// bundle type, not just the one under check
type CrossBundle interface {
	NeedsAllBundles() bool
}

// ParamValidator lets a validator reject malformed parameters at load
// time, turning late runtime type errors into configuration errors
type ParamValidator interface {
	ValidateParams(params map[string]interface{}) error
}

// Factory constructs a validator instance. Factories are registered per
// namespaced type and invoked lazily, once per run.
type Factory func() (Validator, error)

// Fail builds the finding skeleton for a failed check. The dispatcher
// fills in the formatted messages afterwards.
func Fail(req Request, details map[string]interface{}) *types.Finding {
	return &types.Finding{
		BundleID:       req.Bundle.ID,
		BundleType:     req.Bundle.Type,
		Paths:          req.Bundle.Paths(),
		RuleType:       req.Rule.Name,
		Context:        req.Rule.Context,
		FailureDetails: details,
	}
}
