package validators

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vigil-dev/vigil/pkg/cache"
	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/logging"
	"github.com/vigil-dev/vigil/pkg/params"
	"github.com/vigil-dev/vigil/pkg/project"
	"github.com/vigil-dev/vigil/pkg/prompt"
	"github.com/vigil-dev/vigil/pkg/types"
)

// Dispatcher runs a rule's ordered phases against one bundle with
// short-circuit semantics: the first failing phase stops the remaining
// phases and yields the unit's finding.
type Dispatcher struct {
	Registry *Registry
	Resolver *params.Resolver
	Project  *project.Context
	Prompt   prompt.Runner
	Cache    *cache.Store
	CacheTTL time.Duration

	logger zerolog.Logger
}

// NewDispatcher wires a dispatcher from its collaborators
func NewDispatcher(reg *Registry, resolver *params.Resolver) *Dispatcher {
	return &Dispatcher{
		Registry: reg,
		Resolver: resolver,
		logger:   logging.GetLogger("validators.dispatch"),
	}
}

// UnitResult is the outcome of one (rule, bundle) unit
type UnitResult struct {
	Rule    string
	Bundle  types.Bundle
	Status  types.CheckStatus
	Finding *types.Finding

	// Err is set when Status is errored
	Err error

	// FailedPhase names the phase that produced the finding or error
	FailedPhase string

	// PhasesRun counts phases executed before stopping
	PhasesRun int

	// ValidatorType and ResolvedParams describe the last phase executed,
	// recorded as check metadata
	ValidatorType  string
	ResolvedParams map[string]interface{}
}

// RunUnit executes the rule's phases in declaration order against the
// bundle. A validator error marks the unit errored, distinct from
// failed; sibling units are unaffected.
func (d *Dispatcher) RunUnit(ctx context.Context, rule types.Rule, bundle types.Bundle, allBundles []types.Bundle) UnitResult {
	result := UnitResult{Rule: rule.Name, Bundle: bundle, Status: types.StatusPassed}

	for _, phase := range rule.Phases {
		if err := ctx.Err(); err != nil {
			result.Status = types.StatusErrored
			result.Err = errors.Wrapf(err, errors.ErrUnitTimeout,
				"rule %q bundle %s cancelled before phase %q", rule.Name, bundle.ID, phase.Name)
			result.FailedPhase = phase.Name
			return result
		}

		result.PhasesRun++
		result.ValidatorType = phase.ValidatorType

		finding, resolved, err := d.runPhase(ctx, rule, phase, bundle, allBundles)
		result.ResolvedParams = resolved
		if err != nil {
			d.logger.Warn().
				Err(err).
				Str("rule", rule.Name).
				Str("phase", phase.Name).
				Str("bundle", bundle.ID).
				Msg("phase errored")
			result.Status = types.StatusErrored
			result.Err = err
			result.FailedPhase = phase.Name
			return result
		}

		if finding != nil {
			result.Status = types.StatusFailed
			result.Finding = finding
			result.FailedPhase = phase.Name
			return result
		}
	}

	return result
}

func (d *Dispatcher) runPhase(ctx context.Context, rule types.Rule, phase types.ValidationPhase, bundle types.Bundle, allBundles []types.Bundle) (*types.Finding, map[string]interface{}, error) {
	validator, err := d.Registry.Lookup(phase)
	if err != nil {
		return nil, nil, err
	}

	resolved, err := d.Resolver.Resolve(params.Query{
		ValidatorType: phase.ValidatorType,
		Rule:          rule.Name,
		Group:         rule.Group,
		Phase:         phase.Name,
	}, phase.Params)
	if err != nil {
		return nil, nil, err
	}

	req := Request{
		Rule:     rule,
		Phase:    phase,
		Bundle:   bundle,
		Params:   resolved,
		Project:  d.Project,
		Prompt:   d.Prompt,
		Cache:    d.Cache,
		CacheTTL: d.CacheTTL,
	}
	if cb, ok := validator.(CrossBundle); ok && cb.NeedsAllBundles() {
		req.AllBundles = allBundles
	}

	finding, err := validator.Validate(ctx, req)
	if err != nil {
		return nil, resolved, errors.Wrapf(err, errors.ErrValidatorExecute,
			"validator %s failed in phase %q", phase.ValidatorType, phase.Name)
	}
	if finding == nil {
		return nil, resolved, nil
	}

	d.finish(finding, rule, phase, validator)
	return finding, resolved, nil
}

// finish formats the finding's messages from the phase templates and the
// validator defaults
func (d *Dispatcher) finish(finding *types.Finding, rule types.Rule, phase types.ValidationPhase, validator Validator) {
	template := phase.FailureMessage
	if template == "" {
		template = validator.DefaultFailureMessage()
	}
	finding.ObservedIssue = FormatMessage(template, finding.FailureDetails)

	expected := phase.ExpectedBehavior
	if expected == "" {
		expected = validator.DefaultExpectedBehavior()
	}
	finding.ExpectedQuality = expected

	if rule.DraftInstruction != "" {
		finding.DraftInstruction = FormatMessage(rule.DraftInstruction, finding.FailureDetails)
	}
}
