// Package execution orchestrates a full validation run: it expands
// rules into (rule, bundle) units, executes them on a bounded worker
// pool, and aggregates deterministic results.
package execution

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vigil-dev/vigil/pkg/bundle"
	"github.com/vigil-dev/vigil/pkg/cache"
	"github.com/vigil-dev/vigil/pkg/conversation"
	"github.com/vigil-dev/vigil/pkg/logging"
	"github.com/vigil-dev/vigil/pkg/params"
	"github.com/vigil-dev/vigil/pkg/project"
	"github.com/vigil-dev/vigil/pkg/rules"
	"github.com/vigil-dev/vigil/pkg/types"
	"github.com/vigil-dev/vigil/pkg/validators"
)

// unit is one (rule, bundle) pair scheduled for execution
type unit struct {
	rule   types.Rule
	bundle types.Bundle

	// all holds every bundle of the rule, for cross-bundle validators
	all []types.Bundle
}

// Run executes the rule set against a project root. Conversation rules
// draw sessions from convSource; a nil source skips them.
//
// Configuration problems (bad overrides, bad cache setup) abort before
// any unit runs. Unit-level problems never abort the run: they become
// errored checks in the result.
func Run(ctx context.Context, set *rules.RuleSet, root string, convSource conversation.Source, opts Options) (*Result, error) {
	started := time.Now()
	logger := logging.GetLogger("execution")

	resolver, err := params.NewResolver(opts.Overrides)
	if err != nil {
		return nil, err
	}

	reg := opts.Registry
	if reg == nil {
		reg = validators.NewCoreRegistry()
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = cache.DefaultDir()
	}

	dispatcher := validators.NewDispatcher(reg, resolver)
	dispatcher.Project = &project.Context{Root: root, ResourceDirs: opts.ResourceDirs}
	dispatcher.Prompt = opts.Prompt
	dispatcher.Cache = cache.New(cacheDir, opts.DisableCache)
	dispatcher.CacheTTL = opts.cacheTTL()

	units, resourceChecks, err := plan(ctx, set, root, convSource, opts)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("rules", set.Len()).
		Int("units", len(units)).
		Int("workers", opts.workers()).
		Msg("starting run")

	checks := make([]CheckResult, len(units))

	eg, unitCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.workers())
	for i, u := range units {
		i, u := i, u
		eg.Go(func() error {
			checks[i] = runUnit(unitCtx, dispatcher, u, opts.UnitTimeout)
			return nil
		})
	}
	// Workers never return errors; failures are folded into their checks
	_ = eg.Wait()

	checks = append(checks, resourceChecks...)
	return aggregate(checks, started), nil
}

// runUnit executes one unit under its own timeout, so a hung unit fails
// alone instead of stalling the run
func runUnit(ctx context.Context, d *validators.Dispatcher, u unit, timeout time.Duration) CheckResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	begun := time.Now()
	r := d.RunUnit(ctx, u.rule, u.bundle, u.all)

	check := CheckResult{
		ID:             uuid.NewString(),
		RuleName:       u.rule.Name,
		RuleID:         u.rule.ID(),
		BundleID:       u.bundle.ID,
		BundleType:     u.bundle.Type,
		Files:          u.bundle.Paths(),
		Status:         r.Status,
		Finding:        r.Finding,
		ValidatorType:  r.ValidatorType,
		ResolvedParams: r.ResolvedParams,
		Duration:       time.Since(begun),
	}
	if r.Err != nil {
		check.Error = r.Err.Error()
	}
	return check
}

// plan expands every applicable rule into units. Unreadable resource
// files surface as errored checks carrying the bundler's finding.
func plan(ctx context.Context, set *rules.RuleSet, root string, convSource conversation.Source, opts Options) ([]unit, []CheckResult, error) {
	builder := bundle.NewBuilder()

	var sessions []types.Session
	if convSource != nil {
		var err error
		sessions, err = convSource.Sessions(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	var units []unit
	var resourceChecks []CheckResult

	for _, rule := range set.Rules {
		if !opts.wantsRule(rule) {
			continue
		}

		var bundles []types.Bundle
		switch rule.Scope {
		case types.ScopeConversationLevel:
			bundles = sessionBundles(rule, sessions, opts.ClientFilter)
		default:
			if rule.Bundle == nil {
				continue
			}
			var findings []types.Finding
			var err error
			bundles, findings, err = builder.Build(*rule.Bundle, root)
			if err != nil {
				return nil, nil, err
			}
			for _, f := range findings {
				resourceChecks = append(resourceChecks, resourceCheck(rule, f))
			}
		}

		for _, b := range bundles {
			units = append(units, unit{rule: rule, bundle: b, all: bundles})
		}
	}

	return units, resourceChecks, nil
}

// sessionBundles renders each applicable session as one opaque bundle
func sessionBundles(rule types.Rule, sessions []types.Session, clientFilter string) []types.Bundle {
	bundleType := conversation.DefaultBundleType
	if rule.Bundle != nil && rule.Bundle.BundleType != "" {
		bundleType = rule.Bundle.BundleType
	}

	var out []types.Bundle
	for _, s := range sessions {
		if clientFilter != "" && s.AgentTool != clientFilter {
			continue
		}
		if !rule.AppliesToClient(s.AgentTool) {
			continue
		}
		out = append(out, conversation.SessionBundle(s, bundleType))
	}
	return out
}

// resourceCheck wraps an unreadable-file finding as an errored check so
// nothing is dropped silently
func resourceCheck(rule types.Rule, f types.Finding) CheckResult {
	return CheckResult{
		ID:         uuid.NewString(),
		RuleName:   rule.Name,
		RuleID:     rule.ID(),
		BundleID:   f.BundleID,
		BundleType: f.BundleType,
		Files:      f.Paths,
		Status:     types.StatusErrored,
		Finding:    &f,
		Error:      f.ObservedIssue,
	}
}

// aggregate orders checks deterministically and derives findings and
// per-rule summaries
func aggregate(checks []CheckResult, started time.Time) *Result {
	sort.Slice(checks, func(i, j int) bool {
		a, b := checks[i], checks[j]
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		if a.BundleID != b.BundleID {
			return a.BundleID < b.BundleID
		}
		return firstFile(a) < firstFile(b)
	})

	result := &Result{
		Checks:  checks,
		Rules:   make(map[string]RuleSummary),
		Started: started,
	}

	for _, c := range checks {
		s := result.Rules[c.RuleID]
		switch c.Status {
		case types.StatusErrored:
			s.Errored++
		case types.StatusFailed:
			s.Failed++
		default:
			s.Passed++
		}
		result.Rules[c.RuleID] = s

		if c.Finding != nil {
			result.Findings = append(result.Findings, *c.Finding)
		}
	}

	result.Duration = time.Since(started)
	return result
}

func firstFile(c CheckResult) string {
	if len(c.Files) > 0 {
		return c.Files[0]
	}
	return ""
}
