package execution

import (
	"time"

	"github.com/vigil-dev/vigil/pkg/types"
)

// CheckResult is the recorded outcome of one (rule, bundle) unit
type CheckResult struct {
	// ID is a unique identifier for this check execution
	ID string `json:"id"`

	RuleName string `json:"rule_name"`
	RuleID   string `json:"rule_id"`

	BundleID   string   `json:"bundle_id"`
	BundleType string   `json:"bundle_type"`
	Files      []string `json:"files,omitempty"`

	Status  types.CheckStatus `json:"status"`
	Finding *types.Finding    `json:"finding,omitempty"`

	// Error holds the unit's error text when Status is errored
	Error string `json:"error,omitempty"`

	// ValidatorType and ResolvedParams describe the last phase executed
	ValidatorType  string                 `json:"validator_type,omitempty"`
	ResolvedParams map[string]interface{} `json:"resolved_params,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// RuleSummary counts unit outcomes for one rule
type RuleSummary struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// Status reduces the summary to one rule-level status: any error wins,
// then any failure, else passed
func (s RuleSummary) Status() types.CheckStatus {
	switch {
	case s.Errored > 0:
		return types.StatusErrored
	case s.Failed > 0:
		return types.StatusFailed
	default:
		return types.StatusPassed
	}
}

// Result is the aggregated outcome of one run
type Result struct {
	// Checks are all executed units in deterministic order (rule id,
	// bundle id, first path)
	Checks []CheckResult `json:"checks"`

	// Findings are the failures and resource errors, in check order
	Findings []types.Finding `json:"findings"`

	// Rules summarizes outcomes per rule id
	Rules map[string]RuleSummary `json:"rules"`

	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
}

// Passed reports whether the run produced no failures and no errors
func (r *Result) Passed() bool {
	for _, s := range r.Rules {
		if s.Failed > 0 || s.Errored > 0 {
			return false
		}
	}
	return true
}

// Counts sums unit outcomes across all rules
func (r *Result) Counts() (passed, failed, errored int) {
	for _, s := range r.Rules {
		passed += s.Passed
		failed += s.Failed
		errored += s.Errored
	}
	return passed, failed, errored
}
