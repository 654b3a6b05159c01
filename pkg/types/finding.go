package types

// Finding is a structured violation record produced when a phase fails.
// Findings are immutable after creation.
type Finding struct {
	// BundleID and BundleType identify the bundle the finding applies to
	BundleID   string `json:"bundle_id"`
	BundleType string `json:"bundle_type"`

	// Paths are the affected files, relative to the project root
	Paths []string `json:"paths"`

	// ObservedIssue is the formatted failure message
	ObservedIssue string `json:"observed_issue"`

	// ExpectedQuality describes what passing would have looked like
	ExpectedQuality string `json:"expected_quality"`

	// RuleType names the rule that produced the finding
	RuleType string `json:"rule_type"`

	// Context carries the rule's context text
	Context string `json:"context,omitempty"`

	// DraftInstruction is the formatted remediation template, when the
	// rule declares one
	DraftInstruction string `json:"draft_instruction,omitempty"`

	// FailureDetails is the structured detail map used for template
	// substitution
	FailureDetails map[string]interface{} `json:"failure_details,omitempty"`
}

// CheckStatus classifies the outcome of one (rule, bundle) unit
type CheckStatus string

const (
	StatusPassed  CheckStatus = "passed"
	StatusFailed  CheckStatus = "failed"
	StatusErrored CheckStatus = "errored"
)
