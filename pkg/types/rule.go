package types

import (
	"regexp"
	"strings"
)

// RuleScope determines what a rule validates against
type RuleScope string

const (
	// ScopeProjectLevel rules validate files discovered under the project root
	ScopeProjectLevel RuleScope = "project_level"

	// ScopeConversationLevel rules validate parsed agent conversation logs
	ScopeConversationLevel RuleScope = "conversation_level"
)

// validatorTypePattern constrains validator type identifiers to
// "namespace:type" where both segments are lower_snake identifiers.
var validatorTypePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*:[a-z_][a-z0-9_]*$`)

// CoreNamespace is the namespace of the built-in validators
const CoreNamespace = "core"

// ValidValidatorType reports whether s is a well-formed namespaced
// validator type identifier.
func ValidValidatorType(s string) bool {
	return validatorTypePattern.MatchString(s)
}

// ValidationPhase is one validation step within a rule, backed by one validator.
type ValidationPhase struct {
	// Name identifies the phase within its rule
	Name string `yaml:"name"`

	// ValidatorType is the namespaced validator identifier ("namespace:type")
	ValidatorType string `yaml:"validator_type"`

	// FailureMessage is a template with {placeholder} substitution from
	// the finding's failure details
	FailureMessage string `yaml:"failure_message,omitempty"`

	// ExpectedBehavior describes what passing looks like
	ExpectedBehavior string `yaml:"expected_behavior,omitempty"`

	// Provider locates the plugin providing non-core validators.
	// Required for non-core namespaces, forbidden for core.
	Provider string `yaml:"provider,omitempty"`

	// Params is the free-form parameter map passed to the validator
	Params map[string]interface{} `yaml:"params,omitempty"`
}

// Namespace returns the namespace segment of the validator type
func (p ValidationPhase) Namespace() string {
	ns, _, _ := strings.Cut(p.ValidatorType, ":")
	return ns
}

// IsCore reports whether the phase uses a built-in validator
func (p ValidationPhase) IsCore() bool {
	return p.Namespace() == CoreNamespace
}

// Rule is a declarative rule definition. Rules are immutable once loaded.
type Rule struct {
	// Name uniquely identifies the rule within a rule set
	Name string `yaml:"name"`

	// Group is an optional grouping label used in override identifiers
	// ("group::rule")
	Group string `yaml:"group,omitempty"`

	Description string `yaml:"description,omitempty"`

	// Scope selects project files or conversation logs
	Scope RuleScope `yaml:"scope"`

	// Context is free text handed to validators (and LLM prompts)
	Context string `yaml:"context,omitempty"`

	// Bundle describes which files the rule validates; nil for rules
	// that operate on conversations only
	Bundle *BundleSpec `yaml:"bundle,omitempty"`

	// Phases run in declaration order; the first failure short-circuits
	Phases []ValidationPhase `yaml:"phases"`

	// ClientFilter restricts conversation rules to specific agent tools
	ClientFilter []string `yaml:"client_filter,omitempty"`

	// DraftInstruction is an optional remediation template attached to findings
	DraftInstruction string `yaml:"draft_instruction,omitempty"`

	// RequiresProjectContext marks rules whose validators need the
	// discovered resource inventory
	RequiresProjectContext bool `yaml:"requires_project_context,omitempty"`

	// Source records where the rule was loaded from
	Source string `yaml:"-"`
}

// ID returns the identity used for cache keys and override matching
func (r Rule) ID() string {
	if r.Group != "" {
		return r.Group + "::" + r.Name
	}
	return r.Name
}

// AppliesToClient reports whether the rule applies for the given agent-tool
// label. An empty filter matches every client.
func (r Rule) AppliesToClient(client string) bool {
	if len(r.ClientFilter) == 0 {
		return true
	}
	for _, c := range r.ClientFilter {
		if c == client {
			return true
		}
	}
	return false
}
