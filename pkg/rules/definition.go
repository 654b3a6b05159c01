// Package rules loads and merges declarative rule definitions from
// layered sources and validates them before any rule runs.
package rules

import (
	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/types"
)

// Definition is the decodable form of one rule as written in a rules
// file (YAML) or inline in the project config (TOML)
type Definition struct {
	Name        string `yaml:"name" koanf:"name"`
	Group       string `yaml:"group" koanf:"group"`
	Description string `yaml:"description" koanf:"description"`
	Scope       string `yaml:"scope" koanf:"scope"`
	Context     string `yaml:"context" koanf:"context"`

	Bundle BundleDefinition  `yaml:"bundle" koanf:"bundle"`
	Phases []PhaseDefinition `yaml:"phases" koanf:"phases"`

	ClientFilter           []string `yaml:"client_filter" koanf:"client_filter"`
	DraftInstruction       string   `yaml:"draft_instruction" koanf:"draft_instruction"`
	RequiresProjectContext bool     `yaml:"requires_project_context" koanf:"requires_project_context"`
}

// BundleDefinition describes which files a rule validates
type BundleDefinition struct {
	Type             string   `yaml:"type" koanf:"type"`
	Patterns         []string `yaml:"patterns" koanf:"patterns"`
	Strategy         string   `yaml:"strategy" koanf:"strategy"`
	ResourcePatterns []string `yaml:"resource_patterns" koanf:"resource_patterns"`
}

// PhaseDefinition describes one validation phase
type PhaseDefinition struct {
	Name             string                 `yaml:"name" koanf:"name"`
	Validator        string                 `yaml:"validator" koanf:"validator"`
	FailureMessage   string                 `yaml:"failure_message" koanf:"failure_message"`
	ExpectedBehavior string                 `yaml:"expected_behavior" koanf:"expected_behavior"`
	Provider         string                 `yaml:"provider" koanf:"provider"`
	Params           map[string]interface{} `yaml:"params" koanf:"params"`
}

// ToRule converts the decoded definition into the engine's rule type,
// applying defaults and rejecting structurally invalid definitions.
// source names where the definition came from, for diagnostics.
func (d Definition) ToRule(source string) (types.Rule, error) {
	if d.Name == "" {
		return types.Rule{}, errors.Newf(errors.ErrRuleInvalid,
			"rule from %s has no name", source)
	}
	if len(d.Phases) == 0 {
		return types.Rule{}, errors.Newf(errors.ErrRuleInvalid,
			"rule %q has no phases", d.Name)
	}

	scope := types.RuleScope(d.Scope)
	if d.Scope == "" {
		scope = types.ScopeProjectLevel
	}
	switch scope {
	case types.ScopeProjectLevel, types.ScopeConversationLevel:
	default:
		return types.Rule{}, errors.Newf(errors.ErrRuleInvalid,
			"rule %q has unknown scope %q", d.Name, d.Scope)
	}

	if scope == types.ScopeProjectLevel && len(d.Bundle.Patterns) == 0 {
		return types.Rule{}, errors.Newf(errors.ErrRuleInvalid,
			"rule %q declares no bundle patterns", d.Name)
	}

	switch types.BundleStrategy(d.Bundle.Strategy) {
	case "", types.StrategyIndividual, types.StrategyCollection:
	default:
		return types.Rule{}, errors.Newf(errors.ErrRuleInvalid,
			"rule %q has unknown bundle strategy %q", d.Name, d.Bundle.Strategy)
	}

	bundleType := d.Bundle.Type
	if bundleType == "" {
		bundleType = d.Name
	}

	phases := make([]types.ValidationPhase, len(d.Phases))
	for i, p := range d.Phases {
		if !types.ValidValidatorType(p.Validator) {
			return types.Rule{}, errors.Newf(errors.ErrRuleInvalid,
				"rule %q phase %q: invalid validator type %q", d.Name, p.Name, p.Validator)
		}
		name := p.Name
		if name == "" {
			name = p.Validator
		}
		phases[i] = types.ValidationPhase{
			Name:             name,
			ValidatorType:    p.Validator,
			FailureMessage:   p.FailureMessage,
			ExpectedBehavior: p.ExpectedBehavior,
			Provider:         p.Provider,
			Params:           p.Params,
		}
	}

	var spec *types.BundleSpec
	if len(d.Bundle.Patterns) > 0 {
		spec = &types.BundleSpec{
			BundleType:       bundleType,
			Patterns:         d.Bundle.Patterns,
			Strategy:         types.BundleStrategy(d.Bundle.Strategy),
			ResourcePatterns: d.Bundle.ResourcePatterns,
		}
	}

	return types.Rule{
		Name:                   d.Name,
		Group:                  d.Group,
		Description:            d.Description,
		Scope:                  scope,
		Context:                d.Context,
		Bundle:                 spec,
		Phases:                 phases,
		ClientFilter:           d.ClientFilter,
		DraftInstruction:       d.DraftInstruction,
		RequiresProjectContext: d.RequiresProjectContext,
		Source:                 source,
	}, nil
}
