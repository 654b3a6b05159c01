package types

// OverrideStrategy controls how an override combines with lower-precedence
// parameter values
type OverrideStrategy string

const (
	// StrategyMerge combines with the accumulated value: lists concatenate
	// in precedence order, maps shallow-merge with the override winning on
	// key conflicts, scalars are replaced
	StrategyMerge OverrideStrategy = "merge"

	// StrategyReplace discards the accumulated value wholesale for every
	// key the override sets
	StrategyReplace OverrideStrategy = "replace"
)

// Override adjusts validator parameters for a validator type or a rule.
// Targets are either a namespaced validator type ("core:file_exists") or a
// rule identifier with up to three "::"-separated segments
// ("rule", "group::rule", "group::rule::phase").
type Override struct {
	Target   string                 `yaml:"target"`
	Strategy OverrideStrategy       `yaml:"strategy"`
	Params   map[string]interface{} `yaml:"params"`
}
