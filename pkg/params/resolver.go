// Package params resolves validator parameters across validator-, rule-,
// and phase-level overrides with merge/replace semantics.
package params

import (
	"reflect"
	"strings"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/patterns"
	"github.com/vigil-dev/vigil/pkg/types"
)

// maxIdentifierSegments bounds rule-level override identifiers:
// rule, group::rule, group::rule::phase
const maxIdentifierSegments = 3

// Query identifies the phase whose parameters are being resolved
type Query struct {
	ValidatorType string
	Rule          string
	Group         string
	Phase         string
}

// Resolver applies parameter overrides. It validates the override set at
// construction so malformed configuration aborts before any rule runs.
type Resolver struct {
	overrides []types.Override
	matcher   *patterns.Matcher
}

// NewResolver validates the overrides and builds a resolver.
// Validation rejects non-namespaced literal validator keys, malformed
// glob and regex targets, unknown strategies, and malformed rule
// identifiers (empty segments or more than three).
func NewResolver(overrides []types.Override) (*Resolver, error) {
	for _, ov := range overrides {
		if err := validate(ov); err != nil {
			return nil, err
		}
	}
	return &Resolver{
		overrides: overrides,
		matcher:   patterns.NewMatcher(),
	}, nil
}

func validate(ov types.Override) error {
	switch ov.Strategy {
	case types.StrategyMerge, types.StrategyReplace:
	case "":
		// merge is the default strategy
	default:
		return errors.Newf(errors.ErrOverrideInvalid,
			"unknown override strategy %q for target %q", ov.Strategy, ov.Target)
	}

	if ov.Target == "" {
		return errors.New(errors.ErrOverrideInvalid, "override target cannot be empty")
	}

	if isValidatorTarget(ov.Target) {
		// Literal targets must name a real namespaced validator type;
		// glob and regex targets match a family and only need to be
		// well-formed patterns
		if patterns.Classify(ov.Target) == patterns.KindLiteral {
			if !types.ValidValidatorType(ov.Target) {
				return errors.Newf(errors.ErrOverrideInvalid,
					"override target %q is not a namespaced validator type", ov.Target)
			}
			return nil
		}
		if err := patterns.Validate(ov.Target); err != nil {
			return errors.Wrapf(err, errors.ErrOverrideInvalid,
				"override target %q is not a valid pattern", ov.Target)
		}
		return nil
	}

	segments := strings.Split(ov.Target, "::")
	if len(segments) > maxIdentifierSegments {
		return errors.Newf(errors.ErrOverrideInvalid,
			"override target %q has more than %d segments", ov.Target, maxIdentifierSegments)
	}
	for _, seg := range segments {
		if seg == "" {
			return errors.Newf(errors.ErrOverrideInvalid,
				"override target %q contains an empty segment", ov.Target)
		}
		if err := patterns.Validate(seg); err != nil {
			return errors.Wrapf(err, errors.ErrOverrideInvalid,
				"override target %q contains an invalid pattern segment", ov.Target)
		}
	}
	return nil
}

// Resolve applies, by increasing precedence: base params, matching
// validator-level overrides, then matching rule-level overrides in
// ascending specificity (rule, group::rule, group::rule::phase) so the
// most specific matched override has the final say. Inputs are never
// mutated and resolution is idempotent.
func (r *Resolver) Resolve(q Query, base map[string]interface{}) (map[string]interface{}, error) {
	result := cloneMap(base)

	// Tier 1: validator-level
	for _, ov := range r.overrides {
		if !isValidatorTarget(ov.Target) {
			continue
		}
		matched, err := r.matcher.Matches(ov.Target, q.ValidatorType)
		if err != nil {
			return nil, err
		}
		if matched {
			combine(result, ov)
		}
	}

	// Tier 2 and 3: rule-level, least specific first so later, more
	// specific overrides win
	for segments := 1; segments <= maxIdentifierSegments; segments++ {
		for _, ov := range r.overrides {
			if isValidatorTarget(ov.Target) {
				continue
			}
			parts := strings.Split(ov.Target, "::")
			if len(parts) != segments {
				continue
			}
			matched, err := r.ruleTargetMatches(parts, q)
			if err != nil {
				return nil, err
			}
			if matched {
				combine(result, ov)
			}
		}
	}

	return result, nil
}

// isValidatorTarget distinguishes "ns:type" targets from "a::b" rule
// identifiers: a single colon marks a validator type
func isValidatorTarget(target string) bool {
	return strings.Contains(target, ":") && !strings.Contains(target, "::")
}

func (r *Resolver) ruleTargetMatches(parts []string, q Query) (bool, error) {
	var values []string
	switch len(parts) {
	case 1:
		values = []string{q.Rule}
	case 2:
		values = []string{q.Group, q.Rule}
	case 3:
		values = []string{q.Group, q.Rule, q.Phase}
	default:
		return false, nil
	}

	for i, part := range parts {
		matched, err := r.matcher.Matches(part, values[i])
		if err != nil {
			return false, err
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// combine folds one override into the accumulated params. Keys absent
// from the override are untouched by either strategy.
func combine(acc map[string]interface{}, ov types.Override) {
	for key, value := range ov.Params {
		if ov.Strategy == types.StrategyReplace {
			acc[key] = cloneValue(value)
			continue
		}
		acc[key] = mergeValue(acc[key], value)
	}
}

// mergeValue combines a lower-precedence value with a higher-precedence
// one: lists concatenate lower-then-higher without de-duplication, maps
// shallow-merge with the higher value winning per key, anything else is
// replaced.
func mergeValue(lower, higher interface{}) interface{} {
	if lowerList, ok := toSlice(lower); ok {
		if higherList, ok := toSlice(higher); ok {
			merged := make([]interface{}, 0, len(lowerList)+len(higherList))
			merged = append(merged, lowerList...)
			merged = append(merged, higherList...)
			return merged
		}
	}

	if lowerMap, ok := toMap(lower); ok {
		if higherMap, ok := toMap(higher); ok {
			merged := make(map[string]interface{}, len(lowerMap)+len(higherMap))
			for k, v := range lowerMap {
				merged[k] = v
			}
			for k, v := range higherMap {
				merged[k] = cloneValue(v)
			}
			return merged
		}
	}

	return cloneValue(higher)
}

// toSlice normalizes any slice value ([]interface{}, []string, ...) to
// []interface{}
func toSlice(v interface{}) ([]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]interface{}); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	if s, ok := toSlice(v); ok {
		out := make([]interface{}, len(s))
		for i, e := range s {
			out[i] = cloneValue(e)
		}
		return out
	}
	if m, ok := toMap(v); ok {
		return cloneMap(m)
	}
	return v
}
