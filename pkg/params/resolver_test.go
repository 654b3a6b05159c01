package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/types"
)

func mustResolver(t *testing.T, overrides []types.Override) *Resolver {
	t.Helper()
	r, err := NewResolver(overrides)
	require.NoError(t, err)
	return r
}

func TestValidateOverrides(t *testing.T) {
	t.Run("valid targets", func(t *testing.T) {
		_, err := NewResolver([]types.Override{
			{Target: "core:file_exists", Strategy: types.StrategyMerge},
			{Target: "docs-exist", Strategy: types.StrategyReplace},
			{Target: "docs::docs-exist"},
			{Target: "docs::docs-exist::check_headers", Strategy: types.StrategyMerge},
		})
		assert.NoError(t, err)
	})

	t.Run("pattern validator targets", func(t *testing.T) {
		_, err := NewResolver([]types.Override{
			{Target: "core:dependency_*", Strategy: types.StrategyMerge},
			{Target: `^core:.*$`},
		})
		assert.NoError(t, err, "glob and regex validator targets are valid")
	})

	t.Run("malformed regex validator target", func(t *testing.T) {
		_, err := NewResolver([]types.Override{{Target: "core:[unclosed"}})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrOverrideInvalid))
	})

	t.Run("non-namespaced validator key", func(t *testing.T) {
		_, err := NewResolver([]types.Override{{Target: "Bad:Validator"}})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrOverrideInvalid))
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := NewResolver([]types.Override{{Target: "docs-exist", Strategy: "union"}})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrOverrideInvalid))
	})

	t.Run("too many segments", func(t *testing.T) {
		_, err := NewResolver([]types.Override{{Target: "a::b::c::d"}})
		require.Error(t, err)
	})

	t.Run("empty segment", func(t *testing.T) {
		_, err := NewResolver([]types.Override{{Target: "a::::c"}})
		require.Error(t, err)
	})

	t.Run("empty target", func(t *testing.T) {
		_, err := NewResolver([]types.Override{{Target: ""}})
		require.Error(t, err)
	})
}

func TestResolveMergeTiersConcatenateLists(t *testing.T) {
	// base=["*.tmp"], validator merge=["*.log"], rule merge=["*.bak"]
	// resolves in precedence order
	r := mustResolver(t, []types.Override{
		{
			Target:   "core:file_exists",
			Strategy: types.StrategyMerge,
			Params:   map[string]interface{}{"ignore_patterns": []interface{}{"*.log"}},
		},
		{
			Target:   "docs-exist",
			Strategy: types.StrategyMerge,
			Params:   map[string]interface{}{"ignore_patterns": []interface{}{"*.bak"}},
		},
	})

	q := Query{ValidatorType: "core:file_exists", Rule: "docs-exist", Group: "docs", Phase: "p1"}
	base := map[string]interface{}{"ignore_patterns": []interface{}{"*.tmp"}}

	resolved, err := r.Resolve(q, base)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"*.tmp", "*.log", "*.bak"}, resolved["ignore_patterns"])
}

func TestResolveReplaceDiscardsLowerPrecedence(t *testing.T) {
	r := mustResolver(t, []types.Override{
		{
			Target:   "core:file_exists",
			Strategy: types.StrategyMerge,
			Params:   map[string]interface{}{"ignore_patterns": []interface{}{"*.log"}},
		},
		{
			Target:   "docs-exist",
			Strategy: types.StrategyReplace,
			Params:   map[string]interface{}{"ignore_patterns": []interface{}{"*.bak"}},
		},
	})

	q := Query{ValidatorType: "core:file_exists", Rule: "docs-exist"}
	base := map[string]interface{}{"ignore_patterns": []interface{}{"*.tmp"}}

	resolved, err := r.Resolve(q, base)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"*.bak"}, resolved["ignore_patterns"],
		"replace discards everything below it")
}

func TestResolveSpecificityOrder(t *testing.T) {
	// All three rule-level specificities merge; the most specific is
	// applied last and wins scalar conflicts
	r := mustResolver(t, []types.Override{
		{Target: "docs::my-rule::phase1", Strategy: types.StrategyMerge,
			Params: map[string]interface{}{"threshold": 3, "tag": []interface{}{"phase"}}},
		{Target: "my-rule", Strategy: types.StrategyMerge,
			Params: map[string]interface{}{"threshold": 1, "tag": []interface{}{"rule"}}},
		{Target: "docs::my-rule", Strategy: types.StrategyMerge,
			Params: map[string]interface{}{"threshold": 2, "tag": []interface{}{"group"}}},
	})

	q := Query{ValidatorType: "core:content_matches", Rule: "my-rule", Group: "docs", Phase: "phase1"}

	resolved, err := r.Resolve(q, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 3, resolved["threshold"], "group::rule::phase wins")
	assert.Equal(t, []interface{}{"rule", "group", "phase"}, resolved["tag"],
		"merge lists concatenate in ascending specificity order")
}

func TestResolveMapShallowMerge(t *testing.T) {
	r := mustResolver(t, []types.Override{
		{Target: "my-rule", Strategy: types.StrategyMerge,
			Params: map[string]interface{}{
				"limits": map[string]interface{}{"max": 10, "extra": true},
			}},
	})

	q := Query{ValidatorType: "core:file_size", Rule: "my-rule"}
	base := map[string]interface{}{
		"limits": map[string]interface{}{"max": 5, "min": 1},
	}

	resolved, err := r.Resolve(q, base)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"max": 10, "min": 1, "extra": true}, resolved["limits"],
		"maps shallow-merge with higher precedence winning on key conflicts")
}

func TestResolveNoMatchLeavesBase(t *testing.T) {
	r := mustResolver(t, []types.Override{
		{Target: "other-rule", Strategy: types.StrategyReplace,
			Params: map[string]interface{}{"x": 99}},
	})

	q := Query{ValidatorType: "core:file_exists", Rule: "my-rule"}
	resolved, err := r.Resolve(q, map[string]interface{}{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, resolved["x"])
}

func TestResolveValidatorPatternTarget(t *testing.T) {
	// Glob targets let one override apply to a validator family
	r := mustResolver(t, []types.Override{
		{Target: "core:dependency_*", Strategy: types.StrategyMerge,
			Params: map[string]interface{}{"resource_dirs": []interface{}{"tools"}}},
	})

	q := Query{ValidatorType: "core:dependency_cycles", Rule: "r"}
	resolved, err := r.Resolve(q, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"tools"}, resolved["resource_dirs"])

	q.ValidatorType = "core:file_exists"
	resolved, err = r.Resolve(q, nil)
	require.NoError(t, err)
	assert.NotContains(t, resolved, "resource_dirs")
}

func TestResolveIdempotent(t *testing.T) {
	r := mustResolver(t, []types.Override{
		{Target: "my-rule", Strategy: types.StrategyMerge,
			Params: map[string]interface{}{"list": []interface{}{"b"}}},
	})

	q := Query{ValidatorType: "core:file_exists", Rule: "my-rule"}
	base := map[string]interface{}{"list": []interface{}{"a"}}

	first, err := r.Resolve(q, base)
	require.NoError(t, err)
	second, err := r.Resolve(q, base)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs twice yield identical output")
	assert.Equal(t, []interface{}{"a"}, base["list"], "base params are never mutated")
}

func TestResolveStringSliceBase(t *testing.T) {
	// Base params built in Go often use []string; merging must still work
	r := mustResolver(t, []types.Override{
		{Target: "my-rule", Strategy: types.StrategyMerge,
			Params: map[string]interface{}{"ignore_patterns": []string{"*.bak"}}},
	})

	q := Query{ValidatorType: "core:file_exists", Rule: "my-rule"}
	base := map[string]interface{}{"ignore_patterns": []string{"*.tmp"}}

	resolved, err := r.Resolve(q, base)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"*.tmp", "*.bak"}, resolved["ignore_patterns"])
}
