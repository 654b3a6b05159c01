package validators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/project"
	"github.com/vigil-dev/vigil/pkg/types"
)

// writeResources lays out a tools/ directory of resource files, each
// declaring its dependencies in YAML front matter
func writeResources(t *testing.T, deps map[string][]string) *project.Context {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "tools")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	for name, dd := range deps {
		content := fmt.Sprintf("---\nname: %s\n", name)
		if len(dd) > 0 {
			content += "dependencies:\n"
			for _, d := range dd {
				content += fmt.Sprintf("  - %s\n", d)
			}
		}
		content += "---\n\nresource doc\n"
		path := filepath.Join(dir, name+".md")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return &project.Context{Root: root, ResourceDirs: []string{"tools"}}
}

func dependencyRequest(t *testing.T, vtype string, proj *project.Context, params map[string]interface{}) Request {
	t.Helper()
	return Request{
		Rule:    types.Rule{Name: "graph-check"},
		Phase:   types.ValidationPhase{Name: "check", ValidatorType: vtype},
		Bundle:  testBundle(t, map[string]string{"doc.md": "x"}),
		Params:  params,
		Project: proj,
	}
}

func TestDependencyCycles(t *testing.T) {
	v, err := newDependencyCycles()
	require.NoError(t, err)

	t.Run("acyclic graph passes", func(t *testing.T) {
		proj := writeResources(t, map[string][]string{
			"a": {"b"},
			"b": {"c"},
			"c": nil,
		})

		finding, err := v.Validate(context.Background(), dependencyRequest(t, DependencyCyclesName, proj, nil))
		require.NoError(t, err)
		assert.Nil(t, finding)
	})

	t.Run("cycle is reported once", func(t *testing.T) {
		proj := writeResources(t, map[string][]string{
			"a": {"b"},
			"b": {"c"},
			"c": {"a"},
		})

		finding, err := v.Validate(context.Background(), dependencyRequest(t, DependencyCyclesName, proj, nil))
		require.NoError(t, err)
		require.NotNil(t, finding)
		assert.Equal(t, 1, finding.FailureDetails["count"])
		assert.Contains(t, finding.FailureDetails["cycles"], "a")
	})

	t.Run("missing project context is an error", func(t *testing.T) {
		_, err := v.Validate(context.Background(), dependencyRequest(t, DependencyCyclesName, nil, nil))
		assert.Error(t, err)
	})
}

func TestDependencyDuplicates(t *testing.T) {
	v, err := newDependencyDuplicates()
	require.NoError(t, err)

	t.Run("transitively covered dependency is redundant", func(t *testing.T) {
		// a declares both b and c, but b already reaches c
		proj := writeResources(t, map[string][]string{
			"a": {"b", "c"},
			"b": {"c"},
			"c": nil,
		})

		finding, err := v.Validate(context.Background(), dependencyRequest(t, DependencyDuplicatesName, proj, nil))
		require.NoError(t, err)
		require.NotNil(t, finding)
		assert.Equal(t, 1, finding.FailureDetails["count"])
		assert.Contains(t, finding.FailureDetails["duplicates"], "a declares c")
	})

	t.Run("distinct branches are not duplicates", func(t *testing.T) {
		proj := writeResources(t, map[string][]string{
			"a": {"b", "c"},
			"b": nil,
			"c": nil,
		})

		finding, err := v.Validate(context.Background(), dependencyRequest(t, DependencyDuplicatesName, proj, nil))
		require.NoError(t, err)
		assert.Nil(t, finding)
	})
}

func TestDependencyDepth(t *testing.T) {
	v, err := newDependencyDepth()
	require.NoError(t, err)

	chain := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"d"},
		"d": {"e"},
		"e": nil,
	}

	t.Run("chain beyond limit fails with worst offender", func(t *testing.T) {
		proj := writeResources(t, chain)

		finding, err := v.Validate(context.Background(), dependencyRequest(t, DependencyDepthName, proj, map[string]interface{}{
			"max_depth": 2,
		}))
		require.NoError(t, err)
		require.NotNil(t, finding)
		assert.Equal(t, "a", finding.FailureDetails["resource"])
		assert.Equal(t, 4, finding.FailureDetails["actual_depth"])
		assert.Equal(t, 2, finding.FailureDetails["limit"])
	})

	t.Run("chain at the limit passes", func(t *testing.T) {
		proj := writeResources(t, chain)

		finding, err := v.Validate(context.Background(), dependencyRequest(t, DependencyDepthName, proj, map[string]interface{}{
			"max_depth": 4,
		}))
		require.NoError(t, err)
		assert.Nil(t, finding)
	})

	t.Run("cycle during depth computation is an error not a violation", func(t *testing.T) {
		proj := writeResources(t, map[string][]string{
			"a": {"b"},
			"b": {"a"},
		})

		finding, err := v.Validate(context.Background(), dependencyRequest(t, DependencyDepthName, proj, nil))
		require.Error(t, err)
		assert.Nil(t, finding)
		assert.True(t, errors.IsErrorCode(err, errors.ErrGraphCycle))
	})
}
