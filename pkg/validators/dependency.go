package validators

import (
	"context"
	"strings"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/graph"
	"github.com/vigil-dev/vigil/pkg/types"
)

// Namespaced types of the dependency-graph validators
const (
	DependencyCyclesName     = "core:dependency_cycles"
	DependencyDuplicatesName = "core:dependency_duplicates"
	DependencyDepthName      = "core:dependency_depth"
)

// buildGraph assembles the dependency graph for a request. The graph is
// rebuilt on every call: it must reflect the current files, never a
// cached snapshot.
func buildGraph(req Request) (*graph.Graph, error) {
	extraDirs, err := stringSliceParam(req.Params, "resource_dirs")
	if err != nil {
		return nil, err
	}
	if req.Project == nil {
		return nil, errors.New(errors.ErrValidatorExecute,
			"dependency validators require project context")
	}
	return req.Project.BuildGraph(extraDirs)
}

// dependencyCycles fails when the resource graph contains any cycle
type dependencyCycles struct{}

func newDependencyCycles() (Validator, error) { return &dependencyCycles{}, nil }

func (v *dependencyCycles) Type() string                 { return DependencyCyclesName }
func (v *dependencyCycles) Computation() ComputationType { return ComputationProgrammatic }

func (v *dependencyCycles) DefaultFailureMessage() string {
	return "dependency cycles detected: {cycles}"
}

func (v *dependencyCycles) DefaultExpectedBehavior() string {
	return "resource dependencies form an acyclic graph"
}

func (v *dependencyCycles) Validate(ctx context.Context, req Request) (*types.Finding, error) {
	g, err := buildGraph(req)
	if err != nil {
		return nil, err
	}

	cycles := g.FindCycles()
	if len(cycles) == 0 {
		return nil, nil
	}

	rendered := make([]string, len(cycles))
	for i, c := range cycles {
		rendered[i] = c.String()
	}

	return Fail(req, map[string]interface{}{
		"cycles": strings.Join(rendered, "; "),
		"count":  len(cycles),
	}), nil
}

// dependencyDuplicates fails when a declared dependency is already
// reachable transitively through another declared dependency
type dependencyDuplicates struct{}

func newDependencyDuplicates() (Validator, error) { return &dependencyDuplicates{}, nil }

func (v *dependencyDuplicates) Type() string                 { return DependencyDuplicatesName }
func (v *dependencyDuplicates) Computation() ComputationType { return ComputationProgrammatic }

func (v *dependencyDuplicates) DefaultFailureMessage() string {
	return "redundant declared dependencies: {duplicates}"
}

func (v *dependencyDuplicates) DefaultExpectedBehavior() string {
	return "no resource declares a dependency it already reaches transitively"
}

func (v *dependencyDuplicates) Validate(ctx context.Context, req Request) (*types.Finding, error) {
	g, err := buildGraph(req)
	if err != nil {
		return nil, err
	}

	dups := g.FindDuplicates()
	if len(dups) == 0 {
		return nil, nil
	}

	rendered := make([]string, len(dups))
	for i, d := range dups {
		rendered[i] = d.Resource + " declares " + d.Redundant + " (already via " + d.Via + ")"
	}

	return Fail(req, map[string]interface{}{
		"duplicates": strings.Join(rendered, "; "),
		"count":      len(dups),
	}), nil
}

// dependencyDepth fails when any resource's dependency depth exceeds
// max_depth. A cycle encountered during depth computation is a
// validator error, not a depth violation.
type dependencyDepth struct{}

func newDependencyDepth() (Validator, error) { return &dependencyDepth{}, nil }

func (v *dependencyDepth) Type() string                 { return DependencyDepthName }
func (v *dependencyDepth) Computation() ComputationType { return ComputationProgrammatic }

func (v *dependencyDepth) DefaultFailureMessage() string {
	return "{resource} has dependency depth {actual_depth} (limit {limit}): {chain}"
}

func (v *dependencyDepth) DefaultExpectedBehavior() string {
	return "dependency chains stay within the configured depth limit"
}

// defaultDepthLimit applies when the phase sets no max_depth parameter
const defaultDepthLimit = 3

func (v *dependencyDepth) Validate(ctx context.Context, req Request) (*types.Finding, error) {
	limit := intParam(req.Params, "max_depth", defaultDepthLimit)

	g, err := buildGraph(req)
	if err != nil {
		return nil, err
	}

	violations, err := g.MaxDepth(limit)
	if err != nil {
		// ErrGraphCycle: depth is undefined, distinct from exceeding the limit
		return nil, err
	}
	if len(violations) == 0 {
		return nil, nil
	}

	worst := violations[0]
	for _, vi := range violations[1:] {
		if vi.ActualDepth > worst.ActualDepth {
			worst = vi
		}
	}

	all := make([]string, len(violations))
	for i, vi := range violations {
		all[i] = vi.Resource
	}

	return Fail(req, map[string]interface{}{
		"resource":     worst.Resource,
		"actual_depth": worst.ActualDepth,
		"limit":        limit,
		"chain":        worst.ChainString(),
		"violations":   strings.Join(all, ", "),
	}), nil
}
