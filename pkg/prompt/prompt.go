// Package prompt defines the prompt-execution collaborator used by
// LLM-backed validators. The transport itself lives outside the engine;
// implementations are supplied by the caller.
package prompt

import (
	"context"
	"sync"

	"github.com/vigil-dev/vigil/pkg/types"
)

// Runner executes one prompt against a model provider. Implementations
// may return a provider error (mapped to an errored unit) or honor
// context cancellation for timeouts.
type Runner interface {
	Execute(ctx context.Context, prompt string, modelRef string, resources []types.DocumentFile) (string, error)
}

// Call records one Execute invocation on a StaticRunner
type Call struct {
	Prompt    string
	ModelRef  string
	Resources []types.DocumentFile
}

// StaticRunner is a canned Runner for tests and offline runs: it
// returns a fixed response (or error) and records every call.
type StaticRunner struct {
	Response string
	Err      error

	mu    sync.Mutex
	calls []Call
}

// Execute implements Runner
func (r *StaticRunner) Execute(ctx context.Context, prompt string, modelRef string, resources []types.DocumentFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	r.calls = append(r.calls, Call{Prompt: prompt, ModelRef: modelRef, Resources: resources})
	r.mu.Unlock()

	if r.Err != nil {
		return "", r.Err
	}
	return r.Response, nil
}

// Calls returns a copy of the recorded invocations
func (r *StaticRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
