package validators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vigil-dev/vigil/pkg/cache"
	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/types"
)

// LLMReviewName is the namespaced type of the LLM-backed review validator
const LLMReviewName = "core:llm_review"

// llmReview delegates a semantic quality judgment to the prompt-execution
// collaborator. The engine never judges quality itself; it only builds
// the prompt, interprets the verdict, and caches the response.
//
// The model must answer with a line starting "PASS" or "FAIL: <reason>".
type llmReview struct{}

func newLLMReview() (Validator, error) {
	return &llmReview{}, nil
}

func (v *llmReview) Type() string                 { return LLMReviewName }
func (v *llmReview) Computation() ComputationType { return ComputationLLM }

func (v *llmReview) DefaultFailureMessage() string {
	return "review failed: {assessment}"
}

func (v *llmReview) DefaultExpectedBehavior() string {
	return "the content satisfies the rule's quality criteria"
}

func (v *llmReview) Validate(ctx context.Context, req Request) (*types.Finding, error) {
	if req.Prompt == nil {
		return nil, errors.New(errors.ErrPromptExecute,
			"llm_review requires a prompt runner")
	}

	modelRef := stringParam(req.Params, "model", "default")
	promptText := v.buildPrompt(req)

	key := cacheKey(req, modelRef, promptText)

	var store *cache.Store
	if req.Cache != nil {
		store = req.Cache
	} else {
		store = cache.New("", true)
	}

	response, _, err := store.GetOrCompute(ctx, key, req.CacheTTL, func(ctx context.Context) (string, error) {
		out, execErr := req.Prompt.Execute(ctx, promptText, modelRef, req.Bundle.Resources)
		if execErr != nil {
			return "", errors.Wrapf(execErr, errors.ErrPromptExecute,
				"prompt execution failed for rule %q", req.Rule.Name)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	verdict := strings.TrimSpace(response)
	if strings.HasPrefix(strings.ToUpper(verdict), "PASS") {
		return nil, nil
	}

	assessment := strings.TrimSpace(strings.TrimPrefix(
		strings.TrimPrefix(verdict, "FAIL:"), "FAIL"))
	if assessment == "" {
		assessment = verdict
	}

	return Fail(req, map[string]interface{}{
		"assessment": assessment,
		"model":      modelRef,
	}), nil
}

func (v *llmReview) buildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are reviewing project content against a quality rule.\n\n")
	if req.Rule.Context != "" {
		fmt.Fprintf(&b, "Rule context:\n%s\n\n", req.Rule.Context)
	}
	expected := req.Phase.ExpectedBehavior
	if expected == "" {
		expected = v.DefaultExpectedBehavior()
	}
	fmt.Fprintf(&b, "Expected behavior:\n%s\n\n", expected)

	if criteria := stringParam(req.Params, "criteria", ""); criteria != "" {
		fmt.Fprintf(&b, "Additional criteria:\n%s\n\n", criteria)
	}

	b.WriteString("Content under review:\n")
	for _, f := range req.Bundle.Files {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", f.RelPath, f.Content)
	}

	b.WriteString("\nAnswer with a single line starting with PASS, or FAIL: followed by the observed problem.\n")
	return b.String()
}

// cacheKey covers the bundle content, the rule identity, and the exact
// prompt parameters, so a prompt-text or parameter edit invalidates the
// cache even when no file changed.
func cacheKey(req Request, modelRef, promptText string) string {
	encodedParams, err := json.Marshal(req.Params)
	if err != nil {
		encodedParams = []byte(fmt.Sprintf("%v", req.Params))
	}
	return cache.ComputeKey(
		req.Bundle.ContentHash(),
		req.Rule.ID(),
		req.Phase.Name,
		modelRef,
		string(encodedParams),
		promptText,
	)
}
