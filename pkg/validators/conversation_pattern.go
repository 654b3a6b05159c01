package validators

import (
	"context"
	"regexp"

	"github.com/vigil-dev/vigil/pkg/types"
)

// ConversationPatternName is the namespaced type of the conversation
// transcript validator
const ConversationPatternName = "core:conversation_pattern"

// conversationPattern scans conversation transcripts (rendered as
// opaque bundles) for forbidden and required regular expressions.
type conversationPattern struct{}

func newConversationPattern() (Validator, error) {
	return &conversationPattern{}, nil
}

func (v *conversationPattern) Type() string                 { return ConversationPatternName }
func (v *conversationPattern) Computation() ComputationType { return ComputationProgrammatic }

func (v *conversationPattern) DefaultFailureMessage() string {
	return "conversation {path} matched forbidden pattern {pattern}"
}

func (v *conversationPattern) DefaultExpectedBehavior() string {
	return "the conversation contains no forbidden content"
}

func (v *conversationPattern) ValidateParams(params map[string]interface{}) error {
	for _, key := range []string{"forbidden_patterns", "required_patterns"} {
		list, err := stringSliceParam(params, key)
		if err != nil {
			return err
		}
		for _, p := range list {
			if _, err := regexp.Compile(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *conversationPattern) Validate(ctx context.Context, req Request) (*types.Finding, error) {
	forbidden, err := stringSliceParam(req.Params, "forbidden_patterns")
	if err != nil {
		return nil, err
	}
	required, err := stringSliceParam(req.Params, "required_patterns")
	if err != nil {
		return nil, err
	}

	for _, p := range forbidden {
		re, compErr := regexp.Compile(p)
		if compErr != nil {
			return nil, compErr
		}
		for _, f := range req.Bundle.Files {
			if match := re.FindString(f.Content); match != "" {
				return Fail(req, map[string]interface{}{
					"pattern": p,
					"path":    f.RelPath,
					"match":   match,
				}), nil
			}
		}
	}

	for _, p := range required {
		re, compErr := regexp.Compile(p)
		if compErr != nil {
			return nil, compErr
		}
		found := false
		for _, f := range req.Bundle.Files {
			if re.MatchString(f.Content) {
				found = true
				break
			}
		}
		if !found {
			return Fail(req, map[string]interface{}{
				"pattern": p,
				"path":    firstPath(req.Bundle),
			}), nil
		}
	}

	return nil, nil
}
