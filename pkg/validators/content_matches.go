package validators

import (
	"context"
	"regexp"

	"github.com/vigil-dev/vigil/pkg/types"
)

// ContentMatchesName is the namespaced type of the content validator
const ContentMatchesName = "core:content_matches"

// contentMatches checks bundle content against regular expressions:
// every "required_patterns" entry must match somewhere in the bundle,
// and no "forbidden_patterns" entry may match anywhere.
type contentMatches struct{}

func newContentMatches() (Validator, error) {
	return &contentMatches{}, nil
}

func (v *contentMatches) Type() string                 { return ContentMatchesName }
func (v *contentMatches) Computation() ComputationType { return ComputationProgrammatic }

func (v *contentMatches) DefaultFailureMessage() string {
	return "content check failed for pattern {pattern} in {path}"
}

func (v *contentMatches) DefaultExpectedBehavior() string {
	return "content contains every required pattern and no forbidden pattern"
}

func (v *contentMatches) ValidateParams(params map[string]interface{}) error {
	for _, key := range []string{"required_patterns", "forbidden_patterns"} {
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

func (v *contentMatches) Validate(ctx context.Context, req Request) (*types.Finding, error) {
	required, err := stringSliceParam(req.Params, "required_patterns")
	if err != nil {
		return nil, err
	}
	forbidden, err := stringSliceParam(req.Params, "forbidden_patterns")
	if err != nil {
		return nil, err
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
				"kind":    "required",
			}), nil
		}
	}

	for _, p := range forbidden {
		re, compErr := regexp.Compile(p)
		if compErr != nil {
			return nil, compErr
		}
		for _, f := range req.Bundle.Files {
			if loc := re.FindString(f.Content); loc != "" {
				return Fail(req, map[string]interface{}{
					"pattern": p,
					"path":    f.RelPath,
					"match":   loc,
					"kind":    "forbidden",
				}), nil
			}
		}
	}

	return nil, nil
}

func firstPath(b types.Bundle) string {
	if len(b.Files) > 0 {
		return b.Files[0].RelPath
	}
	return ""
}
