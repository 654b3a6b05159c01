package validators

import (
	"context"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vigil-dev/vigil/pkg/patterns"
	"github.com/vigil-dev/vigil/pkg/types"
)

// FileExistsName is the namespaced type of the file existence validator
const FileExistsName = "core:file_exists"

// fileExists checks that required files are present. With a "patterns"
// parameter each pattern must match at least one file under the project
// root; without it, every bundle member must still exist on disk.
type fileExists struct {
	matcher *patterns.Matcher
}

func newFileExists() (Validator, error) {
	return &fileExists{matcher: patterns.NewMatcher()}, nil
}

func (v *fileExists) Type() string                 { return FileExistsName }
func (v *fileExists) Computation() ComputationType { return ComputationProgrammatic }

func (v *fileExists) DefaultFailureMessage() string {
	return "required file not found: {missing}"
}

func (v *fileExists) DefaultExpectedBehavior() string {
	return "all required files exist and remain readable"
}

func (v *fileExists) ValidateParams(params map[string]interface{}) error {
	if _, err := stringSliceParam(params, "patterns"); err != nil {
		return err
	}
	_, err := stringSliceParam(params, "ignore_patterns")
	return err
}

func (v *fileExists) Validate(ctx context.Context, req Request) (*types.Finding, error) {
	required, err := stringSliceParam(req.Params, "patterns")
	if err != nil {
		return nil, err
	}
	ignore, err := stringSliceParam(req.Params, "ignore_patterns")
	if err != nil {
		return nil, err
	}

	if len(required) == 0 {
		// Bundle members were globbed moments ago but may have vanished
		for _, f := range req.Bundle.Files {
			ignored, err := v.matcher.MatchesAny(ignore, f.RelPath)
			if err != nil {
				return nil, err
			}
			if ignored {
				continue
			}
			if _, statErr := os.Stat(f.AbsPath); statErr != nil {
				return Fail(req, map[string]interface{}{
					"missing": f.RelPath,
				}), nil
			}
		}
		return nil, nil
	}

	fsys := os.DirFS(req.Bundle.Root)
	for _, pattern := range required {
		matches, globErr := doublestar.Glob(fsys, pattern)
		if globErr != nil {
			return nil, globErr
		}

		found := false
		for _, m := range matches {
			ignored, err := v.matcher.MatchesAny(ignore, m)
			if err != nil {
				return nil, err
			}
			if !ignored {
				found = true
				break
			}
		}
		if !found {
			return Fail(req, map[string]interface{}{
				"missing": pattern,
			}), nil
		}
	}

	return nil, nil
}
