package validators

import (
	"context"

	"github.com/vigil-dev/vigil/pkg/types"
)

// FileSizeName is the namespaced type of the size validator
const FileSizeName = "core:file_size"

// fileSize bounds the byte length of each bundle member. Parameters:
// max_bytes (0 = unbounded) and min_bytes.
type fileSize struct{}

func newFileSize() (Validator, error) {
	return &fileSize{}, nil
}

func (v *fileSize) Type() string                 { return FileSizeName }
func (v *fileSize) Computation() ComputationType { return ComputationProgrammatic }

func (v *fileSize) DefaultFailureMessage() string {
	return "{path} is {size} bytes, outside the allowed range"
}

func (v *fileSize) DefaultExpectedBehavior() string {
	return "every file stays within the configured size bounds"
}

func (v *fileSize) Validate(ctx context.Context, req Request) (*types.Finding, error) {
	maxBytes := intParam(req.Params, "max_bytes", 0)
	minBytes := intParam(req.Params, "min_bytes", 0)

	for _, f := range req.Bundle.Files {
		size := len(f.Content)
		if maxBytes > 0 && size > maxBytes {
			return Fail(req, map[string]interface{}{
				"path":      f.RelPath,
				"size":      size,
				"max_bytes": maxBytes,
			}), nil
		}
		if size < minBytes {
			return Fail(req, map[string]interface{}{
				"path":      f.RelPath,
				"size":      size,
				"min_bytes": minBytes,
			}), nil
		}
	}

	return nil, nil
}
