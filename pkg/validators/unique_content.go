package validators

import (
	"context"

	"github.com/vigil-dev/vigil/pkg/types"
)

// UniqueContentName is the namespaced type of the cross-bundle
// duplicate-content validator
const UniqueContentName = "core:unique_content"

// uniqueContent fails when another bundle of the same type carries
// byte-identical content. It is the reference cross-bundle validator:
// it receives every bundle of the rule's bundle type.
type uniqueContent struct{}

func newUniqueContent() (Validator, error) {
	return &uniqueContent{}, nil
}

func (v *uniqueContent) Type() string                 { return UniqueContentName }
func (v *uniqueContent) Computation() ComputationType { return ComputationProgrammatic }

func (v *uniqueContent) NeedsAllBundles() bool { return true }

func (v *uniqueContent) DefaultFailureMessage() string {
	return "{path} duplicates the content of {duplicate_of}"
}

func (v *uniqueContent) DefaultExpectedBehavior() string {
	return "every bundle of this type has distinct content"
}

func (v *uniqueContent) Validate(ctx context.Context, req Request) (*types.Finding, error) {
	// Path-insensitive hash: a renamed copy is still a duplicate
	own := req.Bundle.ContentOnlyHash()

	for _, other := range req.AllBundles {
		if other.ID == req.Bundle.ID {
			continue
		}
		if other.ContentOnlyHash() == own {
			return Fail(req, map[string]interface{}{
				"path":         firstPath(req.Bundle),
				"duplicate_of": firstPath(other),
			}), nil
		}
	}

	return nil, nil
}
