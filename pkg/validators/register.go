package validators

import (
	"fmt"
)

// RegisterCore registers every built-in validator on the registry.
// Registration failures are programming errors (duplicate names), so
// they panic rather than return.
func RegisterCore(r *Registry) {
	core := map[string]Factory{
		FileExistsName:           newFileExists,
		ContentMatchesName:       newContentMatches,
		FileSizeName:             newFileSize,
		DependencyCyclesName:     newDependencyCycles,
		DependencyDuplicatesName: newDependencyDuplicates,
		DependencyDepthName:      newDependencyDepth,
		ConversationPatternName:  newConversationPattern,
		LLMReviewName:            newLLMReview,
		UniqueContentName:        newUniqueContent,
	}

	for name, factory := range core {
		if err := r.RegisterFactory(name, factory); err != nil {
			panic(fmt.Sprintf("registering core validator %s: %v", name, err))
		}
	}
}
