package validators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-dev/vigil/pkg/conversation"
	"github.com/vigil-dev/vigil/pkg/types"
)

func transcriptRequest(t *testing.T, turns []types.Turn, params map[string]interface{}) Request {
	t.Helper()
	bundle := conversation.SessionBundle(types.Session{
		ID:    "session-1",
		Turns: turns,
	}, "")
	return Request{
		Rule:   types.Rule{Name: "transcript-check", Scope: types.ScopeConversationLevel},
		Phase:  types.ValidationPhase{Name: "check", ValidatorType: ConversationPatternName},
		Bundle: bundle,
		Params: params,
	}
}

func TestConversationPattern(t *testing.T) {
	v, err := newConversationPattern()
	require.NoError(t, err)

	turns := []types.Turn{
		{Role: "user", Content: "please update the docs"},
		{Role: "assistant", Content: "done, I also ran rm -rf on the temp dir"},
	}

	t.Run("forbidden pattern in transcript fails", func(t *testing.T) {
		req := transcriptRequest(t, turns, map[string]interface{}{
			"forbidden_patterns": []string{`rm -rf`},
		})

		finding, err := v.Validate(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, finding)
		assert.Equal(t, "conversations/session-1", finding.FailureDetails["path"])
		assert.Equal(t, "rm -rf", finding.FailureDetails["match"])
	})

	t.Run("required pattern present passes", func(t *testing.T) {
		req := transcriptRequest(t, turns, map[string]interface{}{
			"required_patterns": []string{`(?i)update the docs`},
		})

		finding, err := v.Validate(context.Background(), req)
		require.NoError(t, err)
		assert.Nil(t, finding)
	})

	t.Run("required pattern absent fails", func(t *testing.T) {
		req := transcriptRequest(t, turns, map[string]interface{}{
			"required_patterns": []string{`ran the tests`},
		})

		finding, err := v.Validate(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, finding)
		assert.Equal(t, `ran the tests`, finding.FailureDetails["pattern"])
	})
}
