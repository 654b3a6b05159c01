package conversation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-dev/vigil/pkg/types"
)

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-session.json"),
		[]byte(`{"id":"b-session","agent_tool":"claude","turns":[{"role":"user","content":"hi"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-session.json"),
		[]byte(`{"agent_tool":"cursor","turns":[]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	sessions, err := (&DirSource{Dir: dir}).Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "a-session", sessions[0].ID, "missing id falls back to the file name")
	assert.Equal(t, "cursor", sessions[0].AgentTool)
	assert.Equal(t, "b-session", sessions[1].ID)
	assert.Equal(t, "hi", sessions[1].Turns[0].Content)
}

func TestDirSourceMissingDir(t *testing.T) {
	sessions, err := (&DirSource{Dir: filepath.Join(t.TempDir(), "absent")}).Sessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDirSourceMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))

	_, err := (&DirSource{Dir: dir}).Sessions(context.Background())
	assert.Error(t, err)
}

func TestSessionBundle(t *testing.T) {
	session := types.Session{
		ID:        "s1",
		AgentTool: "claude",
		Turns: []types.Turn{
			{Role: "user", Content: "do the thing"},
			{Role: "assistant", Content: "done"},
		},
	}

	b := SessionBundle(session, "")
	assert.Equal(t, DefaultBundleType, b.Type)
	require.Len(t, b.Files, 1)
	assert.Equal(t, "conversations/s1", b.Files[0].RelPath)
	assert.Equal(t, "user: do the thing\nassistant: done\n", b.Files[0].Content)
	assert.NotEmpty(t, b.ID)

	custom := SessionBundle(session, "chat-log")
	assert.Equal(t, "chat-log", custom.Type)
	assert.NotEqual(t, b.ID, custom.ID)
}
