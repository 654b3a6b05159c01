// Package conversation supplies parsed agent conversation logs to
// conversation_level rules. Tool-specific ingestion lives outside the
// engine; this package defines the Source interface, a directory-backed
// source for vigil's own session format, and the adapter that turns a
// session into an opaque bundle.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/types"
)

// DefaultBundleType labels conversation bundles when a rule declares no
// bundle spec of its own
const DefaultBundleType = "conversation"

// Source supplies parsed conversation sessions
type Source interface {
	Sessions(ctx context.Context) ([]types.Session, error)
}

// MemorySource is an in-memory Source for tests and embedding
type MemorySource struct {
	Items []types.Session
}

// Sessions implements Source
func (s *MemorySource) Sessions(ctx context.Context) ([]types.Session, error) {
	return s.Items, nil
}

// DirSource reads one JSON file per session from a directory
type DirSource struct {
	Dir string
}

// Sessions implements Source. Files are read in sorted order so the
// session list is deterministic.
func (s *DirSource) Sessions(ctx context.Context) ([]types.Session, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"reading conversation directory %s", s.Dir)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	sessions := make([]types.Session, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(s.Dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput,
				"reading conversation file %s", name)
		}
		var session types.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput,
				"parsing conversation file %s", name)
		}
		if session.ID == "" {
			session.ID = strings.TrimSuffix(name, ".json")
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// SessionBundle renders a session into an opaque bundle for validation.
// The bundle content is the turn transcript; validators treat it like
// any other document.
func SessionBundle(session types.Session, bundleType string) types.Bundle {
	if bundleType == "" {
		bundleType = DefaultBundleType
	}

	var b strings.Builder
	for _, turn := range session.Turns {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}

	rel := "conversations/" + session.ID
	return types.Bundle{
		ID:       types.BundleID(bundleType, []string{rel}),
		Type:     bundleType,
		Strategy: types.StrategyIndividual,
		Files: []types.DocumentFile{{
			RelPath: rel,
			Content: b.String(),
		}},
	}
}
