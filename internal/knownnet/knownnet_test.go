package knownnet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "known.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRememberAndHiddenSSIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Remember(ctx, "Visible", false, "WPA2"))
	require.NoError(t, s.Remember(ctx, "Hidden1", true, "WPA3"))
	require.NoError(t, s.Remember(ctx, "Hidden2", true, "OPEN"))

	hidden, err := s.HiddenSSIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, hidden, 2)

	has, err := s.HasHiddenSSID(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestEmptySSIDIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Remember(ctx, "", true, ""))

	has, err := s.HasHiddenSSID(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}
