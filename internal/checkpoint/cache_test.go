package checkpoint_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teratoma-labs/polyglotscan/internal/checkpoint"
	"github.com/teratoma-labs/polyglotscan/pkg/gitlog"
	"github.com/teratoma-labs/polyglotscan/pkg/identity"
)

func TestCacheMissBeforeSave(t *testing.T) {
	t.Parallel()

	cache := checkpoint.NewCache(t.TempDir())

	_, err := cache.Load("/repo", "deadbeef", nil)
	require.ErrorIs(t, err, checkpoint.ErrMiss)
}

func TestCacheSaveThenLoadRoundTrips(t *testing.T) {
	t.Parallel()

	cache := checkpoint.NewCache(t.TempDir())

	commits := []gitlog.Commit{
		{
			ID:         "abc123",
			Summary:    "first commit",
			CommitTime: 1000,
			Author:     identity.User{Name: "A", Email: "a@example.com"},
		},
	}

	require.NoError(t, cache.Save("/repo", "deadbeef", nil, commits))

	loaded, err := cache.Load("/repo", "deadbeef", nil)
	require.NoError(t, err)
	assert.Equal(t, commits, loaded)
}

func TestCacheMissesOnDifferentHeadOID(t *testing.T) {
	t.Parallel()

	cache := checkpoint.NewCache(t.TempDir())

	commits := []gitlog.Commit{{ID: "abc123"}}

	require.NoError(t, cache.Save("/repo", "deadbeef", nil, commits))

	_, err := cache.Load("/repo", "otheroid", nil)
	require.ErrorIs(t, err, checkpoint.ErrMiss)
}

func TestCacheMissesOnDifferentSince(t *testing.T) {
	t.Parallel()

	cache := checkpoint.NewCache(t.TempDir())

	commits := []gitlog.Commit{{ID: "abc123"}}

	require.NoError(t, cache.Save("/repo", "deadbeef", nil, commits))

	since := time.Unix(500, 0)

	_, err := cache.Load("/repo", "deadbeef", &since)
	require.ErrorIs(t, err, checkpoint.ErrMiss)
}
