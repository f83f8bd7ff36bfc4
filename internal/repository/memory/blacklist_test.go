package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clusterboard/dashboard-api/internal/repository/memory"
)

func TestBlacklist_AddAndContains(t *testing.T) {
	bl := memory.NewBlacklist(time.Hour)

	require.NoError(t, bl.Add(context.Background(), "jti-1", time.Hour))

	found, err := bl.Contains(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = bl.Contains(context.Background(), "jti-2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBlacklist_ExpiredEntriesDisappear(t *testing.T) {
	bl := memory.NewBlacklist(time.Hour)

	require.NoError(t, bl.Add(context.Background(), "jti-1", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	found, err := bl.Contains(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBlacklist_NoopOnEmptyOrExpired(t *testing.T) {
	bl := memory.NewBlacklist(time.Hour)

	assert.NoError(t, bl.Add(context.Background(), "", time.Hour))
	assert.NoError(t, bl.Add(context.Background(), "jti-1", -time.Minute))

	found, err := bl.Contains(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.False(t, found)
}
