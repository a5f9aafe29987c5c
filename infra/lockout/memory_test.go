package lockout_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obiora/bankcore/infra/lockout"
)

func TestMemoryStore_CountsAndResets(t *testing.T) {
	store := lockout.NewMemoryStore()
	ctx := context.Background()

	count, err := store.Failures(ctx, "acct-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	for want := 1; want <= 3; want++ {
		count, err = store.RecordFailure(ctx, "acct-1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	// Accounts are tracked independently.
	count, err = store.Failures(ctx, "acct-2")
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.Reset(ctx, "acct-1"))
	count, err = store.Failures(ctx, "acct-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryStore_WindowExpiry(t *testing.T) {
	store := lockout.NewMemoryStore()
	ctx := context.Background()

	_, err := store.RecordFailure(ctx, "acct-1", 10*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		count, err := store.Failures(ctx, "acct-1")
		return err == nil && count == 0
	}, time.Second, 5*time.Millisecond)
}
