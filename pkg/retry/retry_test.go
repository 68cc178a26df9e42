package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoAcceptFirstAttempt(t *testing.T) {
	policy := Policy{MaxAttempts: 3}

	calls := 0
	res, err := policy.Do(context.Background(),
		func(ctx context.Context) error { calls++; return nil },
		func() bool { return true },
	)

	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := Policy{MaxAttempts: 3}

	calls := 0
	res, err := policy.Do(context.Background(),
		func(ctx context.Context) error { calls++; return nil },
		func() bool { return false },
	)

	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, calls)
}

func TestDoAcceptsMidway(t *testing.T) {
	policy := Policy{MaxAttempts: 5}

	calls := 0
	res, err := policy.Do(context.Background(),
		func(ctx context.Context) error { calls++; return nil },
		func() bool { return calls >= 2 },
	)

	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, 2, res.Attempts)
}

func TestDoAttemptErrorStopsLoop(t *testing.T) {
	policy := Policy{MaxAttempts: 3}
	boom := errors.New("boom")

	calls := 0
	res, err := policy.Do(context.Background(),
		func(ctx context.Context) error { calls++; return boom },
		func() bool { return true },
	)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Accepted)
}

func TestDoRespectsCancellation(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Delay: 1e9} // 1s delay between attempts

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := policy.Do(ctx,
		func(ctx context.Context) error { return nil },
		func() bool { return false },
	)

	require.ErrorIs(t, err, context.Canceled)
}
