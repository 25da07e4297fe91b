package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitSpacing(t *testing.T) {
	// rps=2, burst=1: the second send waits roughly 500ms.
	inner := &scriptedProvider{}
	p := Wrap(inner, RateLimit(2, 1))
	t.Cleanup(func() { _ = p.Close() })
	s := openChat(t, p)

	ctx := context.Background()
	start := time.Now()
	_, err := s.Send(ctx, "a")
	require.NoError(t, err)
	_, err = s.Send(ctx, "b")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 450*time.Millisecond)
	assert.Equal(t, 2, inner.calls)
}

func TestRateLimitBurst(t *testing.T) {
	p := Wrap(&scriptedProvider{}, RateLimit(2, 2))
	t.Cleanup(func() { _ = p.Close() })
	s := openChat(t, p)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 2; i++ {
		_, err := s.Send(ctx, "x")
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimitDisabled(t *testing.T) {
	assert.Nil(t, newRPSLimiter(0, 5))
	var l *rpsLimiter
	assert.NoError(t, l.Acquire(context.Background()))
	l.Stop()
}

func TestRateLimitHonorsContext(t *testing.T) {
	l := newRPSLimiter(0.001, 1)
	t.Cleanup(l.Stop)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.DeadlineExceeded)
}

func TestRateLimitFromEnv(t *testing.T) {
	t.Setenv("TESTRL_RPS", "2")
	t.Setenv("TESTRL_BURST", "1")
	p := Wrap(&scriptedProvider{}, RateLimitFromEnv("", "TESTRL"))
	t.Cleanup(func() { _ = p.Close() })

	rl, ok := p.(*rateLimited)
	require.True(t, ok)
	assert.NotNil(t, rl.rl)
}
