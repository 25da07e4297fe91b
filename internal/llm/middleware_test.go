package llm

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider fails the first `fail` sends with err.
type scriptedProvider struct {
	fail  int
	err   error
	calls int
}

func (p *scriptedProvider) Name() string { return "scripted" }
func (p *scriptedProvider) Close() error { return nil }
func (p *scriptedProvider) StartChat(context.Context, ChatConfig) (ChatSession, error) {
	return p, nil
}
func (p *scriptedProvider) Send(_ context.Context, message string) (string, error) {
	p.calls++
	if p.calls <= p.fail {
		return "", p.err
	}
	return "echo:" + message, nil
}

func openChat(t *testing.T, p Provider) ChatSession {
	t.Helper()
	s, err := p.StartChat(context.Background(), ChatConfig{Model: "m"})
	require.NoError(t, err)
	return s
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	inner := &scriptedProvider{fail: 2, err: errors.New("unavailable")}
	s := openChat(t, Wrap(inner, Retry(3, time.Millisecond)))

	reply, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", reply)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	inner := &scriptedProvider{fail: 10, err: errors.New("unavailable")}
	s := openChat(t, Wrap(inner, Retry(2, time.Millisecond)))

	_, err := s.Send(context.Background(), "hi")
	assert.EqualError(t, err, "unavailable")
	assert.Equal(t, 2, inner.calls)
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	inner := &scriptedProvider{fail: 10, err: NewPermanentError(errors.New("bad key"))}
	s := openChat(t, Wrap(inner, Retry(5, time.Millisecond)))

	_, err := s.Send(context.Background(), "hi")
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, inner.calls)
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	inner := &scriptedProvider{fail: 10, err: errors.New("unavailable")}
	s := openChat(t, Wrap(inner, Retry(5, time.Hour)))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := s.Send(ctx, "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestDefaultRetryIsSingleAttempt(t *testing.T) {
	inner := &scriptedProvider{fail: 1, err: errors.New("unavailable")}
	s := openChat(t, Wrap(inner, Retry(0, 0)))

	_, err := s.Send(context.Background(), "hi")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	inner := &scriptedProvider{fail: 1, err: errors.New("quota")}
	s := openChat(t, Wrap(inner, WithLogging(log.New(&buf, "", 0))))

	ctx := WithOperation(context.Background(), "refine")
	_, err := s.Send(ctx, "hello")
	require.Error(t, err)
	_, err = s.Send(ctx, "hello")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "LLM chat opened (unknown, scripted): model=m")
	assert.Contains(t, out, "LLM request (refine): 5 bytes")
	assert.Contains(t, out, "LLM error (refine): quota")
	assert.Contains(t, out, "LLM reply (refine): 10 bytes")
}

func TestWrapOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Provider) Provider {
			order = append(order, name)
			return next
		}
	}
	Wrap(&scriptedProvider{}, mark("A"), mark("B"))
	// B wraps the inner provider first, A wraps the result.
	assert.Equal(t, []string{"B", "A"}, order)
}

func TestOperationFromDefault(t *testing.T) {
	assert.Equal(t, "unknown", OperationFrom(context.Background()))
	assert.Equal(t, "begin", OperationFrom(WithOperation(context.Background(), "begin")))
}
