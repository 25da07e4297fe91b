package llm

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"
)

// Middleware decorates a Provider, and through it every session it opens,
// with a cross-cutting concern (rate limiting, retries, logging).
type Middleware func(Provider) Provider

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Provider, mws ...Middleware) Provider {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit throttles Send calls across all sessions of the provider.
// If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Provider) Provider {
		return &rateLimited{next: next, rl: newRPSLimiter(rps, burst)}
	}
}

// RateLimitFromEnv reads RPS/BURST from environment variables with the
// given prefixes in priority order. For example, ("LLM","GEMINI")
// checks LLM_RPS/LLM_BURST first, then GEMINI_RPS/GEMINI_BURST.
func RateLimitFromEnv(prefixes ...string) Middleware {
	find := func(suffix string) string {
		for _, p := range prefixes {
			if p == "" {
				continue
			}
			if v := os.Getenv(p + suffix); v != "" {
				return v
			}
		}
		return ""
	}
	rps, _ := strconv.ParseFloat(find("_RPS"), 64)
	burst, _ := strconv.Atoi(find("_BURST"))
	return RateLimit(rps, burst)
}

type rateLimited struct {
	next Provider
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}
func (c *rateLimited) StartChat(ctx context.Context, cfg ChatConfig) (ChatSession, error) {
	sess, err := c.next.StartChat(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &rateLimitedSession{next: sess, rl: c.rl}, nil
}

type rateLimitedSession struct {
	next ChatSession
	rl   *rpsLimiter
}

func (s *rateLimitedSession) Send(ctx context.Context, message string) (string, error) {
	if err := s.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return s.next.Send(ctx, message)
}

// -------- Retry with exponential backoff --------

// Retry retries Send up to maxAttempts with exponential backoff starting at
// baseDelay. A PermanentError or a done context stops it immediately.
// Providers only record a turn once it succeeds, so a retried Send does not
// duplicate the message in the chat history.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Provider) Provider {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Provider
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }
func (r *retrying) StartChat(ctx context.Context, cfg ChatConfig) (ChatSession, error) {
	sess, err := r.next.StartChat(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &retryingSession{next: sess, max: r.max, base: r.base}, nil
}

type retryingSession struct {
	next ChatSession
	max  int
	base time.Duration
}

func (r *retryingSession) Send(ctx context.Context, message string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		reply, err := r.next.Send(ctx, message)
		if err == nil {
			return reply, nil
		}
		if IsPermanent(err) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return "", last
}

// -------- Logging --------

// WithLogging logs chat opens, request sizes, latencies and errors.
// Provide a custom logger or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Provider) Provider {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Provider
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) StartChat(ctx context.Context, cfg ChatConfig) (ChatSession, error) {
	sess, err := l.next.StartChat(ctx, cfg)
	if err != nil {
		l.log.Printf("LLM chat open failed (%s, %s): %v", OperationFrom(ctx), l.next.Name(), err)
		return nil, err
	}
	l.log.Printf("LLM chat opened (%s, %s): model=%s", OperationFrom(ctx), l.next.Name(), cfg.Model)
	return &loggingSession{next: sess, log: l.log}, nil
}

type loggingSession struct {
	next ChatSession
	log  *log.Logger
}

func (l *loggingSession) Send(ctx context.Context, message string) (string, error) {
	op := OperationFrom(ctx)
	l.log.Printf("LLM request (%s): %d bytes", op, len(message))
	start := time.Now()
	reply, err := l.next.Send(ctx, message)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", op, err)
		return "", err
	}
	l.log.Printf("LLM reply (%s): %d bytes in %s", op, len(reply), time.Since(start).Round(time.Millisecond))
	return reply, nil
}
