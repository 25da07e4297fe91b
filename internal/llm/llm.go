package llm

import (
	"context"

	genai "google.golang.org/genai"
)

// ChatConfig fixes everything about a chat that stays constant across its
// turns: the model, the system instruction and the required reply shape.
type ChatConfig struct {
	Model             string
	SystemInstruction string
	ResponseMIMEType  string
	ResponseSchema    *genai.Schema
}

// ChatSession is one provider-side conversation. Every Send sees the turns
// that came before it.
type ChatSession interface {
	Send(ctx context.Context, message string) (string, error)
}

// Provider opens chat sessions against one generative-AI backend.
type Provider interface {
	Name() string
	StartChat(ctx context.Context, cfg ChatConfig) (ChatSession, error)
	Close() error
}

type ctxKeyOperation struct{}

// WithOperation tags ctx with the action a provider call belongs to, for logs.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, ctxKeyOperation{}, op)
}

// OperationFrom returns the tag set by WithOperation, or "unknown".
func OperationFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyOperation{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
