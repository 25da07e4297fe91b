package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiConfig configures the Gemini provider. BaseURL is only set to point
// the client at a test server.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiProvider is a thin wrapper around the official genai client.
// Cross-cutting concerns (rate limiting, retries, logging) are applied via
// Middleware.
type GeminiProvider struct {
	cli   *genai.Client
	model string
}

// NewGeminiProvider builds the genai client. Without an API key no client
// is created and StartChat fails with ErrNoCredential.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return &GeminiProvider{model: model}, nil
	}
	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	return &GeminiProvider{cli: cli, model: model}, nil
}

func (g *GeminiProvider) Name() string { return "Gemini:" + g.model }
func (g *GeminiProvider) Close() error { return nil }

// StartChat creates a genai chat. No request is sent until the first Send.
func (g *GeminiProvider) StartChat(ctx context.Context, cfg ChatConfig) (ChatSession, error) {
	if g.cli == nil {
		return nil, NewPermanentError(ErrNoCredential)
	}
	model := cfg.Model
	if model == "" {
		model = g.model
	}
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: cfg.ResponseMIMEType,
		ResponseSchema:   cfg.ResponseSchema,
	}
	if cfg.SystemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	chat, err := g.cli.Chats.Create(ctx, model, gc, nil)
	if err != nil {
		return nil, fmt.Errorf("create gemini chat: %w", err)
	}
	return &geminiSession{chat: chat}, nil
}

type geminiSession struct {
	chat *genai.Chat
}

// Send posts one user turn. genai records the turn in the chat history
// only when the call succeeds.
func (s *geminiSession) Send(ctx context.Context, message string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", classifyGeminiError(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code, err)
	}
	return err
}
