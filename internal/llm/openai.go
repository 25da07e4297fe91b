package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	genai "google.golang.org/genai"
)

// OpenAIConfig configures the OpenAI-compatible provider. Set BaseURL to use
// any compatible endpoint (Groq, a local gateway, a test server).
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIProvider speaks the chat completions API. The API is stateless, so
// each session keeps its own transcript and replays it on every Send.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	oc := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(oc), model: model}
}

func (p *OpenAIProvider) Name() string { return "OpenAI:" + p.model }
func (p *OpenAIProvider) Close() error { return nil }

func (p *OpenAIProvider) StartChat(_ context.Context, cfg ChatConfig) (ChatSession, error) {
	model := cfg.Model
	if model == "" {
		model = p.model
	}
	s := &openAISession{client: p.client, model: model}
	if cfg.SystemInstruction != "" {
		s.history = append(s.history, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: cfg.SystemInstruction,
		})
	}
	switch {
	case cfg.ResponseSchema != nil:
		raw, err := json.Marshal(JSONSchema(cfg.ResponseSchema))
		if err != nil {
			return nil, fmt.Errorf("encode response schema: %w", err)
		}
		s.format = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "setup",
				Schema: json.RawMessage(raw),
				Strict: true,
			},
		}
	case cfg.ResponseMIMEType == "application/json":
		s.format = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return s, nil
}

type openAISession struct {
	client *openai.Client
	model  string
	format *openai.ChatCompletionResponseFormat

	mu      sync.Mutex
	history []openai.ChatCompletionMessage
}

func (s *openAISession) Send(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message}
	msgs := make([]openai.ChatCompletionMessage, 0, len(s.history)+1)
	msgs = append(msgs, s.history...)
	msgs = append(msgs, user)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          s.model,
		Messages:       msgs,
		ResponseFormat: s.format,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", classifyStatus(reqErr.HTTPStatusCode, err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	reply := resp.Choices[0].Message.Content
	s.history = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})
	return reply, nil
}

// JSONSchema renders a genai schema in standard JSON Schema: lowercase
// types, every object closed. The chat completions API needs this dialect
// for strict structured output.
func JSONSchema(s *genai.Schema) map[string]any {
	out := map[string]any{"type": strings.ToLower(string(s.Type))}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Type == genai.TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, child := range s.Properties {
			props[name] = JSONSchema(child)
		}
		out["properties"] = props
		out["required"] = append([]string(nil), s.Required...)
		out["additionalProperties"] = false
	}
	return out
}
