// Package advisor owns the two-call conversation with the model: open a
// chat and generate a setup, then refine it with user feedback on the same
// chat.
package advisor

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"accsetup/internal/llm"
	"accsetup/internal/setup"
)

const (
	DefaultLanguage    = "Hungarian"
	DefaultRaceMinutes = 20
)

// Config is injected by the caller; nothing here is read from the
// environment.
type Config struct {
	// APIKey is the credential the provider was built with. An empty key
	// fails every action with ConfigurationError before any provider call.
	APIKey      string
	Model       string
	Language    string
	RaceMinutes int
	Logger      *log.Logger
}

// Selection is the car, track and driving style a setup is generated for.
type Selection struct {
	Car   string `json:"car"`
	Track string `json:"track"`
	Style string `json:"style"`
}

// Client runs sessions against one provider.
type Client struct {
	cfg Config
	p   llm.Provider
	log *log.Logger
}

func New(cfg Config, p llm.Provider) *Client {
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.RaceMinutes <= 0 {
		cfg.RaceMinutes = DefaultRaceMinutes
	}
	lg := cfg.Logger
	if lg == nil {
		lg = log.Default()
	}
	return &Client{cfg: cfg, p: p, log: lg}
}

// Session is an open chat. Sends on one session never overlap.
type Session struct {
	ID        string
	Selection Selection

	mu       sync.Mutex
	chat     llm.ChatSession
	revision int
	closed   atomic.Bool
}

// Revision counts the setups produced on this session; 1 after BeginSession.
func (s *Session) Revision() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Close makes the session unusable. Further Refine calls fail with
// PreconditionError; a Refine already in flight completes.
func (s *Session) Close() {
	s.closed.Store(true)
}

// BeginSession opens a chat, sends the initial prompt and parses the reply.
// On failure no session is returned.
func (c *Client) BeginSession(ctx context.Context, sel Selection) (*Session, setup.Setup, error) {
	if err := c.credential(OpGenerate); err != nil {
		return nil, setup.Setup{}, err
	}
	sel = Selection{
		Car:   strings.TrimSpace(sel.Car),
		Track: strings.TrimSpace(sel.Track),
		Style: strings.TrimSpace(sel.Style),
	}
	switch {
	case sel.Car == "":
		return nil, setup.Setup{}, &ValidationError{Op: OpGenerate, Field: "car"}
	case sel.Track == "":
		return nil, setup.Setup{}, &ValidationError{Op: OpGenerate, Field: "track"}
	case sel.Style == "":
		return nil, setup.Setup{}, &ValidationError{Op: OpGenerate, Field: "style"}
	}

	ctx = llm.WithOperation(ctx, OpGenerate)
	chat, err := c.p.StartChat(ctx, llm.ChatConfig{
		Model:             c.cfg.Model,
		SystemInstruction: systemInstruction(c.cfg),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    setup.Schema(),
	})
	if err != nil {
		return nil, setup.Setup{}, c.providerError(OpGenerate, err)
	}
	raw, err := chat.Send(ctx, initialPrompt(sel))
	if err != nil {
		return nil, setup.Setup{}, c.providerError(OpGenerate, err)
	}
	st, err := c.parse(OpGenerate, raw)
	if err != nil {
		return nil, setup.Setup{}, err
	}
	return &Session{ID: uuid.NewString(), Selection: sel, chat: chat, revision: 1}, st, nil
}

// Refine sends feedback on the session's chat and returns the complete new
// setup. The session stays usable after a failure.
func (c *Client) Refine(ctx context.Context, s *Session, feedback string) (setup.Setup, error) {
	if s == nil {
		return setup.Setup{}, &PreconditionError{Err: ErrNoSession}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() || s.chat == nil {
		return setup.Setup{}, &PreconditionError{Err: ErrNoSession}
	}
	if err := c.credential(OpRefine); err != nil {
		return setup.Setup{}, err
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return setup.Setup{}, &ValidationError{Op: OpRefine, Field: "feedback"}
	}

	ctx = llm.WithOperation(ctx, OpRefine)
	raw, err := s.chat.Send(ctx, refinePrompt(feedback))
	if err != nil {
		return setup.Setup{}, c.providerError(OpRefine, err)
	}
	st, err := c.parse(OpRefine, raw)
	if err != nil {
		return setup.Setup{}, err
	}
	s.revision++
	return st, nil
}

func (c *Client) credential(op string) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return &ConfigurationError{Op: op, Err: llm.ErrNoCredential}
	}
	return nil
}

func (c *Client) providerError(op string, err error) error {
	if errors.Is(err, llm.ErrNoCredential) {
		return &ConfigurationError{Op: op, Err: err}
	}
	c.log.Printf("advisor %s: provider %s failed: %v", op, c.p.Name(), err)
	return &ProviderError{Op: op, Err: err}
}

func (c *Client) parse(op, raw string) (setup.Setup, error) {
	st, err := setup.Parse(raw)
	if err == nil {
		return st, nil
	}
	c.log.Printf("advisor %s: unusable reply: %v; raw=%q", op, err, raw)
	pe := &ParseError{Op: op, Raw: raw, Err: err}
	var inc *setup.IncompleteError
	if errors.As(err, &inc) {
		pe.Problems = inc.Problems
	}
	return setup.Setup{}, pe
}
