package llm

import (
	"context"
	"sync"
)

// FakeReply produces the reply for the n-th Send (0-based, counted per
// provider) of a session.
type FakeReply func(n int, message string) (string, error)

// FakeProvider answers from a script instead of a network backend. It is
// used by tests and by the offline mode of the binaries.
type FakeProvider struct {
	reply FakeReply

	mu       sync.Mutex
	chats    int
	sends    int
	messages []string
	configs  []ChatConfig
}

func NewFakeProvider(reply FakeReply) *FakeProvider {
	return &FakeProvider{reply: reply}
}

// FakeText returns a script that answers every Send with text.
func FakeText(text string) FakeReply {
	return func(int, string) (string, error) { return text, nil }
}

// FakeSequence answers Send n with replies[n]; the last reply repeats.
func FakeSequence(replies ...string) FakeReply {
	return func(n int, _ string) (string, error) {
		if len(replies) == 0 {
			return "", ErrEmptyReply
		}
		if n >= len(replies) {
			n = len(replies) - 1
		}
		return replies[n], nil
	}
}

func (f *FakeProvider) Name() string { return "FakeLLM" }
func (f *FakeProvider) Close() error { return nil }

func (f *FakeProvider) StartChat(_ context.Context, cfg ChatConfig) (ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats++
	f.configs = append(f.configs, cfg)
	return &fakeSession{p: f}, nil
}

// Chats is the number of sessions opened so far.
func (f *FakeProvider) Chats() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chats
}

// Sends is the number of provider calls issued so far.
func (f *FakeProvider) Sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends
}

// Messages returns every message sent, in order.
func (f *FakeProvider) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

// LastConfig returns the config of the most recently opened chat.
func (f *FakeProvider) LastConfig() (ChatConfig, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.configs) == 0 {
		return ChatConfig{}, false
	}
	return f.configs[len(f.configs)-1], true
}

type fakeSession struct {
	p *FakeProvider
}

func (s *fakeSession) Send(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.p.mu.Lock()
	n := s.p.sends
	s.p.sends++
	s.p.messages = append(s.p.messages, message)
	reply := s.p.reply
	s.p.mu.Unlock()
	if reply == nil {
		return "", ErrEmptyReply
	}
	return reply(n, message)
}
