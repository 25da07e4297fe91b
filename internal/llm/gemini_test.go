package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generateServer struct {
	mu     sync.Mutex
	bodies []map[string]any
	status int
}

func (g *generateServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, ":generateContent") {
		http.NotFound(w, r)
		return
	}
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	g.mu.Lock()
	g.bodies = append(g.bodies, body)
	status := g.status
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`))
		return
	}
	_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"turn\":1}"}]},"finishReason":"STOP"}]}`))
}

func TestGeminiChatCarriesHistory(t *testing.T) {
	srv := &generateServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "k", BaseURL: ts.URL})
	require.NoError(t, err)
	assert.Equal(t, "Gemini:"+DefaultGeminiModel, p.Name())

	s, err := p.StartChat(context.Background(), ChatConfig{
		SystemInstruction: "be terse",
		ResponseMIMEType:  "application/json",
		ResponseSchema:    testSchema(),
	})
	require.NoError(t, err)

	reply, err := s.Send(context.Background(), "one")
	require.NoError(t, err)
	assert.Equal(t, `{"turn":1}`, reply)
	_, err = s.Send(context.Background(), "two")
	require.NoError(t, err)

	require.Len(t, srv.bodies, 2)
	assert.Len(t, srv.bodies[0]["contents"], 1)
	assert.Len(t, srv.bodies[1]["contents"], 3)
	assert.NotNil(t, srv.bodies[0]["systemInstruction"])
	gen, ok := srv.bodies[0]["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", gen["responseMimeType"])
	assert.NotNil(t, gen["responseSchema"])
}

func TestGeminiClientErrorIsPermanent(t *testing.T) {
	ts := httptest.NewServer(&generateServer{status: http.StatusForbidden})
	defer ts.Close()

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "k", BaseURL: ts.URL})
	require.NoError(t, err)
	s, err := p.StartChat(context.Background(), ChatConfig{})
	require.NoError(t, err)

	_, err = s.Send(context.Background(), "one")
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestGeminiWithoutKey(t *testing.T) {
	p, err := NewGeminiProvider(context.Background(), GeminiConfig{})
	require.NoError(t, err)
	_, err = p.StartChat(context.Background(), ChatConfig{})
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.True(t, IsPermanent(err))
}
