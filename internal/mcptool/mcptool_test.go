package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accsetup/internal/advisor"
	"accsetup/internal/catalog"
	"accsetup/internal/llm"
	"accsetup/internal/setup"
)

func zeroReply(t *testing.T) string {
	t.Helper()
	raw, err := setup.Marshal(setup.Setup{})
	require.NoError(t, err)
	return string(raw)
}

func setupTestClient(t *testing.T, apiKey string, reply llm.FakeReply) (*mcp.ClientSession, *llm.FakeProvider) {
	t.Helper()

	f := llm.NewFakeProvider(reply)
	s := New("accsetup-test", "1.0.0", advisor.New(advisor.Config{APIKey: apiKey}, f), catalog.Default(), "en")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- s.run(ctx, serverTransport)
	}()
	t.Cleanup(func() {
		cancel()
		<-serverDone
	})

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session, f
}

func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text, res.IsError
}

func TestListTools(t *testing.T) {
	session, _ := setupTestClient(t, "k", llm.FakeText(zeroReply(t)))
	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolListOptions, ToolGenerate, ToolRefine}, names)
}

func TestListOptions(t *testing.T) {
	session, _ := setupTestClient(t, "k", llm.FakeText(zeroReply(t)))
	text, isErr := call(t, session, ToolListOptions, map[string]any{})
	require.False(t, isErr)

	var cat catalog.Catalog
	require.NoError(t, json.Unmarshal([]byte(text), &cat))
	assert.Equal(t, catalog.Default().Styles, cat.Styles)
}

func TestGenerateAndRefine(t *testing.T) {
	refined := strings.Replace(zeroReply(t), `"tractionControl1": 0`, `"tractionControl1": 3`, 1)
	session, f := setupTestClient(t, "k", llm.FakeSequence(zeroReply(t), refined))

	text, isErr := call(t, session, ToolGenerate, map[string]any{"car": "BMW M4 GT3", "track": "Monza", "style": "Balanced"})
	require.False(t, isErr, text)
	var gen Result
	require.NoError(t, json.Unmarshal([]byte(text), &gen))
	assert.NotEmpty(t, gen.SessionID)
	assert.Equal(t, 1, gen.Revision)

	text, isErr = call(t, session, ToolRefine, map[string]any{"session_id": gen.SessionID, "feedback": "understeer"})
	require.False(t, isErr, text)
	var ref Result
	require.NoError(t, json.Unmarshal([]byte(text), &ref))
	assert.Equal(t, 2, ref.Revision)
	assert.Equal(t, 3.0, ref.Setup.Electronics.TractionControl1)
	assert.Equal(t, []setup.Change{{Path: "electronics.tractionControl1", From: "0", To: "3"}}, ref.Changes)
	assert.Contains(t, ref.Diff, "+electronics.tractionControl1 = 3")
	assert.Equal(t, 2, f.Sends())
}

func TestConcurrentRefinesDiffAgainstTheirBase(t *testing.T) {
	withTC1 := func(v int) string {
		return strings.Replace(zeroReply(t), `"tractionControl1": 0`, fmt.Sprintf(`"tractionControl1": %d`, v), 1)
	}
	replies := []string{withTC1(0), withTC1(1), withTC1(2)}
	session, f := setupTestClient(t, "k", func(n int, _ string) (string, error) {
		if n == 1 {
			time.Sleep(50 * time.Millisecond)
		}
		return replies[min(n, len(replies)-1)], nil
	})

	text, isErr := call(t, session, ToolGenerate, map[string]any{"car": "BMW M4 GT3", "track": "Monza", "style": "Balanced"})
	require.False(t, isErr, text)
	var gen Result
	require.NoError(t, json.Unmarshal([]byte(text), &gen))

	type outcome struct {
		res *mcp.CallToolResult
		err error
	}
	out := make(chan outcome, 2)
	for _, fb := range []string{"understeer", "oversteer"} {
		go func(fb string) {
			res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
				Name:      ToolRefine,
				Arguments: map[string]any{"session_id": gen.SessionID, "feedback": fb},
			})
			out <- outcome{res, err}
		}(fb)
	}

	seen := map[int]bool{}
	for range 2 {
		o := <-out
		require.NoError(t, o.err)
		require.False(t, o.res.IsError)
		tc, ok := o.res.Content[0].(*mcp.TextContent)
		require.True(t, ok)
		var ref Result
		require.NoError(t, json.Unmarshal([]byte(tc.Text), &ref))

		seen[ref.Revision] = true
		before, after := ref.Revision-2, ref.Revision-1
		assert.Equal(t, float64(after), ref.Setup.Electronics.TractionControl1)
		assert.Equal(t, []setup.Change{{
			Path: "electronics.tractionControl1",
			From: fmt.Sprint(before),
			To:   fmt.Sprint(after),
		}}, ref.Changes, "revision %d", ref.Revision)
	}
	assert.Equal(t, map[int]bool{2: true, 3: true}, seen)
	assert.Equal(t, 3, f.Sends())
}

func TestToolErrors(t *testing.T) {
	session, f := setupTestClient(t, "", llm.FakeText(zeroReply(t)))

	text, isErr := call(t, session, ToolGenerate, map[string]any{"car": "Trabant", "track": "Monza", "style": "Balanced"})
	assert.True(t, isErr)
	assert.Contains(t, text, "Trabant")

	text, isErr = call(t, session, ToolGenerate, map[string]any{"car": "BMW M4 GT3", "track": "Monza", "style": "Balanced"})
	assert.True(t, isErr)
	assert.Equal(t, "Something went wrong while creating the setup. Please try again later.", text)

	text, isErr = call(t, session, ToolRefine, map[string]any{"session_id": "nope", "feedback": "x"})
	assert.True(t, isErr)
	assert.Equal(t, "There is no active chat session to fine-tune.", text)
	assert.Equal(t, 0, f.Sends())
}
