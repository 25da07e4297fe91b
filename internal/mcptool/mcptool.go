// Package mcptool exposes setup generation as MCP tools so agents and
// editors can drive the advisor directly.
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"accsetup/internal/advisor"
	"accsetup/internal/catalog"
	"accsetup/internal/setup"
)

const (
	ToolListOptions = "list_options"
	ToolGenerate    = "generate_setup"
	ToolRefine      = "refine_setup"
)

// Advisor is the part of advisor.Client the tools drive.
type Advisor interface {
	BeginSession(ctx context.Context, sel advisor.Selection) (*advisor.Session, setup.Setup, error)
	Refine(ctx context.Context, s *advisor.Session, feedback string) (setup.Setup, error)
}

// Server serves the setup tools. Sessions live for the lifetime of the
// server.
type Server struct {
	server *mcp.Server
	adv    Advisor
	cat    *catalog.Catalog
	lang   string

	mu       sync.Mutex
	sessions map[string]*tracked
}

// tracked is one open session. mu is held for a whole refine turn so the
// diff base is the revision the turn started from.
type tracked struct {
	mu      sync.Mutex
	session *advisor.Session
	setup   setup.Setup
}

type generateArgs struct {
	Car   string `json:"car"`
	Track string `json:"track"`
	Style string `json:"style"`
}

type refineArgs struct {
	SessionID string `json:"session_id"`
	Feedback  string `json:"feedback"`
}

// Result is the JSON text returned by generate_setup and refine_setup.
type Result struct {
	SessionID string         `json:"session_id"`
	Revision  int            `json:"revision"`
	Setup     setup.Setup    `json:"setup"`
	Changes   []setup.Change `json:"changes,omitempty"`
	Diff      string         `json:"diff,omitempty"`
}

func New(name, version string, adv Advisor, cat *catalog.Catalog, lang string) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    name,
			Version: version,
		}, nil),
		adv:      adv,
		cat:      cat,
		lang:     lang,
		sessions: make(map[string]*tracked),
	}
	s.register()
	return s
}

func (s *Server) register() {
	s.server.AddTool(&mcp.Tool{
		Name:        ToolListOptions,
		Description: "List the cars, tracks and driving styles a setup can be generated for.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
	}, s.handle(s.listOptions))

	s.server.AddTool(&mcp.Tool{
		Name:        ToolGenerate,
		Description: "Generate a complete Assetto Corsa Competizione setup and open a session for refinement.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{` +
			`"car":{"type":"string","description":"Car name from list_options"},` +
			`"track":{"type":"string","description":"Track name from list_options"},` +
			`"style":{"type":"string","description":"Driving style from list_options"}},` +
			`"required":["car","track","style"]}`),
	}, s.handle(s.generate))

	s.server.AddTool(&mcp.Tool{
		Name:        ToolRefine,
		Description: "Refine the setup of an open session with feedback on how the car behaves.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{` +
			`"session_id":{"type":"string"},` +
			`"feedback":{"type":"string","description":"What the driver experiences, e.g. understeer in slow corners"}},` +
			`"required":["session_id","feedback"]}`),
	}, s.handle(s.refine))
}

// Serve reads requests from in and writes responses to out until ctx is
// cancelled or the transport closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return s.run(ctx, &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	})
}

func (s *Server) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

type toolFunc func(ctx context.Context, args json.RawMessage) (any, error)

func (s *Server) handle(fn toolFunc) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}
		out, err := fn(ctx, args)
		if err != nil {
			return errorResult(s.message(err)), nil
		}
		raw, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
		}, nil
	}
}

func (s *Server) listOptions(context.Context, json.RawMessage) (any, error) {
	return s.cat, nil
}

func (s *Server) generate(ctx context.Context, raw json.RawMessage) (any, error) {
	var args generateArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if s.cat != nil {
		if err := s.cat.Check(args.Car, args.Track, args.Style); err != nil {
			return nil, err
		}
	}
	sess, st, err := s.adv.BeginSession(ctx, advisor.Selection{Car: args.Car, Track: args.Track, Style: args.Style})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[sess.ID] = &tracked{session: sess, setup: st}
	s.mu.Unlock()
	return Result{SessionID: sess.ID, Revision: sess.Revision(), Setup: st}, nil
}

func (s *Server) refine(ctx context.Context, raw json.RawMessage) (any, error) {
	var args refineArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	s.mu.Lock()
	t := s.sessions[args.SessionID]
	s.mu.Unlock()
	if t == nil {
		return nil, &advisor.PreconditionError{Err: advisor.ErrNoSession}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.setup
	st, err := s.adv.Refine(ctx, t.session, args.Feedback)
	if err != nil {
		return nil, err
	}
	rev := t.session.Revision()
	t.setup = st

	diff, err := setup.UnifiedDiff(prev, st, fmt.Sprintf("r%d", rev-1), fmt.Sprintf("r%d", rev))
	if err != nil {
		log.Printf("mcp refine: diff failed: %v", err)
	}
	return Result{
		SessionID: args.SessionID,
		Revision:  rev,
		Setup:     st,
		Changes:   setup.Diff(prev, st),
		Diff:      diff,
	}, nil
}

func (s *Server) message(err error) string {
	var (
		val *advisor.ValidationError
		pre *advisor.PreconditionError
	)
	switch {
	case errors.Is(err, catalog.ErrUnknownOption):
		return err.Error()
	case errors.As(err, &val), errors.As(err, &pre):
		return advisor.UserMessage(err, s.lang)
	}
	var (
		cfg  *advisor.ConfigurationError
		prov *advisor.ProviderError
		prs  *advisor.ParseError
	)
	if errors.As(err, &cfg) || errors.As(err, &prov) || errors.As(err, &prs) {
		return advisor.UserMessage(err, s.lang)
	}
	return err.Error()
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
