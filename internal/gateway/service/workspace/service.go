// Package workspace holds the per-visitor state of the web front end: the
// open advisor session and the setup currently shown.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"accsetup/internal/advisor"
	"accsetup/internal/catalog"
	"accsetup/internal/gateway/repository/artifact"
	"accsetup/internal/gateway/repository/history"
	"accsetup/internal/setup"
)

var (
	ErrNotFound = errors.New("workspace not found")
	// ErrBusy is returned while another action on the same workspace is
	// still running.
	ErrBusy = errors.New("workspace is busy")
	// ErrNoSetup is returned by Export before the first successful generate.
	ErrNoSetup = errors.New("workspace has no setup")
)

type Config struct {
	TTL time.Duration
	Max int
}

// Advisor is the part of advisor.Client the service drives.
type Advisor interface {
	BeginSession(ctx context.Context, sel advisor.Selection) (*advisor.Session, setup.Setup, error)
	Refine(ctx context.Context, s *advisor.Session, feedback string) (setup.Setup, error)
}

type Service struct {
	adv       Advisor
	cat       *catalog.Catalog
	history   history.Store
	artifacts artifact.Store
	now       func() time.Time

	mu    sync.Mutex
	cache *expirable.LRU[string, *entry]
}

type entry struct {
	id        string
	selection advisor.Selection
	session   *advisor.Session
	revision  int
	setup     *setup.Setup
	changes   []setup.Change
	busy      bool
	updatedAt time.Time
}

// View is a snapshot of a workspace.
type View struct {
	ID         string            `json:"id"`
	Selection  advisor.Selection `json:"selection"`
	SessionID  string            `json:"sessionId,omitempty"`
	Revision   int               `json:"revision"`
	Setup      *setup.Setup      `json:"setup,omitempty"`
	Changes    []setup.Change    `json:"changes,omitempty"`
	HasSession bool              `json:"hasSession"`
	Busy       bool              `json:"busy"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type Export struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func New(cfg Config, adv Advisor, cat *catalog.Catalog, hist history.Store, arts artifact.Store) *Service {
	if cfg.Max <= 0 {
		cfg.Max = 1024
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	if hist == nil {
		hist = history.NewMemoryStore()
	}
	if arts == nil {
		arts = artifact.NewMemoryStore()
	}
	onEvict := func(_ string, e *entry) {
		if e.session != nil {
			e.session.Close()
		}
	}
	return &Service{
		adv:       adv,
		cat:       cat,
		history:   hist,
		artifacts: arts,
		now:       time.Now,
		cache:     expirable.NewLRU[string, *entry](cfg.Max, onEvict, cfg.TTL),
	}
}

// Catalog returns the option lists selections are checked against.
func (s *Service) Catalog() *catalog.Catalog { return s.cat }

// Generate starts a fresh session on the workspace, creating the workspace
// when id is empty or unknown. An empty or unknown selection is rejected
// before the workspace is touched. Otherwise the previous session and setup
// are dropped before the provider is called, so a failure leaves the
// workspace empty. The returned View carries the workspace ID even when err
// is non-nil.
func (s *Service) Generate(ctx context.Context, id string, sel advisor.Selection) (View, error) {
	id = strings.TrimSpace(id)
	sel, err := s.checkSelection(sel)
	if err != nil {
		return View{ID: id}, err
	}

	e, err := s.acquire(id, true)
	if err != nil {
		return View{ID: id}, err
	}
	s.mu.Lock()
	if e.session != nil {
		e.session.Close()
	}
	e.selection = sel
	e.session = nil
	e.revision = 0
	e.setup = nil
	e.changes = nil
	s.mu.Unlock()

	sess, st, err := s.adv.BeginSession(ctx, sel)
	rev := 0
	if err == nil {
		rev = sess.Revision()
	}

	s.mu.Lock()
	e.busy = false
	e.updatedAt = s.now()
	if err == nil {
		e.session = sess
		e.revision = rev
		e.setup = &st
	}
	s.touchLocked(e)
	view := s.viewLocked(e)
	s.mu.Unlock()
	if err != nil {
		return view, err
	}

	s.record(ctx, view, history.KindGenerate, "")
	return view, nil
}

// Refine sends feedback on the workspace's session. On failure the session
// and the current setup are kept.
func (s *Service) Refine(ctx context.Context, id, feedback string) (View, error) {
	id = strings.TrimSpace(id)
	e, err := s.acquire(id, false)
	if err != nil {
		return View{ID: id}, err
	}
	s.mu.Lock()
	sess := e.session
	var prev setup.Setup
	if e.setup != nil {
		prev = *e.setup
	}
	s.mu.Unlock()

	st, err := s.adv.Refine(ctx, sess, feedback)
	rev := 0
	if err == nil {
		rev = sess.Revision()
	}

	s.mu.Lock()
	e.busy = false
	if err == nil {
		e.setup = &st
		e.revision = rev
		e.changes = setup.Diff(prev, st)
		e.updatedAt = s.now()
		s.touchLocked(e)
	}
	view := s.viewLocked(e)
	s.mu.Unlock()
	if err != nil {
		return view, err
	}

	s.record(ctx, view, history.KindRefine, strings.TrimSpace(feedback))
	return view, nil
}

func (s *Service) Get(id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache.Get(strings.TrimSpace(id))
	if !ok {
		return View{}, ErrNotFound
	}
	return s.viewLocked(e), nil
}

// History lists every setup produced on the workspace's current session.
func (s *Service) History(ctx context.Context, id string) ([]history.Record, error) {
	view, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if view.SessionID == "" {
		return []history.Record{}, nil
	}
	return s.history.List(ctx, view.SessionID)
}

// Export stores the current setup as JSON and returns its key and a
// download URL. base is used when the store cannot mint its own URL.
func (s *Service) Export(ctx context.Context, id, base string) (Export, error) {
	view, err := s.Get(id)
	if err != nil {
		return Export{}, err
	}
	if view.Setup == nil {
		return Export{}, ErrNoSetup
	}
	raw, err := setup.Marshal(*view.Setup)
	if err != nil {
		return Export{}, fmt.Errorf("encode setup: %w", err)
	}
	key := artifact.ObjectKey(view.Selection.Car, view.Selection.Track, view.SessionID, view.Revision)
	if err := s.artifacts.Put(ctx, key, raw); err != nil {
		return Export{}, fmt.Errorf("store export: %w", err)
	}
	u, err := s.artifacts.GetURL(ctx, key)
	if err != nil {
		return Export{}, fmt.Errorf("export url: %w", err)
	}
	if u == "" {
		u = strings.TrimRight(base, "/") + "/" + key
	}
	return Export{Key: key, URL: u}, nil
}

// ReadExport returns a stored export.
func (s *Service) ReadExport(ctx context.Context, key string) ([]byte, error) {
	return s.artifacts.Get(ctx, key)
}

// Delete drops the workspace and closes its session.
func (s *Service) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(strings.TrimSpace(id))
}

func (s *Service) acquire(id string, create bool) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache.Get(id)
	if !ok {
		if !create {
			return nil, ErrNotFound
		}
		if id == "" {
			id = uuid.NewString()
		}
		e = &entry{id: id, updatedAt: s.now()}
	}
	if e.busy {
		return nil, ErrBusy
	}
	e.busy = true
	s.cache.Add(e.id, e)
	return e, nil
}

// touchLocked restarts the entry's TTL, making it an idle timeout. An entry
// deleted or evicted while the provider was called stays gone.
func (s *Service) touchLocked(e *entry) {
	if cur, ok := s.cache.Peek(e.id); ok && cur == e {
		s.cache.Add(e.id, e)
	}
}

func (s *Service) checkSelection(sel advisor.Selection) (advisor.Selection, error) {
	sel = advisor.Selection{
		Car:   strings.TrimSpace(sel.Car),
		Track: strings.TrimSpace(sel.Track),
		Style: strings.TrimSpace(sel.Style),
	}
	switch {
	case sel.Car == "":
		return sel, &advisor.ValidationError{Op: advisor.OpGenerate, Field: "car"}
	case sel.Track == "":
		return sel, &advisor.ValidationError{Op: advisor.OpGenerate, Field: "track"}
	case sel.Style == "":
		return sel, &advisor.ValidationError{Op: advisor.OpGenerate, Field: "style"}
	}
	if s.cat != nil {
		if err := s.cat.Check(sel.Car, sel.Track, sel.Style); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

func (s *Service) record(ctx context.Context, v View, kind, feedback string) {
	rec := history.Record{
		SessionID: v.SessionID,
		Revision:  v.Revision,
		Kind:      kind,
		Car:       v.Selection.Car,
		Track:     v.Selection.Track,
		Style:     v.Selection.Style,
		Feedback:  feedback,
		Setup:     *v.Setup,
		CreatedAt: v.UpdatedAt,
	}
	if err := s.history.Append(ctx, rec); err != nil {
		log.Printf("history append failed (session=%s rev=%d): %v", rec.SessionID, rec.Revision, err)
	}
}

func (s *Service) viewLocked(e *entry) View {
	v := View{
		ID:         e.id,
		Selection:  e.selection,
		HasSession: e.session != nil,
		Busy:       e.busy,
		UpdatedAt:  e.updatedAt,
		Changes:    append([]setup.Change(nil), e.changes...),
	}
	if e.session != nil {
		v.SessionID = e.session.ID
		v.Revision = e.revision
	}
	if e.setup != nil {
		st := *e.setup
		v.Setup = &st
	}
	return v
}
