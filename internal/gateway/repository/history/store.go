package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// FileStore keeps every record in one JSON file, or in memory when path is
// empty. PostgresStore is used instead when a DSN is configured.
type FileStore struct {
	path string

	loadOnce sync.Once
	// saveMu orders file writes; it is taken before mu.
	saveMu sync.Mutex
	mu     sync.RWMutex
	bySess map[string][]Record
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   strings.TrimSpace(path),
		bySess: make(map[string][]Record),
	}
}

// NewMemoryStore is a FileStore that never touches disk.
func NewMemoryStore() *FileStore {
	return NewFileStore("")
}

type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// New picks Postgres when dsn is set and reachable, the JSON file at path
// otherwise.
func New(dsn, path string) Store {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return NewFileStore(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return NewFileStore(path)
	}
	return s
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func validate(rec Record) error {
	if strings.TrimSpace(rec.SessionID) == "" {
		return fmt.Errorf("session_id is required")
	}
	if rec.Revision < 1 {
		return fmt.Errorf("revision must be positive")
	}
	if rec.Kind != KindGenerate && rec.Kind != KindRefine {
		return fmt.Errorf("kind must be %q or %q, got %q", KindGenerate, KindRefine, rec.Kind)
	}
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

func (s *FileStore) Append(_ context.Context, rec Record) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := validate(rec); err != nil {
		return err
	}
	s.ensureLoadedFile()
	s.mu.Lock()
	s.bySess[rec.SessionID] = append(s.bySess[rec.SessionID], rec)
	s.mu.Unlock()
	return s.saveFile()
}

func (s *FileStore) List(_ context.Context, sessionID string) ([]Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.ensureLoadedFile()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.bySess[strings.TrimSpace(sessionID)]...), nil
}
