package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS setup_history (
  id SERIAL PRIMARY KEY,
  session_id TEXT NOT NULL,
  revision INTEGER NOT NULL,
  kind TEXT NOT NULL DEFAULT 'generate',
  car TEXT NOT NULL DEFAULT '',
  track TEXT NOT NULL DEFAULT '',
  style TEXT NOT NULL DEFAULT '',
  feedback TEXT NOT NULL DEFAULT '',
  setup JSONB NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  UNIQUE (session_id, revision)
);
ALTER TABLE setup_history ADD COLUMN IF NOT EXISTS kind TEXT NOT NULL DEFAULT 'generate';
CREATE INDEX IF NOT EXISTS idx_setup_history_session_id ON setup_history (session_id);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}
	if err := validate(rec); err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	raw, err := json.Marshal(rec.Setup)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO setup_history (session_id, revision, kind, car, track, style, feedback, setup, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (session_id, revision)
DO UPDATE SET kind=EXCLUDED.kind, feedback=EXCLUDED.feedback, setup=EXCLUDED.setup, created_at=EXCLUDED.created_at`,
		rec.SessionID, rec.Revision, rec.Kind, rec.Car, rec.Track, rec.Style, rec.Feedback, string(raw), rec.CreatedAt)
	return err
}

func (s *PostgresStore) List(ctx context.Context, sessionID string) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, revision, kind, car, track, style, feedback, setup, created_at
FROM setup_history WHERE session_id = $1 ORDER BY revision`, strings.TrimSpace(sessionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, 8)
	for rows.Next() {
		var (
			rec Record
			raw []byte
		)
		if err := rows.Scan(&rec.SessionID, &rec.Revision, &rec.Kind, &rec.Car, &rec.Track, &rec.Style, &rec.Feedback, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rec.Setup); err != nil {
			return nil, fmt.Errorf("decode setup %s r%d: %w", rec.SessionID, rec.Revision, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
