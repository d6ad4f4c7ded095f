package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStorage implements the Storage interface with an embedded SQLite
// database for session state. Session state is stored as a JSON document
// per row, matching the Redis backend's serialization.
type SQLiteStorage struct {
	db       *sql.DB
	logger   *slog.Logger
	catalogs catalogLoader
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (creating if needed) the database at path.
func NewSQLiteStorage(path string, dataDir string, logger *slog.Logger) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// modernc sqlite is safest with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sessionSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	if dataDir == "" {
		dataDir = "./data"
	}

	return &SQLiteStorage{
		db:       db,
		logger:   logger,
		catalogs: catalogLoader{dataDir: dataDir, logger: logger},
	}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close sqlite database", "error", err)
		return err
	}
	s.logger.Info("SQLite database closed")
	return nil
}

func (s *SQLiteStorage) SaveSession(ctx context.Context, id uuid.UUID, ss *state.SessionState) error {
	ss.UpdatedAt = time.Now()

	data, err := json.Marshal(ss)
	if err != nil {
		s.logger.Error("Failed to marshal session state", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id.String(), string(data), ss.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Error("Failed to save session state", "uuid", id, "error", err)
		return fmt.Errorf("failed to save session state: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.SessionState, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM sessions WHERE id = ?`, id.String()).Scan(&data)
	if err == sql.ErrNoRows {
		s.logger.Warn("Session not found", "uuid", id)
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to load session state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}

	var ss state.SessionState
	if err := json.Unmarshal([]byte(data), &ss); err != nil {
		s.logger.Error("Failed to unmarshal session state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	ss.Normalize()

	return &ss, nil
}

func (s *SQLiteStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String()); err != nil {
		s.logger.Error("Failed to delete session state", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			s.logger.Warn("Skipping malformed session id", "id", raw)
			continue
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStorage) GetTierCatalog(ctx context.Context) (*reputation.TierCatalog, error) {
	return s.catalogs.loadTiers()
}

func (s *SQLiteStorage) GetActionCatalog(ctx context.Context) (*reputation.ActionCatalog, error) {
	return s.catalogs.loadActions()
}

func (s *SQLiteStorage) GetEncounterCatalog(ctx context.Context) (*encounter.Catalog, error) {
	return s.catalogs.loadEncounters()
}
