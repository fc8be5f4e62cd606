package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lingobridge/lingobridge-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id                TEXT PRIMARY KEY,
	customer_name     TEXT NOT NULL,
	customer_language TEXT NOT NULL,
	agent_id          TEXT,
	agent_language    TEXT NOT NULL DEFAULT 'en',
	status            TEXT NOT NULL DEFAULT 'WAITING',
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id                  TEXT PRIMARY KEY,
	session_id          TEXT NOT NULL,
	sender_role         TEXT NOT NULL,
	original_text       TEXT NOT NULL,
	original_language   TEXT NOT NULL,
	translated_text     TEXT,
	translated_language TEXT,
	message_type        TEXT NOT NULL DEFAULT 'TEXT',
	image_url           TEXT,
	created_at          DATETIME NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status, updated_at DESC);
`

// SQLiteStore implements store.SessionStore on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a SQLite-backed store and applies the schema.
// dbPath is the path to the database file; ":memory:" works for tests.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; this also makes
	// concurrent appends to the same session serialize at the driver.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession persists a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *store.Session) error {
	query := `
		INSERT INTO sessions (id, customer_name, customer_language, agent_id, agent_language, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.CustomerName,
		session.CustomerLanguage,
		session.AgentID,
		session.AgentLanguage,
		string(session.Status),
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*store.Session, error) {
	query := `
		SELECT id, customer_name, customer_language, agent_id, agent_language, status, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return session, nil
}

// UpdateSession applies a patch to an existing session and bumps UpdatedAt.
func (s *SQLiteStore) UpdateSession(ctx context.Context, id string, patch store.SessionPatch) (*store.Session, error) {
	query := `
		UPDATE sessions
		SET agent_id       = COALESCE(?, agent_id),
		    agent_language = COALESCE(?, agent_language),
		    status         = COALESCE(?, status),
		    updated_at     = ?
		WHERE id = ?
	`
	var status *string
	if patch.Status != nil {
		v := string(*patch.Status)
		status = &v
	}

	result, err := s.db.ExecContext(ctx, query, patch.AgentID, patch.AgentLanguage, status, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrSessionNotFound
	}

	return s.GetSession(ctx, id)
}

// ListSessions lists sessions ordered by recent activity.
func (s *SQLiteStore) ListSessions(ctx context.Context, status *store.SessionStatus) ([]*store.Session, error) {
	query := `
		SELECT id, customer_name, customer_language, agent_id, agent_language, status, created_at, updated_at
		FROM sessions
	`
	args := []any{}
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*store.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// AppendMessage persists a message and bumps the session's UpdatedAt.
// Both statements run inside one transaction so concurrent appends to the
// same session never produce lost writes.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id = ?`, msg.SessionID).Scan(&exists); err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return store.ErrSessionNotFound
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	insert := `
		INSERT INTO messages (id, session_id, sender_role, original_text, original_language,
			translated_text, translated_language, message_type, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insert,
		msg.ID,
		msg.SessionID,
		string(msg.SenderRole),
		msg.OriginalText,
		msg.OriginalLanguage,
		msg.TranslatedText,
		msg.TranslatedLanguage,
		string(msg.MessageType),
		msg.ImageURL,
		createdAt,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, createdAt, msg.SessionID); err != nil {
		return fmt.Errorf("bump session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListRecentMessages retrieves up to limit most recent messages, newest first.
func (s *SQLiteStore) ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]*store.Message, error) {
	query := `
		SELECT id, session_id, sender_role, original_text, original_language,
		       translated_text, translated_language, message_type, image_url, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return s.queryMessages(ctx, query, sessionID, limit)
}

// ListMessages retrieves the full transcript in chronological order.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]*store.Message, error) {
	query := `
		SELECT id, session_id, sender_role, original_text, original_language,
		       translated_text, translated_language, message_type, image_url, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`
	return s.queryMessages(ctx, query, sessionID)
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var (
			msg        store.Message
			role, kind string
		)
		if err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&role,
			&msg.OriginalText,
			&msg.OriginalLanguage,
			&msg.TranslatedText,
			&msg.TranslatedLanguage,
			&kind,
			&msg.ImageURL,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.SenderRole = store.SenderRole(role)
		msg.MessageType = store.MessageType(kind)
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*store.Session, error) {
	var (
		session store.Session
		status  string
	)
	if err := row.Scan(
		&session.ID,
		&session.CustomerName,
		&session.CustomerLanguage,
		&session.AgentID,
		&session.AgentLanguage,
		&status,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	session.Status = store.SessionStatus(status)
	return &session, nil
}
