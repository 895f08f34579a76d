package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/domvito55/skillsladder-api/internal/domain"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements SessionStore using SQLite. Session documents are
// stored relationally: one row per session, one row per message, ordered by a
// per-session sequence number.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			collection TEXT NOT NULL,
			session_id TEXT NOT NULL,
			session_name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, session_id)
		)`,
		// sessionName is the lookup key for chat resumption; duplicates would
		// make findOne-by-field ambiguous, so uniqueness is enforced here.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_name ON sessions(collection, session_name)`,
		`CREATE TABLE IF NOT EXISTS messages (
			collection TEXT NOT NULL,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (collection, session_id, seq),
			FOREIGN KEY (collection, session_id) REFERENCES sessions(collection, session_id) ON DELETE CASCADE
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// fieldColumn maps a document field name to its column. Only fields of the
// session document schema are queryable.
func fieldColumn(field string) (string, error) {
	switch field {
	case "_id":
		return "session_id", nil
	case "sessionName":
		return "session_name", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// Insert stores a new session document along with its messages.
func (s *SQLiteStore) Insert(ctx context.Context, collection string, doc *domain.ChatHistory) (*domain.ChatHistory, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session document: %w", err)
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sessions WHERE collection = ? AND session_name = ?`,
		collection, doc.SessionName).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, ErrDuplicateSession
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (collection, session_id, session_name, created_at) VALUES (?, ?, ?, ?)`,
		collection, doc.ID, doc.SessionName, time.Now()); err != nil {
		return nil, err
	}

	for i, msg := range doc.Messages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (collection, session_id, seq, type, content) VALUES (?, ?, ?, ?, ?)`,
			collection, doc.ID, i+1, msg.Type, msg.Content); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.FindByField(ctx, collection, "_id", doc.ID)
}

// FindByField retrieves a session document by a field and its value.
func (s *SQLiteStore) FindByField(ctx context.Context, collection, field, value string) (*domain.ChatHistory, error) {
	column, err := fieldColumn(field)
	if err != nil {
		return nil, err
	}

	var doc domain.ChatHistory
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT session_id, session_name FROM sessions WHERE collection = ? AND %s = ?`, column),
		collection, value).Scan(&doc.ID, &doc.SessionName)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc.Messages, err = s.loadMessages(ctx, collection, doc.ID)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// loadMessages loads a session's messages in insertion order.
func (s *SQLiteStore) loadMessages(ctx context.Context, collection, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, content FROM messages WHERE collection = ? AND session_id = ? ORDER BY seq ASC`,
		collection, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.Type, &msg.Content); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ReplaceByField replaces the matching session document, keeping its id.
func (s *SQLiteStore) ReplaceByField(ctx context.Context, collection, field, value string, doc *domain.ChatHistory) (bool, error) {
	if err := doc.Validate(); err != nil {
		return false, fmt.Errorf("invalid session document: %w", err)
	}
	column, err := fieldColumn(field)
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var sessionID string
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT session_id FROM sessions WHERE collection = ? AND %s = ?`, column),
		collection, value).Scan(&sessionID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET session_name = ? WHERE collection = ? AND session_id = ?`,
		doc.SessionName, collection, sessionID); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE collection = ? AND session_id = ?`,
		collection, sessionID); err != nil {
		return false, err
	}
	for i, msg := range doc.Messages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (collection, session_id, seq, type, content) VALUES (?, ?, ?, ?, ?)`,
			collection, sessionID, i+1, msg.Type, msg.Content); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByField removes the matching session document and its messages.
func (s *SQLiteStore) DeleteByField(ctx context.Context, collection, field, value string) (bool, error) {
	column, err := fieldColumn(field)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM sessions WHERE collection = ? AND %s = ?`, column),
		collection, value)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// PushMessages appends messages to the tail of a session's message list. The
// whole batch is committed in one transaction so a pair of turns is appended
// all-or-nothing.
func (s *SQLiteStore) PushMessages(ctx context.Context, collection, sessionID string, msgs []domain.Message) (int64, error) {
	for i := range msgs {
		if err := msgs[i].Validate(); err != nil {
			return 0, fmt.Errorf("messages[%d]: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sessions WHERE collection = ? AND session_id = ?`,
		collection, sessionID).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, ErrNotFound
	}

	var next int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE collection = ? AND session_id = ?`,
		collection, sessionID).Scan(&next)
	if err != nil {
		return 0, err
	}

	for i, msg := range msgs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (collection, session_id, seq, type, content) VALUES (?, ?, ?, ?, ?)`,
			collection, sessionID, next+int64(i), msg.Type, msg.Content); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int64(len(msgs)), nil
}

// PopLastMessage removes and returns the last message of a session.
func (s *SQLiteStore) PopLastMessage(ctx context.Context, collection, sessionID string) (*domain.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sessions WHERE collection = ? AND session_id = ?`,
		collection, sessionID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	var seq int64
	var msg domain.Message
	err = tx.QueryRowContext(ctx,
		`SELECT seq, type, content FROM messages WHERE collection = ? AND session_id = ? ORDER BY seq DESC LIMIT 1`,
		collection, sessionID).Scan(&seq, &msg.Type, &msg.Content)
	if err == sql.ErrNoRows {
		// Popping an empty list is not an error.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE collection = ? AND session_id = ? AND seq = ?`,
		collection, sessionID, seq); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &msg, nil
}
