// Package store defines the session storage interface and implementations.
package store

import (
	"context"
	"errors"

	"github.com/domvito55/skillsladder-api/internal/domain"
)

// ErrNotFound is returned when no document matches the given criteria.
var ErrNotFound = errors.New("document not found")

// ErrUnknownField is returned when a lookup field is not part of the session
// document schema. Field names are validated here, at the adapter boundary,
// rather than trusted at every call site.
var ErrUnknownField = errors.New("unknown search field")

// ErrDuplicateSession is returned when inserting a document whose sessionName
// already exists in the collection. Session names are unique per collection.
var ErrDuplicateSession = errors.New("session already exists")

// SessionStore defines document-style persistence for chat sessions. All
// operations are single-document and single round trip; there are no
// multi-document transactions. Retry policy belongs to the caller.
type SessionStore interface {
	// Insert stores a new session document and returns it as persisted.
	Insert(ctx context.Context, collection string, doc *domain.ChatHistory) (*domain.ChatHistory, error)

	// FindByField retrieves the session document matching field = value.
	// Returns ErrNotFound when no document matches.
	FindByField(ctx context.Context, collection, field, value string) (*domain.ChatHistory, error)

	// ReplaceByField replaces the session document matching field = value.
	// The document id is preserved. Reports whether a document was replaced.
	ReplaceByField(ctx context.Context, collection, field, value string, doc *domain.ChatHistory) (bool, error)

	// DeleteByField removes the session document matching field = value.
	// Reports whether a document was deleted.
	DeleteByField(ctx context.Context, collection, field, value string) (bool, error)

	// PushMessages appends messages to the tail of a session's message list,
	// in call order, atomically. Returns the number of messages appended.
	// Returns ErrNotFound when the session does not exist.
	PushMessages(ctx context.Context, collection, sessionID string, msgs []domain.Message) (int64, error)

	// PopLastMessage removes and returns the last message of a session's
	// message list. Returns nil when the list is empty and ErrNotFound when
	// the session does not exist.
	PopLastMessage(ctx context.Context, collection, sessionID string) (*domain.Message, error)

	// Lifecycle
	Close() error
}
