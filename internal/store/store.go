// Package store holds the user-record document store contract and its
// MongoDB and in-memory implementations. The contract mirrors what the
// service actually needs from a document database: per-document read,
// per-field update, and an atomic multi-document transaction that the
// backend retries on write conflict.
package store

import (
	"context"

	"proximity-service/internal/models"
)

// Document field names. These are the wire schema; the relationship
// service writes relation lists only through these.
const (
	FieldFriendsList        = "friendsList"
	FieldFriendRequests     = "friendRequests"
	FieldSentFriendRequests = "sentFriendRequests"
	FieldBlockedList        = "blockedList"
	FieldLocationSharedWith = "locationSharedWith"
	FieldLocationSharedBy   = "locationSharedBy"
	FieldLastKnownLocation  = "lastKnownLocation"
	FieldIsOnline           = "isOnline"
	FieldProfilePicture     = "profilePicture"
	FieldFirstName          = "firstName"
	FieldLastName           = "lastName"
)

// Tx exposes reads and writes scoped to one transaction. Everything
// done through a Tx commits atomically or not at all.
type Tx interface {
	Get(uid string) (*models.User, error)
	UpdateField(uid string, field string, value any) error
}

// UserStore is the document store the engine runs against.
type UserStore interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	UpdateField(ctx context.Context, uid string, field string, value any) error

	// RunTransaction executes fn atomically across every document it
	// touches. The store retries fn on write conflicts, so fn must be
	// safe to re-run; a conflict that survives the retry budget
	// surfaces as ErrConflict.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error

	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ListAll is a full-collection scan. Only the recommendation path
	// uses it; swap for an indexed query before the user count grows.
	ListAll(ctx context.Context) ([]*models.User, error)
}
