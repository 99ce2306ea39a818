package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound - the referenced UID has no record. Never retried.
	ErrNotFound = errors.New("user record not found")

	// ErrAlreadyExists - unique index violation (email or phone).
	ErrAlreadyExists = errors.New("user record already exists")

	// ErrPreconditionFailed - the operation's precondition does not
	// hold (share already granted, stop-share when absent, ...).
	// Handlers map this to "already done", not a generic error.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrConflict - concurrent writers on the same pair exhausted the
	// store's transaction retries.
	ErrConflict = errors.New("transaction conflict")
)

// wrapMongoError maps driver errors onto the store taxonomy. Unknown
// errors pass through untouched so callers see the backend's message
// verbatim.
func wrapMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasErrorLabel("TransientTransactionError") {
		return ErrConflict
	}
	return err
}
