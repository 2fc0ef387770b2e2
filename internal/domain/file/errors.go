package file

import "errors"

var (
	// Validation failures. No state changes.
	ErrEmptyFilename       = errors.New("no file selected")
	ErrExtensionNotAllowed = errors.New("file type not allowed")
	ErrTooLarge            = errors.New("file exceeds maximum upload size")

	// Access decisions.
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")

	ErrNotFound = errors.New("file not found")

	// ErrStoredNameConflict means the random storage token collided with an
	// existing row. The ingestion pipeline retries once with a fresh token.
	ErrStoredNameConflict = errors.New("stored filename already exists")

	// ErrOwnerNotFound means the owner row vanished between auth and insert.
	ErrOwnerNotFound = errors.New("file owner does not exist")

	// ErrStorageUnavailable wraps blob store failures. Retryable.
	ErrStorageUnavailable = errors.New("blob storage unavailable")
)
