package file

import (
	"time"

	"github.com/google/uuid"

	"file-share-api/internal/domain/user"
)

type (
	UUID = uuid.UUID

	// File is the metadata record of one stored blob. StoredFilename is the
	// on-disk key: a random opaque token, never derived from user input.
	File struct {
		UUID      UUID
		OwnerUUID user.UUID

		OriginalFilename string
		StoredFilename   string
		ContentDigest    string
		SizeBytes        uint64
		Description      string
		IsPublic         bool

		CreatedAt time.Time
	}
	Files []*File
)

// VisibilityFilter narrows owned-file listings.
type VisibilityFilter int

const (
	VisibilityAny VisibilityFilter = iota
	VisibilityPublic
	VisibilityPrivate
)
