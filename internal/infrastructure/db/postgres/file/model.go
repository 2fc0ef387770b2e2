package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID        uint64
		UUID      uuid.UUID
		OwnerUUID uuid.UUID

		OriginalFilename string
		StoredFilename   string
		Sha256Hash       string
		SizeBytes        uint64
		Description      string
		IsPublic         bool

		UploadTimestamp time.Time
	}
	Files []*File
)
