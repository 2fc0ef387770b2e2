package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		UUID             uuid.UUID `json:"uuid"`
		OwnerUUID        uuid.UUID `json:"owner_uuid"`
		OriginalFilename string    `json:"original_filename"`
		ContentDigest    string    `json:"sha256"`
		SizeBytes        uint64    `json:"size_bytes"`
		Description      string    `json:"description,omitempty"`
		IsPublic         bool      `json:"is_public"`
		CreatedAt        time.Time `json:"created_at"`
	}
	Files        []File
	ResponseData struct {
		Data Files `json:"data"`
	}
)
