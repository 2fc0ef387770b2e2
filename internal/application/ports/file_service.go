package ports

import (
	"context"
	"io"
	"mime/multipart"

	"file-share-api/internal/domain/file"
	"file-share-api/internal/domain/user"
)

type (
	UploadMeta struct {
		IsPublic    bool
		Description string
	}
	// Download couples the metadata record with a reader over the blob bytes.
	// The caller owns closing Content.
	Download struct {
		File    *file.File
		Content io.ReadCloser
		Size    int64
	}
)

type FileService interface {
	Upload(ctx context.Context, ownerUUID user.UUID, in *multipart.FileHeader, meta UploadMeta) (*file.File, error)
	Download(ctx context.Context, fileUUID file.UUID, requester file.Requester) (*Download, error)
	Delete(ctx context.Context, fileUUID file.UUID, requester file.Requester) error
	FindPublicFiles(ctx context.Context, page int) (file.Files, error)
	FindOwnedFiles(ctx context.Context, ownerUUID user.UUID, vis file.VisibilityFilter, page int) (file.Files, error)
}
