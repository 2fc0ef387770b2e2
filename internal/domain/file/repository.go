package file

import (
	"context"

	"file-share-api/internal/domain/user"
)

type Repository interface {
	// CreateFile inserts the metadata row. Returns ErrStoredNameConflict on a
	// storage-token collision and ErrOwnerNotFound on a dangling owner id.
	CreateFile(ctx context.Context, ownerID user.ID, req *File) (*File, error)
	FetchFileByUUID(ctx context.Context, uuid UUID) (*File, error)
	FetchPublicFiles(ctx context.Context, page int) (Files, error)
	FetchOwnedFiles(ctx context.Context, ownerID user.ID, vis VisibilityFilter, page int) (Files, error)
	// DeleteFile removes the row only; blob cleanup is the caller's job.
	DeleteFile(ctx context.Context, uuid UUID) error
	DeleteOwnedFiles(ctx context.Context, ownerID user.ID) (Files, error)
}
