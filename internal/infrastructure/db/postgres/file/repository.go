package file

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"file-share-api/internal/domain/file"
	"file-share-api/internal/domain/user"
	"file-share-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.Querier
}

func NewRepository(db postgres.Querier) file.Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateFile(ctx context.Context, ownerID user.ID, req *file.File) (*file.File, error) {
	f := new(File)

	err := r.db.QueryRow(
		ctx,
		InsertFile,
		ownerID, req.OriginalFilename, req.StoredFilename, req.ContentDigest, req.SizeBytes, req.Description, req.IsPublic,
	).Scan(
		&f.ID,
		&f.UUID,
		&f.OwnerUUID,

		&f.OriginalFilename,
		&f.StoredFilename,
		&f.Sha256Hash,
		&f.SizeBytes,
		&f.Description,
		&f.IsPublic,

		&f.UploadTimestamp,
	)
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, file.ErrStoredNameConflict
		}
		if postgres.IsPgForeignKeyViolation(err) {
			return nil, file.ErrOwnerNotFound
		}
		return nil, err
	}

	return fromDBModel(f), err
}

func (r *Repository) FetchFileByUUID(ctx context.Context, uuid file.UUID) (*file.File, error) {
	f := new(File)
	err := r.db.QueryRow(ctx, SelectFileByUUID, uuid.String()).Scan(
		&f.ID,
		&f.UUID,
		&f.OwnerUUID,

		&f.OriginalFilename,
		&f.StoredFilename,
		&f.Sha256Hash,
		&f.SizeBytes,
		&f.Description,
		&f.IsPublic,

		&f.UploadTimestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, file.ErrNotFound
		}
		return nil, err
	}

	return fromDBModel(f), err
}

func (r *Repository) FetchPublicFiles(ctx context.Context, page int) (file.Files, error) {
	rows, err := r.db.Query(ctx, SelectPublicFiles, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFiles(rows)
}

func (r *Repository) FetchOwnedFiles(ctx context.Context, ownerID user.ID, vis file.VisibilityFilter, page int) (file.Files, error) {
	var isPublic *bool
	switch vis {
	case file.VisibilityPublic:
		v := true
		isPublic = &v
	case file.VisibilityPrivate:
		v := false
		isPublic = &v
	}

	rows, err := r.db.Query(ctx, SelectOwnedFiles, ownerID, isPublic, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFiles(rows)
}

func (r *Repository) DeleteFile(ctx context.Context, uuid file.UUID) error {
	tag, err := r.db.Exec(ctx, DeleteFileByUUID, uuid.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return file.ErrNotFound
	}

	return nil
}

func (r *Repository) DeleteOwnedFiles(ctx context.Context, ownerID user.ID) (file.Files, error) {
	rows, err := r.db.Query(ctx, DeleteFilesByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFiles(rows)
}

func scanFiles(rows pgx.Rows) (file.Files, error) {
	var fs Files
	for rows.Next() {
		f := new(File)

		if err := rows.Scan(
			&f.ID,
			&f.UUID,
			&f.OwnerUUID,

			&f.OriginalFilename,
			&f.StoredFilename,
			&f.Sha256Hash,
			&f.SizeBytes,
			&f.Description,
			&f.IsPublic,

			&f.UploadTimestamp,
		); err != nil {
			return nil, err
		}

		fs = append(fs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&fs), nil
}
