package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-share-api/config"
	"file-share-api/internal/application/ports"
	domain "file-share-api/internal/domain/file"
	"file-share-api/internal/domain/user"
	"file-share-api/internal/infrastructure/mq"
	"file-share-api/internal/infrastructure/storage"
)

const (
	blobWriteTimeout = 15 * time.Second
	rollbackTimeout  = 5 * time.Second
)

type FileService struct {
	blobs          ports.BlobStore
	fileRepository domain.Repository
	userRepository user.Repository
	storageCfg     config.Storage
	mq             ports.RabbitMQ
	mCounter       *prometheus.CounterVec
	logger         *zap.Logger
}

func NewFileService(
	blobs ports.BlobStore,
	fileRepository domain.Repository,
	userRepository user.Repository,
	storageCfg config.Storage,
	mq ports.RabbitMQ,
	mCounter *prometheus.CounterVec,
	logger *zap.Logger,
) ports.FileService {
	return &FileService{
		blobs:          blobs,
		fileRepository: fileRepository,
		userRepository: userRepository,
		storageCfg:     storageCfg,
		mq:             mq,
		mCounter:       mCounter,
		logger:         logger,
	}
}

// Upload runs the ingestion pipeline: validate, name and digest, insert the
// metadata row, write the blob. The row goes in before the blob so the UNIQUE
// constraint on stored_filename arbitrates token races; a failed blob write
// compensates by deleting the just-created row, so neither an orphan record
// nor an orphan blob survives any failure.
func (fsvc *FileService) Upload(
	ctx context.Context,
	ownerUUID user.UUID,
	in *multipart.FileHeader,
	meta ports.UploadMeta,
) (*domain.File, error) {
	if err := fsvc.validateUpload(in); err != nil {
		return nil, err
	}

	data, err := readAll(in)
	if err != nil {
		return nil, err
	}

	id, err := fsvc.userRepository.FetchInternalID(ctx, ownerUUID)
	if err != nil {
		return nil, err
	}

	rec := &domain.File{
		OwnerUUID:        ownerUUID,
		OriginalFilename: sanitizeFileName(in.Filename),
		ContentDigest:    storage.ContentDigest(data),
		SizeBytes:        uint64(len(data)),
		Description:      meta.Description,
		IsPublic:         meta.IsPublic,
	}

	out, err := fsvc.createWithFreshToken(ctx, id, rec)
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithTimeout(ctx, blobWriteTimeout)
	defer cancel()
	if _, err = fsvc.blobs.Write(wctx, out.StoredFilename, bytes.NewReader(data)); err != nil {
		// The request context is often already dead here (client hung up
		// mid-write), so the compensation runs detached from it.
		rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer rcancel()
		if derr := fsvc.fileRepository.DeleteFile(rctx, out.UUID); derr != nil && !errors.Is(derr, domain.ErrNotFound) {
			fsvc.logger.Error("ingestion rollback failed, orphan record left",
				zap.Stringer("file_uuid", out.UUID),
				zap.Error(derr),
			)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	fsvc.mCounter.WithLabelValues("files_uploaded_total").Inc()
	fsvc.mq.GetInputChan() <- mq.Event{
		Id:      uuid.New(),
		TS:      time.Now(),
		Action:  mq.ActionFileUploaded,
		UserID:  ownerUUID.String(),
		Payload: map[string]any{"file_uuid": out.UUID.String(), "is_public": out.IsPublic},
	}

	return out, nil
}

func (fsvc *FileService) validateUpload(in *multipart.FileHeader) error {
	if in == nil || strings.TrimSpace(in.Filename) == "" {
		return domain.ErrEmptyFilename
	}
	if !fsvc.storageCfg.ExtensionAllowed(filepath.Ext(in.Filename)) {
		return domain.ErrExtensionNotAllowed
	}
	if max := fsvc.storageCfg.MaxUploadBytes; max > 0 && in.Size > max {
		return domain.ErrTooLarge
	}
	return nil
}

// createWithFreshToken inserts the row, retrying exactly once with a new
// token if the first one collides.
func (fsvc *FileService) createWithFreshToken(ctx context.Context, ownerID user.ID, rec *domain.File) (*domain.File, error) {
	rec.StoredFilename = storage.NewStorageToken()

	out, err := fsvc.fileRepository.CreateFile(ctx, ownerID, rec)
	if errors.Is(err, domain.ErrStoredNameConflict) {
		fsvc.logger.Warn("storage token collision, retrying", zap.String("stored_filename", rec.StoredFilename))
		rec.StoredFilename = storage.NewStorageToken()
		out, err = fsvc.fileRepository.CreateFile(ctx, ownerID, rec)
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Download resolves the record, applies the read policy and opens the blob.
// A blob missing underneath an existing record (lost race with a delete)
// degrades to ErrNotFound instead of surfacing a storage fault.
func (fsvc *FileService) Download(ctx context.Context, fileUUID domain.UUID, requester domain.Requester) (*ports.Download, error) {
	f, err := fsvc.fileRepository.FetchFileByUUID(ctx, fileUUID)
	if err != nil {
		return nil, err
	}

	if err = domain.Authorize(requester, f, domain.ActionRead); err != nil {
		fsvc.mCounter.WithLabelValues("downloads_denied_total").Inc()
		return nil, err
	}

	rc, size, err := fsvc.blobs.Open(ctx, f.StoredFilename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fsvc.logger.Warn("record without blob",
				zap.Stringer("file_uuid", f.UUID),
				zap.String("stored_filename", f.StoredFilename),
			)
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	fsvc.mCounter.WithLabelValues("files_downloaded_total").Inc()

	return &ports.Download{File: f, Content: rc, Size: size}, nil
}

// Delete resolves the record, applies the delete policy, then removes blob
// and row. The blob goes first: if its removal fails the row stays and the
// request is retryable. A blob that is already gone is idempotent cleanup,
// logged and ignored.
func (fsvc *FileService) Delete(ctx context.Context, fileUUID domain.UUID, requester domain.Requester) error {
	f, err := fsvc.fileRepository.FetchFileByUUID(ctx, fileUUID)
	if err != nil {
		return err
	}

	if err = domain.Authorize(requester, f, domain.ActionDelete); err != nil {
		fsvc.mCounter.WithLabelValues("deletes_denied_total").Inc()
		return err
	}

	if err = fsvc.blobs.Delete(ctx, f.StoredFilename); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		fsvc.logger.Warn("blob already absent on delete",
			zap.Stringer("file_uuid", f.UUID),
			zap.String("stored_filename", f.StoredFilename),
		)
	}

	if err = fsvc.fileRepository.DeleteFile(ctx, f.UUID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	fsvc.mCounter.WithLabelValues("files_deleted_total").Inc()
	ownerID := ""
	if uid, ok := requester.UserUUID(); ok {
		ownerID = uid.String()
	}
	fsvc.mq.GetInputChan() <- mq.Event{
		Id:      uuid.New(),
		TS:      time.Now(),
		Action:  mq.ActionFileDeleted,
		UserID:  ownerID,
		Payload: map[string]any{"file_uuid": f.UUID.String()},
	}

	return nil
}

func (fsvc *FileService) FindPublicFiles(ctx context.Context, page int) (domain.Files, error) {
	fls, err := fsvc.fileRepository.FetchPublicFiles(ctx, page)
	if err != nil {
		return nil, err
	}

	return fls, nil
}

func (fsvc *FileService) FindOwnedFiles(ctx context.Context, ownerUUID user.UUID, vis domain.VisibilityFilter, page int) (domain.Files, error) {
	id, err := fsvc.userRepository.FetchInternalID(ctx, ownerUUID)
	if err != nil {
		return nil, err
	}

	fls, err := fsvc.fileRepository.FetchOwnedFiles(ctx, id, vis, page)
	if err != nil {
		return nil, err
	}

	return fls, nil
}

func readAll(in *multipart.FileHeader) ([]byte, error) {
	f, err := in.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
