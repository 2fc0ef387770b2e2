package services

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"file-share-api/internal/application/ports"
	"file-share-api/internal/domain/file"
	domain "file-share-api/internal/domain/user"
	"file-share-api/internal/infrastructure/mq"
)

type UserService struct {
	userRepository domain.Repository
	fileRepository file.Repository
	blobs          ports.BlobStore
	mq             ports.RabbitMQ
	mCounter       *prometheus.CounterVec
	logger         *zap.Logger
}

func NewUserService(
	userRepository domain.Repository,
	fileRepository file.Repository,
	blobs ports.BlobStore,
	mq ports.RabbitMQ,
	mCounter *prometheus.CounterVec,
	logger *zap.Logger,
) ports.UserService {
	return &UserService{
		userRepository: userRepository,
		fileRepository: fileRepository,
		blobs:          blobs,
		mq:             mq,
		mCounter:       mCounter,
		logger:         logger,
	}
}

func (us *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	h := string(hash)
	u, err := us.userRepository.CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: &h,
	})
	if err != nil {
		return nil, err
	}

	if u != nil {
		us.mq.GetInputChan() <- mq.Event{
			Id:      uuid.New(),
			TS:      time.Now(),
			Action:  mq.ActionUserRegistered,
			UserID:  u.UUID.String(),
			Payload: map[string]string{"username": u.Username},
		}
	}

	us.mCounter.WithLabelValues("user_registered_total").Inc()

	return u, nil
}

func (us *UserService) FindUserByUUID(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (us *UserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return u, nil
}

// DeleteUser removes the user's file rows, then their blobs, then the user
// row. Rows go first so a concurrent download observes NotFound rather than a
// record whose blob has already vanished. Blob cleanup failures are logged
// and skipped: the rows are gone, so a retry could not find them anyway.
func (us *UserService) DeleteUser(ctx context.Context, userUUID domain.UUID) error {
	id, err := us.userRepository.FetchInternalID(ctx, userUUID)
	if err != nil {
		return err
	}

	deleted, err := us.fileRepository.DeleteOwnedFiles(ctx, id)
	if err != nil {
		return err
	}
	for _, f := range deleted {
		if err = us.blobs.Delete(ctx, f.StoredFilename); err != nil && !errors.Is(err, fs.ErrNotExist) {
			us.logger.Warn("orphaned blob after user delete",
				zap.String("stored_filename", f.StoredFilename),
				zap.Error(err),
			)
		}
	}

	u, err := us.userRepository.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if u != nil {
		us.mq.GetInputChan() <- mq.Event{
			Id:      uuid.New(),
			TS:      time.Now(),
			Action:  mq.ActionUserDeleted,
			UserID:  u.UUID.String(),
			Payload: map[string]string{"username": u.Username},
		}
	}

	us.mCounter.WithLabelValues("user_deleted_total").Inc()

	return nil
}
