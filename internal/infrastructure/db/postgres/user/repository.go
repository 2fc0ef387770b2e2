package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"file-share-api/internal/domain/user"
	"file-share-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.Querier
}

func NewRepository(db postgres.Querier) user.Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchUserByUUID(ctx context.Context, uuid user.UUID) (*user.User, error) {
	u := new(User)
	err := r.db.QueryRow(ctx, SelectUserByUUID, uuid.String()).Scan(
		&u.ID,
		&u.UUID,
		&u.Username,
		&u.PasswordHash,

		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), err
}

func (r *Repository) FetchUserByUsername(ctx context.Context, username string) (*user.User, error) {
	u := new(User)
	err := r.db.QueryRow(ctx, SelectUserByUsername, username).Scan(
		&u.ID,
		&u.UUID,
		&u.Username,
		&u.PasswordHash,

		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), err
}

func (r *Repository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	u := new(User)

	err := r.db.QueryRow(
		ctx,
		InsertUser,
		req.Username, req.PasswordHash,
	).Scan(
		&u.ID,
		&u.UUID,
		&u.Username,
		&u.PasswordHash,

		&u.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, user.ErrUsernameAlreadyExists
		}
		return nil, err
	}

	return fromDBModel(u), err
}

func (r *Repository) FetchInternalID(ctx context.Context, uuid user.UUID) (user.ID, error) {
	var id uint64
	if err := r.db.QueryRow(ctx, SelectIdByUUID, uuid.String()).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("no user with uuid %s: %w", uuid.String(), user.ErrNotFound)
		}
		return 0, err
	}

	return user.ID(id), nil
}

func (r *Repository) DeleteUser(ctx context.Context, id user.ID) (*user.User, error) {
	u := new(User)
	err := r.db.QueryRow(ctx, DeleteUserByID, id).Scan(
		&u.ID,
		&u.UUID,
		&u.Username,
		&u.PasswordHash,

		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), err
}
