package user

import (
	"context"
	"errors"
)

var (
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrNotFound is returned by lookups that resolve a uuid to a row and
	// find none, so callers can treat repeated deletes as idempotent.
	ErrNotFound = errors.New("user not found")
)

type Repository interface {
	FetchUserByUUID(ctx context.Context, uuid UUID) (*User, error)
	FetchUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, req User) (*User, error)
	FetchInternalID(ctx context.Context, uuid UUID) (ID, error)
	DeleteUser(ctx context.Context, id ID) (*User, error)
}
