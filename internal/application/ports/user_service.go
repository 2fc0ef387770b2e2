package ports

import (
	"context"

	"file-share-api/internal/domain/user"
)

type UserService interface {
	Register(ctx context.Context, username, password string) (*user.User, error)
	FindUserByUUID(ctx context.Context, uuid user.UUID) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	// DeleteUser removes the user together with every owned file record and
	// blob, as one logical cascade.
	DeleteUser(ctx context.Context, uuid user.UUID) error
}
