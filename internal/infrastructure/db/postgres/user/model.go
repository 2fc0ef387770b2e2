package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	ID   uint64
	User struct {
		ID           uint64
		UUID         uuid.UUID
		Username     string
		PasswordHash *string

		CreatedAt time.Time
	}
	Users []*User
)
