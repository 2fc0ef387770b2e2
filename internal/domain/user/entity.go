package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	ID   uint64
	UUID = uuid.UUID
	User struct {
		UUID         UUID
		Username     string
		PasswordHash *string

		CreatedAt time.Time
	}
	Users []*User
)
