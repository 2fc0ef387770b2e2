package user

import (
	domain "file-share-api/internal/domain/user"
)

func fromDBModel(model *User) *domain.User {
	var u = &domain.User{
		UUID:         model.UUID,
		Username:     model.Username,
		PasswordHash: model.PasswordHash,

		CreatedAt: model.CreatedAt,
	}

	return u
}
