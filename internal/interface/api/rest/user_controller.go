package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-share-api/internal/application/ports"
	domainUser "file-share-api/internal/domain/user"
	"file-share-api/internal/infrastructure/jwt"
	"file-share-api/internal/interface/api/rest/dto/user"
	"file-share-api/internal/interface/api/rest/middleware"
	"file-share-api/internal/interface/api/rest/validator"
)

type UserController struct {
	userService ports.UserService
	logger      *zap.Logger
}

func NewUserController(
	r *gin.Engine,
	userService ports.UserService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *UserController {
	uc := &UserController{
		userService: userService,
		logger:      logger,
	}

	r.GET(RouteUser, uc.GetUserHandler)
	r.DELETE(RouteUser, middleware.AuthMiddleware(jwtService), uc.DeleteUserHandler)

	return uc
}

func (uc *UserController) GetUserHandler(c *gin.Context) {
	ok, uuid := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	u, err := uc.userService.FindUserByUUID(c.Request.Context(), uuid)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to get a user"},
		)
		uc.logger.Error("FindUserByUUID() error", zap.Error(err))
		return
	}

	if u == nil {
		c.JSON(
			http.StatusNotFound,
			gin.H{"error": "user not found"},
		)
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u))
}

// DeleteUserHandler removes the account together with all of its files.
// Accounts can only delete themselves.
func (uc *UserController) DeleteUserHandler(c *gin.Context) {
	ok, uuid := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	requester, authed := middleware.RequesterFrom(c).UserUUID()
	if !authed || requester != uuid {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := uc.userService.DeleteUser(c.Request.Context(), uuid); err != nil {
		if errors.Is(err, domainUser.ErrNotFound) {
			c.JSON(
				http.StatusNotFound,
				gin.H{"error": "user not found"},
			)
			return
		}
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to delete user"},
		)
		uc.logger.Error("DeleteUser() error", zap.Error(err))
		return
	}

	c.Status(http.StatusNoContent)
}
