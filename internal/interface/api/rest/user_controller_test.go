// user_controller_test.go
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"file-share-api/internal/application/ports"
	domain "file-share-api/internal/domain/user"
	jwtSvc "file-share-api/internal/infrastructure/jwt"
	"file-share-api/internal/interface/api/rest/middleware"
)

type FakeUserService struct {
	RegisterFunc       func(ctx context.Context, username, password string) (*domain.User, error)
	FindUserByUUIDFunc func(ctx context.Context, uuid domain.UUID) (*domain.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
	DeleteUserFunc     func(ctx context.Context, uuid domain.UUID) error
}

func (f *FakeUserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if f.RegisterFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RegisterFunc(ctx, username, password)
}
func (f *FakeUserService) FindUserByUUID(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
	if f.FindUserByUUIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindUserByUUIDFunc(ctx, uuid)
}
func (f *FakeUserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if f.FindByUsernameFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindByUsernameFunc(ctx, username)
}
func (f *FakeUserService) DeleteUser(ctx context.Context, uuid domain.UUID) error {
	if f.DeleteUserFunc == nil {
		return errors.New("not used")
	}
	return f.DeleteUserFunc(ctx, uuid)
}

func SignJWT(secret, userID, username string, exp time.Duration) (string, error) {
	type Claims struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		jwtv5.RegisteredClaims
	}
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(exp)),
		},
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func bearerFor(t *testing.T, secret, userID string) map[string]string {
	t.Helper()
	tok, err := SignJWT(secret, userID, "alice", time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

func setupRouterUC(t *testing.T, us ports.UserService) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	secret := "test-secret"
	j := jwtSvc.New(secret)

	uc := &UserController{
		userService: us,
		logger:      zap.NewNop(),
	}

	r.GET("/users/:user_id", uc.GetUserHandler)
	r.DELETE("/users/:user_id", middleware.AuthMiddleware(j), uc.DeleteUserHandler)

	return r, secret
}

func doReq(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	case []byte:
		reader = bytes.NewReader(v)
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		if _, isStr := body.(string); !isStr {
			if _, isBytes := body.([]byte); !isBytes {
				req.Header.Set("Content-Type", "application/json")
			}
		}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestUserController_GetUserHandler(t *testing.T) {
	okID := uuid.New()

	tests := []struct {
		name       string
		userID     string
		mockUS     func() ports.UserService
		wantStatus int
		wantErr    string
	}{
		{
			name:       "400 invalid uuid",
			userID:     "not-uuid",
			mockUS:     func() ports.UserService { return &FakeUserService{} },
			wantStatus: http.StatusBadRequest,
			wantErr:    "user_id must be a valid UUID",
		},
		{
			name:   "500 service error",
			userID: okID.String(),
			mockUS: func() ports.UserService {
				return &FakeUserService{
					FindUserByUUIDFunc: func(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
						return nil, errors.New("db error")
					},
				}
			},
			wantStatus: http.StatusInternalServerError,
			wantErr:    "failed to get a user",
		},
		{
			name:   "404 not found",
			userID: okID.String(),
			mockUS: func() ports.UserService {
				return &FakeUserService{
					FindUserByUUIDFunc: func(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
						return nil, nil
					},
				}
			},
			wantStatus: http.StatusNotFound,
			wantErr:    "user not found",
		},
		{
			name:   "200 success",
			userID: okID.String(),
			mockUS: func() ports.UserService {
				return &FakeUserService{
					FindUserByUUIDFunc: func(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
						return &domain.User{UUID: okID, Username: "alice"}, nil
					},
				}
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r, _ := setupRouterUC(t, tt.mockUS())
			rr := doReq(t, r, http.MethodGet, "/users/"+tt.userID, nil, nil)
			require.Equal(t, tt.wantStatus, rr.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, resp["error"])
				return
			}
			assert.Equal(t, okID.String(), resp["uuid"])
			assert.Equal(t, "alice", resp["username"])
		})
	}
}

func TestUserController_DeleteUserHandler(t *testing.T) {
	okID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name       string
		userID     string
		headers    func(t *testing.T, secret string) map[string]string
		mockUS     func() ports.UserService
		wantStatus int
		wantErr    string
	}{
		{
			name:       "401 missing Authorization",
			userID:     okID.String(),
			headers:    func(t *testing.T, secret string) map[string]string { return nil },
			mockUS:     func() ports.UserService { return &FakeUserService{} },
			wantStatus: http.StatusUnauthorized,
			wantErr:    "missing Authorization header",
		},
		{
			name:   "401 bad signature",
			userID: okID.String(),
			headers: func(t *testing.T, secret string) map[string]string {
				return bearerFor(t, "other-secret", okID.String())
			},
			mockUS:     func() ports.UserService { return &FakeUserService{} },
			wantStatus: http.StatusUnauthorized,
			wantErr:    "invalid token",
		},
		{
			name:   "400 invalid uuid",
			userID: "not-uuid",
			headers: func(t *testing.T, secret string) map[string]string {
				return bearerFor(t, secret, okID.String())
			},
			mockUS:     func() ports.UserService { return &FakeUserService{} },
			wantStatus: http.StatusBadRequest,
			wantErr:    "user_id must be a valid UUID",
		},
		{
			name:   "403 deleting another account",
			userID: okID.String(),
			headers: func(t *testing.T, secret string) map[string]string {
				return bearerFor(t, secret, otherID.String())
			},
			mockUS:     func() ports.UserService { return &FakeUserService{} },
			wantStatus: http.StatusForbidden,
			wantErr:    "forbidden",
		},
		{
			name:   "500 service error",
			userID: okID.String(),
			headers: func(t *testing.T, secret string) map[string]string {
				return bearerFor(t, secret, okID.String())
			},
			mockUS: func() ports.UserService {
				return &FakeUserService{
					DeleteUserFunc: func(ctx context.Context, uuid domain.UUID) error {
						return errors.New("db error")
					},
				}
			},
			wantStatus: http.StatusInternalServerError,
			wantErr:    "failed to delete user",
		},
		{
			name:   "404 account already gone",
			userID: okID.String(),
			headers: func(t *testing.T, secret string) map[string]string {
				return bearerFor(t, secret, okID.String())
			},
			mockUS: func() ports.UserService {
				return &FakeUserService{
					DeleteUserFunc: func(ctx context.Context, uuid domain.UUID) error {
						return fmt.Errorf("no user with uuid %s: %w", uuid, domain.ErrNotFound)
					},
				}
			},
			wantStatus: http.StatusNotFound,
			wantErr:    "user not found",
		},
		{
			name:   "204 self delete",
			userID: okID.String(),
			headers: func(t *testing.T, secret string) map[string]string {
				return bearerFor(t, secret, okID.String())
			},
			mockUS: func() ports.UserService {
				return &FakeUserService{
					DeleteUserFunc: func(ctx context.Context, uuid domain.UUID) error {
						require.Equal(t, okID, uuid)
						return nil
					},
				}
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r, secret := setupRouterUC(t, tt.mockUS())
			rr := doReq(t, r, http.MethodDelete, "/users/"+tt.userID, nil, tt.headers(t, secret))
			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantErr != "" {
				var resp map[string]any
				_ = json.Unmarshal(rr.Body.Bytes(), &resp)
				assert.Equal(t, tt.wantErr, resp["error"])
			}
		})
	}
}
