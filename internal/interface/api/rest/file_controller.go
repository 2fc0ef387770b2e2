package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-share-api/internal/application/ports"
	domainFile "file-share-api/internal/domain/file"
	"file-share-api/internal/infrastructure/jwt"
	"file-share-api/internal/interface/api/rest/dto/file"
	"file-share-api/internal/interface/api/rest/middleware"
	"file-share-api/internal/interface/api/rest/validator"
)

type FileController struct {
	fileService ports.FileService
	logger      *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	fileService ports.FileService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *FileController {
	fc := &FileController{
		fileService: fileService,
		logger:      logger,
	}

	r.GET(RouteFiles, fc.GetPublicFilesHandler)
	r.POST(RouteFiles, middleware.AuthMiddleware(jwtService), fc.UploadFileHandler)
	r.GET(RouteFileDownload, middleware.OptionalAuthMiddleware(jwtService), fc.DownloadFileHandler)
	r.DELETE(RouteFile, middleware.AuthMiddleware(jwtService), fc.DeleteFileHandler)
	r.GET(RouteUserFiles, middleware.AuthMiddleware(jwtService), fc.GetUserFilesHandler)

	return fc
}

func (fc *FileController) GetPublicFilesHandler(c *gin.Context) {
	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	files, err := fc.fileService.FindPublicFiles(c.Request.Context(), page)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to get files"},
		)
		fc.logger.Error("FindPublicFiles() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, file.ResponseData{
		Data: file.ToResponseFiles(files),
	})
}

func (fc *FileController) UploadFileHandler(c *gin.Context) {
	owner, ok := middleware.RequesterFrom(c).UserUUID()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	meta := ports.UploadMeta{
		IsPublic:    c.PostForm("visibility") == "public",
		Description: c.PostForm("description"),
	}

	out, err := fc.fileService.Upload(c.Request.Context(), owner, fh, meta)
	if err != nil {
		switch {
		case errors.Is(err, domainFile.ErrEmptyFilename),
			errors.Is(err, domainFile.ErrExtensionNotAllowed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domainFile.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, domainFile.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, retry later"})
			fc.logger.Error("Upload() storage error", zap.Error(err))
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file"})
			fc.logger.Error("Upload() error", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusCreated, file.ToResponseFile(*out))
}

func (fc *FileController) DownloadFileHandler(c *gin.Context) {
	ok, uuid := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return
	}

	dl, err := fc.fileService.Download(c.Request.Context(), uuid, middleware.RequesterFrom(c))
	if err != nil {
		fc.writeAccessError(c, err, "Download()")
		return
	}
	defer dl.Content.Close()

	c.DataFromReader(
		http.StatusOK,
		dl.Size,
		"application/octet-stream",
		dl.Content,
		map[string]string{
			"Content-Disposition": fmt.Sprintf("attachment; filename=%q", dl.File.OriginalFilename),
		},
	)
}

func (fc *FileController) DeleteFileHandler(c *gin.Context) {
	ok, uuid := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return
	}

	if err := fc.fileService.Delete(c.Request.Context(), uuid, middleware.RequesterFrom(c)); err != nil {
		fc.writeAccessError(c, err, "Delete()")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetUserFilesHandler lists files owned by :user_id. Owners can only list
// their own files, so a mismatched token is Forbidden regardless of what the
// target user owns.
func (fc *FileController) GetUserFilesHandler(c *gin.Context) {
	ok, uuid := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	vis, err := validator.ValidateVisibility(c.Query("visibility"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	requester, authed := middleware.RequesterFrom(c).UserUUID()
	if !authed || requester != uuid {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	files, err := fc.fileService.FindOwnedFiles(c.Request.Context(), uuid, vis, page)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to get files"},
		)
		fc.logger.Error("FindOwnedFiles() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, file.ResponseData{
		Data: file.ToResponseFiles(files),
	})
}

func (fc *FileController) writeAccessError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, domainFile.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	case errors.Is(err, domainFile.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, domainFile.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domainFile.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, retry later"})
		fc.logger.Error(op+" storage error", zap.Error(err))
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
		fc.logger.Error(op+" error", zap.Error(err))
	}
}
