// Package handler holds the gin handlers of the admin API.
package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	appidentity "github.com/storeadmin/backend/internal/application/identity"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/logger"
	"github.com/storeadmin/backend/internal/interfaces/http/dto"
	"github.com/storeadmin/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// internalErrorMessage is shown for every backend failure; the cause is only logged
const internalErrorMessage = "Error Occurred.."

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessList sends a success response carrying the row count
func (h *BaseHandler) SuccessList(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, total))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, internalErrorMessage)
}

// BindError answers a failed ShouldBind. Validator errors become a 400
// with per-field details, anything else a plain bad request.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(err, middleware.GetRequestID(c)))
		return
	}
	h.BadRequest(c, "Invalid request body")
}

// HandleError maps domain errors onto the envelope. Other errors are
// logged on the request logger and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		statusCode := dto.GetHTTPStatus(code)
		if statusCode >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error(domainErr.Message, zap.Error(err))
		}
		h.Error(c, statusCode, code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	h.InternalError(c)
}

// principal returns the signed-in admin; Session guarantees it on protected routes
func (h *BaseHandler) principal(c *gin.Context) (appidentity.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Please sign in")
	}
	return p, ok
}

// openUpload turns a multipart file into an upload. The returned close
// function must be called once the upload is done.
func openUpload(fh *multipart.FileHeader) (shared.FileUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return shared.FileUpload{}, nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	return shared.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

// openUploads opens every file of a multipart field
func openUploads(files []*multipart.FileHeader) ([]shared.FileUpload, func(), error) {
	uploads := make([]shared.FileUpload, 0, len(files))
	closers := make([]func(), 0, len(files))
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	for _, fh := range files {
		upload, closeFn, err := openUpload(fh)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		uploads = append(uploads, upload)
		closers = append(closers, closeFn)
	}
	return uploads, closeAll, nil
}
