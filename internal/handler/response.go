package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"parseview/internal/domain"
	"parseview/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response. VendorStatus carries the
// parser vendor's HTTP status when the vendor rejected the request.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	VendorStatus int    `json:"vendor_status,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Validation messages carry the wrapped detail so the caller learns what to fix.
func MapDomainError(err error) (status int, code, msg string) {
	var vendorErr *domain.VendorError
	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", err.Error()
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error()
	case errors.Is(err, domain.ErrFileTooSmall):
		return http.StatusBadRequest, "FILE_TOO_SMALL", err.Error()
	case errors.Is(err, domain.ErrInvalidOption):
		return http.StatusBadRequest, "INVALID_OPTION", err.Error()
	case errors.Is(err, domain.ErrPageOutOfRange):
		return http.StatusBadRequest, "PAGE_OUT_OF_RANGE", err.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrSelectionOutOfRange):
		return http.StatusBadRequest, "SELECTION_OUT_OF_RANGE", err.Error()
	case errors.Is(err, domain.ErrInvalidSessionID):
		return http.StatusBadRequest, "INVALID_SESSION", "invalid session id"
	case errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound, "RESULT_NOT_FOUND", "no parse result for this session; upload a document first"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUploadInProgress):
		return http.StatusConflict, "UPLOAD_IN_PROGRESS", "an upload is already in progress for this session"
	case errors.As(err, &vendorErr):
		return http.StatusBadGateway, "VENDOR_ERROR", vendorErr.Error()
	case errors.Is(err, domain.ErrConfig):
		return http.StatusInternalServerError, "CONFIG_ERROR", "the service is misconfigured"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Str("session_id", middleware.GetSessionID(c)).
			Msg("handler: request failed")
	}
	apiErr := &APIError{Code: code, Message: msg}
	var vendorErr *domain.VendorError
	if errors.As(err, &vendorErr) {
		apiErr.VendorStatus = vendorErr.StatusCode
	}
	c.JSON(status, APIResponse{Success: false, Error: apiErr})
}
