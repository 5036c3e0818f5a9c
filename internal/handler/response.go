package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"

	"bananaledger/internal/domain"
	"bananaledger/internal/generator"
	"bananaledger/internal/ledger"
	"bananaledger/internal/logger"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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
func MapDomainError(err error) (status int, code, msg string) {
	var rle *generator.RateLimitError
	var unprocessable *domain.UnprocessableError
	var invalid *ledger.ValidationError

	// Rate limits wrap ErrExternalService, so they are matched first.
	switch {
	case errors.As(err, &rle):
		return http.StatusTooManyRequests, "RATE_LIMITED", "generation providers are rate limited; retry later"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf"
	case errors.Is(err, domain.ErrEmptyDocument):
		return http.StatusBadRequest, "EMPTY_DOCUMENT", "document is empty"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrEmptyCorrection):
		return http.StatusBadRequest, "EMPTY_CORRECTION", "correct_output must not be empty"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.Is(err, domain.ErrGeneratorTimeout):
		return http.StatusGatewayTimeout, "GENERATOR_TIMEOUT", "ledger generation timed out"
	case errors.Is(err, domain.ErrExternalService):
		return http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR", "ledger generation failed"
	case errors.As(err, &unprocessable):
		return http.StatusUnprocessableEntity, "UNPROCESSABLE_OUTPUT", unprocessable.Error()
	case errors.Is(err, domain.ErrUnprocessableOutput):
		return http.StatusUnprocessableEntity, "UNPROCESSABLE_OUTPUT", err.Error()
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, "INVALID_LEDGER", invalid.Error()
	case errors.Is(err, domain.ErrErrorDocument):
		return http.StatusUnprocessableEntity, "ERROR_DOCUMENT", "the model returned an error document; nothing to export"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)

	var rle *generator.RateLimitError
	if errors.As(err, &rle) && rle.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())))
	}

	if status >= 500 {
		log := logger.FromContext(c.Request.Context(), zlog.Logger)
		log.Error().Err(err).Str("code", code).Msg("handler.HandleError: request failed")
	}
	RespondError(c, status, code, msg)
}
