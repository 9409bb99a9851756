package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/chrisdamba/foodwaste/internal/aggregate"
	"github.com/chrisdamba/foodwaste/internal/report"
	"github.com/chrisdamba/foodwaste/internal/source"
)

// APIError is the JSON error body of every failed request.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

func NewAPIError(statusCode int, code, message, details string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message, Details: details}
}

const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeTooLarge            = "PAYLOAD_TOO_LARGE"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// RespondWithError writes err and aborts the handler chain.
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{"error": err})
	c.Abort()
}

// errorFor maps a pipeline error to its API error. Problems with the
// uploaded data are the caller's fault; anything else is ours.
func errorFor(err error) *APIError {
	switch {
	case errors.Is(err, source.ErrMissingSheet),
		errors.Is(err, source.ErrMissingColumn),
		errors.Is(err, source.ErrEmptyInput),
		errors.Is(err, report.ErrMissingVenue):
		return NewAPIError(http.StatusBadRequest, ErrCodeBadRequest, "Input file is missing required data.", err.Error())
	case errors.Is(err, aggregate.ErrUnparseableValue),
		errors.Is(err, aggregate.ErrCategoryMismatch):
		return NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Input data failed validation.", err.Error())
	}
	return NewAPIError(http.StatusInternalServerError, ErrCodeInternalServerError, "Failed to generate report.", "Internal error")
}

func respondWithPipelineError(c *gin.Context, err error) {
	apiErr := errorFor(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("report generation failed")
	}
	_ = c.Error(err)
	RespondWithError(c, apiErr)
}
