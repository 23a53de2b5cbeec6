package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/propease/internal/allocation"
	billingdomain "github.com/smallbiznis/propease/internal/billing/domain"
	meterdomain "github.com/smallbiznis/propease/internal/meter/domain"
	propertydomain "github.com/smallbiznis/propease/internal/property/domain"
	readingdomain "github.com/smallbiznis/propease/internal/reading/domain"
	tenantdomain "github.com/smallbiznis/propease/internal/tenant/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isUnprocessableError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isPropertyValidationError(err),
		isMeterValidationError(err),
		isTenantValidationError(err),
		isReadingValidationError(err),
		isBillingValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, propertydomain.ErrCodeExists),
		errors.Is(err, meterdomain.ErrCodeExists),
		errors.Is(err, tenantdomain.ErrFlatExists),
		errors.Is(err, tenantdomain.ErrRemainderExists),
		errors.Is(err, tenantdomain.ErrAlreadyMovedOut),
		errors.Is(err, billingdomain.ErrAlreadyPaid):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, propertydomain.ErrNotFound),
		errors.Is(err, meterdomain.ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, billingdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// isUnprocessableError covers requests that are well-formed but cannot be
// computed: a period with no master readings, or inconsistent meter setup.
func isUnprocessableError(err error) bool {
	switch {
	case errors.Is(err, readingdomain.ErrNoMainReadings),
		errors.Is(err, readingdomain.ErrMissingMainReading),
		errors.Is(err, allocation.ErrUnknownMeter),
		errors.Is(err, allocation.ErrDuplicateRemainder):
		return true
	default:
		return false
	}
}

func isPropertyValidationError(err error) bool {
	switch {
	case errors.Is(err, propertydomain.ErrInvalidCode),
		errors.Is(err, propertydomain.ErrInvalidName),
		errors.Is(err, propertydomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isMeterValidationError(err error) bool {
	switch {
	case errors.Is(err, meterdomain.ErrInvalidProperty),
		errors.Is(err, meterdomain.ErrInvalidCode),
		errors.Is(err, meterdomain.ErrInvalidName),
		errors.Is(err, meterdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isTenantValidationError(err error) bool {
	switch {
	case errors.Is(err, tenantdomain.ErrInvalidProperty),
		errors.Is(err, tenantdomain.ErrInvalidMeter),
		errors.Is(err, tenantdomain.ErrInvalidFlatNumber),
		errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, tenantdomain.ErrInvalidOccupants),
		errors.Is(err, tenantdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isReadingValidationError(err error) bool {
	switch {
	case errors.Is(err, readingdomain.ErrInvalidProperty),
		errors.Is(err, readingdomain.ErrInvalidMeter),
		errors.Is(err, readingdomain.ErrInvalidTenant),
		errors.Is(err, readingdomain.ErrInvalidPeriod),
		errors.Is(err, readingdomain.ErrInvalidReading):
		return true
	default:
		return false
	}
}

func isBillingValidationError(err error) bool {
	switch {
	case errors.Is(err, billingdomain.ErrInvalidProperty),
		errors.Is(err, billingdomain.ErrInvalidID),
		errors.Is(err, billingdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog maps a request error to (type, code) labels for the
// access log line.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if asValidationErrors(err) != nil || isValidationError(err) {
		return "validation_error", validationErrorCode(err)
	}
	switch {
	case isConflictError(err):
		return "conflict", err.Error()
	case isNotFoundError(err):
		return "not_found", err.Error()
	case isUnprocessableError(err):
		return "unprocessable", err.Error()
	default:
		return "internal_error", ""
	}
}
