package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"fintrack/internal/authz"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
)

// getCaller extracts the authenticated caller from the Gin context.
// Returns ErrUnauthorized if not present.
func getCaller(c *gin.Context) (authz.Caller, error) {
	value, exists := c.Get(middleware.CallerKey)
	if !exists {
		return authz.Caller{}, apperrors.ErrUnauthorized
	}
	return value.(authz.Caller), nil
}

// parsePathID parses a uint path parameter.
// Returns ErrInvalidInput if the parameter is not a valid positive integer.
func parsePathID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return uint(id), nil
}

// respondSuccess writes a success envelope with the given payload.
func respondSuccess(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{
		"status":  "success",
		"data":    data,
		"message": message,
		"errors":  nil,
	})
}

// respondWithError writes an error envelope. If the error is an *AppError
// it uses the error's status code, message, and field detail. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		var fields interface{}
		if appErr.Fields != nil {
			fields = appErr.Fields
		}
		c.JSON(appErr.StatusCode, gin.H{
			"status":  "error",
			"data":    nil,
			"message": appErr.Message,
			"errors":  fields,
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"status":  "error",
		"data":    nil,
		"message": apperrors.ErrInternalServer.Message,
		"errors":  nil,
	})
}

// bindingError turns a request binding failure into a validation error
// with one entry per offending field.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
		return apperrors.WithFields(apperrors.ErrValidation, fields)
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Must be a valid email address."
	case "min":
		return "Must be at least " + fe.Param() + " characters."
	case "max":
		return "Must be at most " + fe.Param() + " characters."
	case "category_type":
		return "Must be 'income' or 'expense'."
	case "payment_method":
		return "Must be a valid payment method."
	case "entry_date":
		return "Invalid date format. Use YYYY-MM-DD or DD/MM/YYYY."
	case "gt":
		return "Must be greater than " + fe.Param() + "."
	default:
		return "Invalid value."
	}
}

// ErrorResponse represents an error response envelope.
type ErrorResponse struct {
	Status  string            `json:"status"`
	Data    interface{}       `json:"data"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// SuccessResponse represents a success response envelope.
type SuccessResponse struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors"`
}
