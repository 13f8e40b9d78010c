package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/batting-order-system/internal/middleware"
)

var (
	ErrValidation = errors.New("invalid request data")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store error")
)

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// Store wraps a failed key-value or database operation.
func Store(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}

// FromBinding turns a gin bind failure into a short validation error naming
// the first offending field.
func FromBinding(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return Validation("%s failed %s", field, fe.Tag())
	}
	return Validation("malformed request body")
}

// Status maps an error to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error body. Client errors carry their own
// message; server errors are logged and answered with fallback only.
func Respond(c *gin.Context, err error, fallback string) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		middleware.Logger.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		middleware.Metrics.StoreErrors.Inc()
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
