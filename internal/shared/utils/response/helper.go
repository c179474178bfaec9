package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tably/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errs interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errs,
	})
}

// Success writes the standard success envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// Error maps a service error onto the standard envelope using the
// apperrors taxonomy. Unknown errors become a 500 without leaking internals.
func Error(c *gin.Context, err error) {
	code := apperrors.HTTPStatus(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal server error"
	}
	RespondJSON(c, "error", code, message, nil, gin.H{"kind": apperrors.KindOf(err)})
}

// BindingError translates gin binding failures (go-playground/validator
// underneath) into per-field errors so clients see which rule failed.
func BindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   strings.ToLower(fe.Field()),
				Rule:    fe.Tag(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		RespondJSON(c, "error", http.StatusBadRequest, "invalid request body", nil, fields)
		return
	}
	RespondJSON(c, "error", http.StatusBadRequest, "invalid request body", nil, gin.H{"details": err.Error()})
}
