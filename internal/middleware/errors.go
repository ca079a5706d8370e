package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "Internal Server Error"

// ErrorHandler renders the last error attached with c.Error once the handler
// chain has finished. Application errors keep their status and message;
// anything else is logged and hidden behind a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		ginErr := c.Errors.Last()
		status, body := renderError(c, ginErr)
		c.AbortWithStatusJSON(status, body)
	}
}

func renderError(c *gin.Context, ginErr *gin.Error) (int, any) {
	err := ginErr.Err

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, models.ValidationErrorResponse{Errors: validationMessages(validationErrs)}
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := appErr.Status()
		if status == http.StatusInternalServerError {
			logUnexpected(c, err)
			return status, models.NewAPIError(status, internalErrorMessage, models.ErrInternalServer)
		}
		if len(appErr.Errors) > 0 {
			return status, models.ValidationErrorResponse{Errors: appErr.Errors}
		}
		return status, models.NewAPIError(status, appErr.Message)
	}

	// malformed bodies and query strings
	if ginErr.IsType(gin.ErrorTypeBind) {
		return http.StatusBadRequest, models.NewAPIError(http.StatusBadRequest, err.Error(), models.ErrBadRequest)
	}

	logUnexpected(c, err)
	return http.StatusInternalServerError, models.NewAPIError(http.StatusInternalServerError, internalErrorMessage, models.ErrInternalServer)
}

func logUnexpected(c *gin.Context, err error) {
	log.WithFields(logrus.Fields{
		"request_id": c.GetString(ContextRequestID),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}).WithError(err).Error("Unhandled error")
}

func validationMessages(errs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		message := fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			message += "=" + fe.Param()
		}
		messages = append(messages, message)
	}
	return messages
}

// Recovery turns panics into the generic 500 payload
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		panicRecoveries.Inc()
		log.WithFields(logrus.Fields{
			"request_id": c.GetString(ContextRequestID),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"panic":      fmt.Sprintf("%v", recovered),
		}).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			models.NewAPIError(http.StatusInternalServerError, internalErrorMessage, models.ErrInternalServer))
	})
}

// UseJSONFieldNames makes validation messages name fields by their json or
// form tag instead of the Go field name
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})
}
