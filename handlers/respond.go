package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"counselhub/services/scheduling"
	"counselhub/utils"
)

// statusFor maps engine error codes to transport statuses.
func statusFor(code string) int {
	switch code {
	case scheduling.CodeValidation:
		return http.StatusBadRequest
	case scheduling.CodeNotFound:
		return http.StatusNotFound
	case scheduling.CodeSlotConflict, scheduling.CodeDailyLimitReached,
		scheduling.CodeInvalidTransition, scheduling.CodeConcurrentUpdate:
		return http.StatusConflict
	case scheduling.CodeCancellationExpired, scheduling.CodeCancellationDisallowed:
		return http.StatusBadRequest
	case scheduling.CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError translates an engine error into a JSON response. Unknown
// errors are logged and masked as 500s.
func respondError(c *gin.Context, err error) {
	code := scheduling.CodeOf(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		utils.GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, status, "INTERNAL", "internal server error")
		return
	}
	message := err.Error()
	var se *scheduling.Error
	if errors.As(err, &se) {
		message = se.Message
	}
	utils.JSONError(c, status, code, message)
}
