package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/codecraftkids/codecraft-api/pkg/apperror"
	"github.com/codecraftkids/codecraft-api/pkg/response"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Internal causes are logged and replaced by a generic message.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := apperror.From(c.Errors.Last().Err)
		if appErr.Kind == apperror.KindInternal && logger != nil {
			logger.WithError(appErr.Err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"method":     c.Request.Method,
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error(c, appErr.Code, appErr.Message, appErr.Details)
	}
}
