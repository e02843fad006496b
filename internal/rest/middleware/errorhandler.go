package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
)

// ErrorHandler renders the first error attached to the gin context as our
// standard error envelope. Handlers call c.Error(err) and return; the
// status code is derived from the error marker.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors[0].Err
		status := ierr.HTTPStatusFromErr(err)

		if status >= 500 {
			log.Errorw("request failed",
				"path", c.Request.URL.Path,
				"status", status,
				"error", err,
			)
		}

		c.AbortWithStatusJSON(status, ierr.NewErrorResponse(err))
	}
}
