package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
)

// PipelineKeyHeader carries the shared secret of machine callers (the syncer).
const PipelineKeyHeader = "X-API-Key"

// PipelineAuthMiddleware guards machine-to-machine endpoints. Any of apiKeys
// is accepted so a key can be rotated without downtime. With no keys the
// endpoints are disabled.
func PipelineAuthMiddleware(apiKeys ...string) gin.HandlerFunc {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(c *gin.Context) {
		if len(keys) == 0 {
			abortWithAppError(c, apperrors.ErrPipelineNotConfigured)
			return
		}

		presented := []byte(c.GetHeader(PipelineKeyHeader))
		matched := 0
		for _, k := range keys {
			// Compare against every key so timing does not reveal which one matched.
			matched |= subtle.ConstantTimeCompare(presented, k)
		}
		if matched != 1 {
			logger.Get().Warnw("Rejected pipeline request",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
				"key_present", len(presented) > 0,
			)
			abortWithAppError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
