package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finsight/internal/logger"
	"finsight/internal/services"
)

// PipelineHandler serves machine-to-machine endpoints guarded by an API key.
type PipelineHandler struct {
	syncService services.SyncServicer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(syncService services.SyncServicer) *PipelineHandler {
	return &PipelineHandler{syncService: syncService}
}

// SyncAllUsers runs a sync for every user with an active item
// @Summary     Sync all users (pipeline)
// @Description Reconcile every active item of every user. Per-user failures are counted, not returned.
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} services.SyncAllResult "Summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/sync [post]
func (h *PipelineHandler) SyncAllUsers(c *gin.Context) {
	result, err := h.syncService.SyncAllUsers(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("pipeline sync finished",
		"users", result.Users,
		"failed_users", result.FailedUsers,
		"duration", result.Duration,
	)

	c.JSON(http.StatusOK, gin.H{"sync": result})
}
