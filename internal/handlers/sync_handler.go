package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finsight/internal/events"
	"finsight/internal/services"
)

// SyncHandler triggers syncs and streams sync events.
type SyncHandler struct {
	syncService  services.SyncServicer
	hub          *events.Hub
	auditService services.AuditServicer
	heartbeat    time.Duration
}

// NewSyncHandler creates a new SyncHandler. heartbeat is the interval between
// keep-alive pings on the event stream.
func NewSyncHandler(syncService services.SyncServicer, hub *events.Hub, auditService services.AuditServicer, heartbeat time.Duration) *SyncHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &SyncHandler{syncService: syncService, hub: hub, auditService: auditService, heartbeat: heartbeat}
}

// SyncUser reconciles every active item of the caller against the feed
// @Summary     Sync linked items
// @Description Pull new, modified and removed transactions for every active item of the caller, then recompute net worth.
// @Tags        sync
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.UserSyncResult "Sync result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sync [post]
func (h *SyncHandler) SyncUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.syncService.SyncUser(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SYNC", "user", userID, c.ClientIP(), map[string]interface{}{
		"run_id":   result.RunID,
		"added":    result.Added,
		"modified": result.Modified,
		"removed":  result.Removed,
		"failed":   result.Failed,
	})

	c.JSON(http.StatusOK, gin.H{"sync": result})
}

// StreamEvents streams the caller's sync events as server-sent events
// @Summary     Sync event stream
// @Description Server-sent events named SYNC_HAPPENED, SYNC_COMPLETED and SYNC_ERROR, plus periodic ping events.
// @Tags        sync
// @Produce     text/event-stream
// @Security    BearerAuth
// @Success     200 {object} events.Event "Event stream"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /sync/events [get]
func (h *SyncHandler) StreamEvents(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sub := h.hub.Subscribe(userID)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.C:
			if !ok {
				return
			}
			c.SSEvent(string(e.Name), e)
		case t := <-ticker.C:
			c.SSEvent("ping", gin.H{"at": t.UTC()})
		}
		c.Writer.Flush()
	}
}
