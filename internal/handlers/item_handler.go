package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finsight/internal/services"
)

// ItemHandler handles linked item requests.
type ItemHandler struct {
	itemService  services.ItemServicer
	auditService services.AuditServicer
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(itemService services.ItemServicer, auditService services.AuditServicer) *ItemHandler {
	return &ItemHandler{itemService: itemService, auditService: auditService}
}

// GetUserItems lists the caller's linked items
// @Summary     List linked items
// @Tags        items
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Item "Linked items"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /items [get]
func (h *ItemHandler) GetUserItems(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	items, err := h.itemService.GetUserItems(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ArchiveItem stops an item from being synced. Its history is kept.
// @Summary     Archive linked item
// @Tags        items
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Item ID"
// @Success     200 {object} models.Item "Archived item"
// @Failure     400 {object} ErrorResponse "Invalid item ID"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     409 {object} ErrorResponse "Item already archived"
// @Router      /items/{id}/archive [post]
func (h *ItemHandler) ArchiveItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.itemService.ArchiveItem(userID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ARCHIVE_ITEM", "item", itemID, c.ClientIP(), map[string]interface{}{
		"plaid_item_id": item.PlaidItemID,
	})

	c.JSON(http.StatusOK, gin.H{"item": item})
}
