package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/services"
)

// RuleHandler handles categorization rule requests.
type RuleHandler struct {
	ruleService  services.RuleServicer
	auditService services.AuditServicer
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService services.RuleServicer, auditService services.AuditServicer) *RuleHandler {
	return &RuleHandler{ruleService: ruleService, auditService: auditService}
}

// RuleRequest is the payload for creating or replacing a rule. Match fields
// are case-insensitive substrings; empty ones match anything.
type RuleRequest struct {
	Serial         int    `json:"serial" binding:"gte=0"`
	Name           string `json:"name" binding:"max=255"`
	Category       string `json:"category" binding:"max=255"`
	Subcategory    string `json:"subcategory" binding:"max=255"`
	NewName        string `json:"new_name" binding:"max=255"`
	NewCategory    string `json:"new_category" binding:"max=255"`
	NewSubcategory string `json:"new_subcategory" binding:"max=255"`
}

func (r RuleRequest) input() services.RuleInput {
	return services.RuleInput{
		Serial:         r.Serial,
		Name:           r.Name,
		Category:       r.Category,
		Subcategory:    r.Subcategory,
		NewName:        r.NewName,
		NewCategory:    r.NewCategory,
		NewSubcategory: r.NewSubcategory,
	}
}

// CreateRule handles rule creation
// @Summary     Create a rule
// @Description Create a categorization rule applied to transactions at sync time
// @Tags        rules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RuleRequest true "Rule"
// @Success     201 {object} models.Rule "Created rule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.ruleService.CreateRule(userID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RULE", "rule", rule.ID, c.ClientIP(), map[string]interface{}{
		"serial":       rule.Serial,
		"new_category": rule.NewCategory,
	})

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetUserRules lists the caller's rules in evaluation order
// @Summary     List rules
// @Tags        rules
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Rule "Rules ordered by serial"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules [get]
func (h *RuleHandler) GetUserRules(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rules, err := h.ruleService.GetUserRules(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// GetRuleByID returns a single rule
// @Summary     Get rule by ID
// @Tags        rules
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Success     200 {object} models.Rule "Rule"
// @Failure     400 {object} ErrorResponse "Invalid rule ID"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Router      /rules/{id} [get]
func (h *RuleHandler) GetRuleByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.ruleService.GetRuleByID(userID, ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// UpdateRule replaces a rule's fields
// @Summary     Update rule
// @Tags        rules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Param       request body RuleRequest true "Rule"
// @Success     200 {object} models.Rule "Updated rule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Router      /rules/{id} [put]
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.ruleService.UpdateRule(userID, ruleID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_RULE", "rule", rule.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// DeleteRule removes a rule. Transactions it already rewrote keep their values.
// @Summary     Delete rule
// @Tags        rules
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Router      /rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ruleService.DeleteRule(userID, ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RULE", "rule", ruleID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
