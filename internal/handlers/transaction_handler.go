package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"

	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// GetUserTransactions handles the retrieval of all transactions for the authenticated user
// @Summary     Get user transactions
// @Description Get a paginated list of synced transactions with optional filters. Rows marked for deletion are hidden unless include_marked is set.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page           query int    false "Page number (default 1)"
// @Param       page_size      query int    false "Items per page (default 20, max 100)"
// @Param       account_id     query int    false "Filter by account ID"
// @Param       from_date      query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date        query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       category       query string false "Filter by effective category"
// @Param       search         query string false "Case-insensitive substring of the name"
// @Param       min_amount     query string false "Minimum amount (decimal)"
// @Param       max_amount     query string false "Maximum amount (decimal)"
// @Param       include_marked query bool   false "Include rows marked for deletion"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type transactionCSVRow struct {
	Date        string `csv:"date"`
	Name        string `csv:"name"`
	Category    string `csv:"category"`
	Subcategory string `csv:"subcategory"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	AccountID   uint   `csv:"account_id"`
	Pending     bool   `csv:"pending"`
	MarkDelete  bool   `csv:"mark_delete"`
}

func toCSVRows(transactions []models.Transaction) []*transactionCSVRow {
	rows := make([]*transactionCSVRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, &transactionCSVRow{
			Date:        tx.Date.Format(time.DateOnly),
			Name:        tx.Name,
			Category:    tx.Category,
			Subcategory: tx.Subcategory,
			Amount:      tx.Amount.StringFixed(2),
			Currency:    tx.IsoCurrencyCode,
			AccountID:   tx.AccountID,
			Pending:     tx.Pending,
			MarkDelete:  tx.MarkDelete,
		})
	}
	return rows
}

// ExportTransactions streams the user's filtered transactions as CSV
// @Summary     Export transactions as CSV
// @Description Export every transaction matching the filters, oldest first. Accepts the same filters as the list endpoint.
// @Tags        transactions
// @Produce     text/csv
// @Security    BearerAuth
// @Param       account_id     query int    false "Filter by account ID"
// @Param       from_date      query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date        query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       category       query string false "Filter by effective category"
// @Param       search         query string false "Case-insensitive substring of the name"
// @Param       include_marked query bool   false "Include rows marked for deletion"
// @Success     200 {string} string "CSV document"
// @Failure     400 {object} ErrorResponse "Invalid input or too many rows"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.ExportTransactions(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%d.csv"`, userID))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := gocsv.MarshalCSV(toCSVRows(transactions), gocsv.NewSafeCSVWriter(w)); err != nil {
		// Headers are already sent.
		logger.Get().Errorw("CSV export failed", "user_id", userID, "rows", len(transactions), "error", err)
	}
	w.Flush()
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("account_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account_id")
		}
		acctID := uint(id)
		filter.AccountID = &acctID
	}

	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}

	var err error
	if filter.MinAmount, err = parseOptionalDecimal("min_amount", c.Query("min_amount")); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = parseOptionalDecimal("max_amount", c.Query("max_amount")); err != nil {
		return filter, err
	}

	if v := c.Query("include_marked"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid include_marked")
		}
		filter.IncludeMarked = b
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransactionRequest represents a manual edit. Omitted fields are unchanged.
type UpdateTransactionRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Category    *string `json:"category" binding:"omitempty,max=255"`
	Subcategory *string `json:"subcategory" binding:"omitempty,max=255"`
	Date        *string `json:"date"`
}

// UpdateTransaction applies a manual edit. Edited rows keep their values on later syncs.
// @Summary     Update transaction
// @Description Manually edit a transaction's name, category, subcategory or date. The row is flagged so later syncs do not overwrite the edit.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.TransactionUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	}
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		update.Date = &parsed
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, txID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Category != nil {
		changes["category"] = *req.Category
	}
	if req.Subcategory != nil {
		changes["subcategory"] = *req.Subcategory
	}
	if update.Date != nil {
		changes["date"] = update.Date.Format("2006-01-02")
	}
	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", txID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// MarkDeleteRequest toggles the soft-hide flag. A missing body marks the row.
type MarkDeleteRequest struct {
	MarkDelete *bool `json:"mark_delete"`
}

// MarkDelete hides a transaction from listings and summaries without deleting it.
// @Summary     Mark transaction for deletion
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true  "Transaction ID"
// @Param       request body MarkDeleteRequest false "Flag value (default true)"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/mark-delete [post]
func (h *TransactionHandler) MarkDelete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	mark := true
	if c.Request.ContentLength != 0 {
		var req MarkDeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		if req.MarkDelete != nil {
			mark = *req.MarkDelete
		}
	}

	transaction, err := h.transactionService.SetMarkDelete(userID, txID, mark)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "MARK_DELETE_TRANSACTION", "transaction", txID, c.ClientIP(), map[string]interface{}{
		"mark_delete": mark,
	})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}
