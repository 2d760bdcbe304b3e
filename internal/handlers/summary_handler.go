package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/services"
	"finsight/internal/validator"
)

// defaultSummaryMonths is the window used when from is omitted.
const defaultSummaryMonths = 12

// SummaryHandler serves the monthly category charts.
type SummaryHandler struct {
	summaryService services.SummaryServicer
	now            func() time.Time
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, now: time.Now}
}

// MonthlySummaryQuery selects an inclusive range of calendar months.
type MonthlySummaryQuery struct {
	From string `form:"from" binding:"omitempty,year_month"`
	To   string `form:"to" binding:"omitempty,year_month"`
}

// monthRange turns the query into a half-open [from, to) range in UTC. to
// defaults to the current month and from to the eleven months before it.
func (q MonthlySummaryQuery) monthRange(now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if q.To != "" {
		t, err := time.Parse(validator.YearMonthLayout, q.To)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		last = t
	}
	first := last.AddDate(0, -(defaultSummaryMonths - 1), 0)
	if q.From != "" {
		t, err := time.Parse(validator.YearMonthLayout, q.From)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		first = t
	}
	return first, last.AddDate(0, 1, 0), nil
}

// GetMonthlySummary returns cost and income totals per month, category and subcategory
// @Summary     Monthly category summary
// @Description Totals per month for cost and income categories. Income is reported as a negative number.
// @Tags        summaries
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "First month, YYYY-MM (default: 11 months before to)"
// @Param       to   query string false "Last month, YYYY-MM (default: current month)"
// @Success     200 {object} services.MonthlySummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /summaries/monthly [get]
func (h *SummaryHandler) GetMonthlySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q MonthlySummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from and to must be YYYY-MM"))
		return
	}

	from, to, err := q.monthRange(h.now())
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from and to must be YYYY-MM"))
		return
	}

	summary, err := h.summaryService.GetMonthlySummary(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
