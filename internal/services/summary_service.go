package services

import (
	"time"

	"finsight/internal/aggregate"
	apperrors "finsight/internal/errors"
)

// summaryService builds chart data from persisted transactions.
type summaryService struct {
	transactions TransactionServicer
	classifier   aggregate.Classifier
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(transactions TransactionServicer, classifier aggregate.Classifier) SummaryServicer {
	return &summaryService{transactions: transactions, classifier: classifier}
}

// GetMonthlySummary aggregates the user's transactions dated in [from, to).
// The aggregation is recomputed from storage on every call.
func (s *summaryService) GetMonthlySummary(userID uint, from, to time.Time) (*MonthlySummary, error) {
	if !from.Before(to) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must be before to")
	}

	transactions, err := s.transactions.GetTransactionsInRange(userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}

	months := aggregate.Monthly(transactions, s.classifier)
	return &MonthlySummary{
		From:   from.UTC(),
		To:     to.UTC(),
		Months: months,
		Totals: aggregate.MonthTotals(months),
	}, nil
}
