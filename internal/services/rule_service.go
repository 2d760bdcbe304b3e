package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/models"
	"finsight/internal/rules"
)

// ruleService handles categorization rule management.
type ruleService struct {
	db *gorm.DB
}

// NewRuleService creates a new RuleServicer.
func NewRuleService(db *gorm.DB) RuleServicer {
	return &ruleService{db: db}
}

func (in RuleInput) normalized() RuleInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Subcategory = strings.TrimSpace(in.Subcategory)
	in.NewName = strings.TrimSpace(in.NewName)
	in.NewCategory = strings.TrimSpace(in.NewCategory)
	in.NewSubcategory = strings.TrimSpace(in.NewSubcategory)
	return in
}

func (in RuleInput) validate() error {
	if in.NewName == "" && in.NewCategory == "" && in.NewSubcategory == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "rule must set at least one of new_name, new_category or new_subcategory")
	}
	if in.Serial < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "serial must not be negative")
	}
	return nil
}

// CreateRule creates a rule for a user
func (s *ruleService) CreateRule(userID uint, input RuleInput) (*models.Rule, error) {
	input = input.normalized()
	if err := input.validate(); err != nil {
		return nil, err
	}

	rule := &models.Rule{
		UserID:         userID,
		Serial:         input.Serial,
		Name:           input.Name,
		Category:       input.Category,
		Subcategory:    input.Subcategory,
		NewName:        input.NewName,
		NewCategory:    input.NewCategory,
		NewSubcategory: input.NewSubcategory,
	}
	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetUserRules returns the user's rules in evaluation order. It always reads
// storage so an edit is visible to the next sync run.
func (s *ruleService) GetUserRules(ctx context.Context, userID uint) ([]models.Rule, error) {
	var list []models.Rule
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(rules.OrderClause).
		Find(&list).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return list, nil
}

// GetRuleByID retrieves a rule owned by the user
func (s *ruleService) GetRuleByID(userID, ruleID uint) (*models.Rule, error) {
	var rule models.Rule
	if err := s.db.Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateRule replaces the editable fields of a rule
func (s *ruleService) UpdateRule(userID, ruleID uint, input RuleInput) (*models.Rule, error) {
	input = input.normalized()
	if err := input.validate(); err != nil {
		return nil, err
	}

	rule, err := s.GetRuleByID(userID, ruleID)
	if err != nil {
		return nil, err
	}

	// Select every column so clearing a match field to "" is persisted.
	updates := map[string]interface{}{
		"serial":          input.Serial,
		"name":            input.Name,
		"category":        input.Category,
		"subcategory":     input.Subcategory,
		"new_name":        input.NewName,
		"new_category":    input.NewCategory,
		"new_subcategory": input.NewSubcategory,
	}
	if err := s.db.Model(rule).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetRuleByID(userID, ruleID)
}

// DeleteRule removes a rule. Transactions it already rewrote keep their values.
func (s *ruleService) DeleteRule(userID, ruleID uint) error {
	rule, err := s.GetRuleByID(userID, ruleID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
