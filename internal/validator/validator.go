// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"finsight/internal/models"
)

// YearMonthLayout is the accepted format for month query parameters.
const YearMonthLayout = "2006-01"

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("item_environment", validateItemEnvironment)
	_ = v.RegisterValidation("year_month", validateYearMonth)
}

func validateItemEnvironment(fl validator.FieldLevel) bool {
	switch models.ItemEnvironment(fl.Field().String()) {
	case models.ItemEnvironmentProduction, models.ItemEnvironmentSandbox:
		return true
	}
	return false
}

func validateYearMonth(fl validator.FieldLevel) bool {
	_, err := time.Parse(YearMonthLayout, fl.Field().String())
	return err == nil
}
