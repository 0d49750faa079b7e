package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators installs custom binding validators on gin's
// validator engine. Call once at startup before serving requests.
func RegisterValidators() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return engine.RegisterValidation("decimal", validateDecimal)
}

// validateDecimal accepts empty strings and anything shopspring/decimal
// can parse. Empty means "not set"; required is a separate tag.
func validateDecimal(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := decimal.NewFromString(value)
	return err == nil
}
