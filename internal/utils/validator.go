package utils

import (
	"reflect"
	"strings"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the struct validator with the service's custom rules.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with all custom rules registered.
func NewValidator() *Validator {
	validate := validator.New()
	registerCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks struct tags on s.
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("quiz_type", validateQuizType)
	validate.RegisterValidation("answer_option", validateAnswerOption)

	// Report json field names in validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuizType(fl validator.FieldLevel) bool {
	switch models.QuizType(fl.Field().String()) {
	case models.QuizSelfPaced, models.QuizLive:
		return true
	}
	return false
}

func validateAnswerOption(fl validator.FieldLevel) bool {
	return models.AnswerOption(fl.Field().String()).Valid()
}
