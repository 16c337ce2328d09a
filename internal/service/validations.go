package service

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	errorvalues "github.com/limbo/studytrack/internal/error_values"
	"github.com/limbo/studytrack/pkg/entity"
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("alphanum_underscore", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			for i, char := range value {
				// Cannot be started with a digit or underscore
				if i == 0 && (unicode.IsDigit(char) || char == '_') {
					return false
				}
				// Digits, letters or underscore
				if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
					return false
				}
			}
			return true
		})
		validate.RegisterValidation("task_type", func(fl validator.FieldLevel) bool {
			return entity.TaskType(fl.Field().String()).Valid()
		})
		validate.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
			return entity.TaskStatus(fl.Field().String()).Valid()
		})
	})
}

// validateStruct runs struct tags and turns field failures into a ValidationError.
func validateStruct(s any) error {
	InitValidator()
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		reasons := make([]string, 0, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			reasons = append(reasons, fieldErr.Field()+" failed on "+fieldErr.Tag())
		}
		return errorvalues.NewValidationError(strings.Join(reasons, "; "))
	}
	return errors.New("validation unexpected error: " + err.Error())
}
