package serverutils

import (
	"fmt"
	"strings"
	"sync"

	"context-generator-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
			name := strings.TrimSpace(fl.Field().String())
			return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
		})
	})
	return validate
}

// ValidateRequest runs struct tag validation and returns an input error that
// names every failing field.
func ValidateRequest(req interface{}) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Wrap(apperror.KindInput, "validate", err, "invalid request")
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return apperror.New(apperror.KindInput, "validate", strings.Join(messages, "; "))
}
