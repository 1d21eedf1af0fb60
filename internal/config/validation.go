package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	return &InvalidConfigError{
		Message: strings.Join(problems, "\n"),
		Hint:    "Adjust the listed settings in the config file or TOOLKIT_* variables",
	}
}

// describeFieldError renders "Recommend.Concurrency: must be <= 32 (got 64)".
func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")

	var rule string
	switch fe.Tag() {
	case "required":
		rule = "is required"
	case "min":
		rule = "must be >= " + fe.Param()
	case "max":
		rule = "must be <= " + fe.Param()
	case "gt":
		rule = "must be > " + fe.Param()
	case "oneof":
		rule = "must be one of: " + fe.Param()
	default:
		rule = "failed " + fe.Tag()
	}
	return fmt.Sprintf("%s: %s (got %v)", field, rule, fe.Value())
}
