package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Profile name pattern: must start with a letter, followed by letters,
// numbers, hyphens, and underscores
var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidationErrors represents a collection of validation errors
type ValidationErrors struct {
	Errors []string
}

// Error implements the error interface
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed with %d error(s): %s", len(ve.Errors), strings.Join(ve.Errors, "; "))
}

// Validate performs comprehensive validation on the Config
func Validate(cfg *Config) error {
	var errors []string

	if err := validate.Struct(&cfg.Server); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrs {
				errors = append(errors, fmt.Sprintf("server.%s failed '%s' validation", strings.ToLower(fieldErr.Field()), fieldErr.Tag()))
			}
		} else {
			errors = append(errors, err.Error())
		}
	}

	defaultCount := 0
	for name, profile := range cfg.Profiles {
		if !namePattern.MatchString(name) {
			errors = append(errors, fmt.Sprintf("profile '%s' - name is invalid. Must start with a letter and can contain letters, numbers, hyphens, and underscores", name))
		}

		if !isValidDriver(profile.Driver) {
			errors = append(errors, fmt.Sprintf("profile '%s' - unknown driver '%s'. Must be one of: %s", name, profile.Driver, driverList()))
		}

		if err := validate.Struct(profile); err != nil {
			if validationErrs, ok := err.(validator.ValidationErrors); ok {
				for _, fieldErr := range validationErrs {
					errors = append(errors, fmt.Sprintf("profile '%s' - field '%s' failed '%s' validation", name, strings.ToLower(fieldErr.Field()), fieldErr.Tag()))
				}
			} else {
				errors = append(errors, err.Error())
			}
		}

		if profile.Default {
			defaultCount++
		}
	}

	if len(cfg.Profiles) > 0 && defaultCount == 0 {
		errors = append(errors, "profiles require exactly one entry marked 'default: true'")
	}
	if defaultCount > 1 {
		errors = append(errors, fmt.Sprintf("only one profile may be marked default, found %d", defaultCount))
	}

	if len(errors) > 0 {
		return &ValidationErrors{Errors: errors}
	}
	return nil
}

func isValidDriver(d Driver) bool {
	for _, valid := range ValidDrivers() {
		if d == valid {
			return true
		}
	}
	return false
}

func driverList() string {
	drivers := ValidDrivers()
	parts := make([]string, len(drivers))
	for i, d := range drivers {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}
