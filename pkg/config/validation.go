package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the configuration against the struct validation tags.
//
// Cross-field constraints that depend on the selected backend (for
// example, a badger path when the badger backend is chosen) are not
// checked here; OpenStore reports those at construction time.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("invalid configuration: %w", verrs)
		}
		return err
	}
	return nil
}
