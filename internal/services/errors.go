package services

import (
	"errors"
	"fmt"
)

// MappingError signals that one marketplace record could not be translated
// into local models. Import passes record it and move on; it never aborts
// the surrounding batch.
type MappingError struct {
	SKU    string
	ASIN   string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("cannot map listing sku=%q asin=%q: %s", e.SKU, e.ASIN, e.Reason)
}

// IsMappingError reports whether err is a MappingError.
func IsMappingError(err error) bool {
	var me *MappingError
	return errors.As(err, &me)
}

// ConfigurationError signals that a channel is not set up for the requested
// operation, for example a manual channel asked to talk to the marketplace.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("channel misconfigured (%s): %s", e.Field, e.Reason)
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
