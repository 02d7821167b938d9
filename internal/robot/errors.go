package robot

import (
	"errors"
	"fmt"
)

// Assembly errors.
var (
	// ErrConfiguration indicates a missing or malformed required field.
	ErrConfiguration = errors.New("robot: configuration error")

	// ErrUnsupportedVariant indicates an unknown controller or learner selector.
	ErrUnsupportedVariant = errors.New("robot: unsupported variant")

	// ErrIncompatibleVariants indicates valid selectors that cannot be combined.
	ErrIncompatibleVariants = errors.New("robot: incompatible variants")
)

// ConfigError names the field that could not be read.
type ConfigError struct {
	Field   string
	Value   string
	Wrapped error
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Wrapped: err}
}

func (e *ConfigError) Error() string {
	switch {
	case e.Wrapped == nil:
		return fmt.Sprintf("%v: field %q is missing", ErrConfiguration, e.Field)
	case e.Value == "":
		return fmt.Sprintf("%v: field %q: %v", ErrConfiguration, e.Field, e.Wrapped)
	default:
		return fmt.Sprintf("%v: field %q has invalid value %q: %v", ErrConfiguration, e.Field, e.Value, e.Wrapped)
	}
}

func (e *ConfigError) Unwrap() []error {
	if e.Wrapped == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Wrapped}
}

// VariantError reports a selector that was refused. With is set for
// incompatible combinations and names the other side of the pair.
type VariantError struct {
	Kind     string
	Selector string
	With     string
	Wrapped  error
}

func Unsupported(kind, selector string) *VariantError {
	return &VariantError{Kind: kind, Selector: selector, Wrapped: ErrUnsupportedVariant}
}

func Incompatible(kind, selector, with string) *VariantError {
	return &VariantError{Kind: kind, Selector: selector, With: with, Wrapped: ErrIncompatibleVariants}
}

func (e *VariantError) Error() string {
	if e.With != "" {
		return fmt.Sprintf("robot brain: %s %q not supported for %q", e.Kind, e.Selector, e.With)
	}
	return fmt.Sprintf("robot brain: %s %q is not supported", e.Kind, e.Selector)
}

func (e *VariantError) Unwrap() error {
	return e.Wrapped
}
