package tagoptions

import (
	"errors"
	"fmt"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/shockerli/cvt"
)

// Validation errors reported per control.
var (
	ErrRequired         = errors.New("required")
	ErrBelowMin         = errors.New("below minimum")
	ErrInvalidJSON      = errors.New("invalid json")
	ErrUnknownScaleMode = errors.New("unknown scale mode")
)

// Validator checks one control value and returns nil when it is valid.
type Validator func(value any) error

// Required rejects nil and empty string values.
func Required(value any) error {
	if isEmpty(value) {
		return ErrRequired
	}
	return nil
}

// Min rejects numbers below min. An empty value passes; combine with
// Required to reject it.
func Min(min float64) Validator {
	return func(value any) error {
		if isEmpty(value) {
			return nil
		}
		n, err := cvt.Float64E(value)
		if err != nil {
			return err
		}
		if n < min {
			return fmt.Errorf("%w %v", ErrBelowMin, min)
		}
		return nil
	}
}

// ParamsJSON accepts an empty value or a JSON-encoded parameter list.
func ParamsJSON(value any) error {
	if isEmpty(value) {
		return nil
	}
	s, err := cvt.StringE(value)
	if err != nil {
		return ErrInvalidJSON
	}
	if _, ok := DecodeParams(s); !ok {
		return ErrInvalidJSON
	}
	return nil
}

// KnownScaleMode accepts an empty value or one of the scale modes.
func KnownScaleMode(value any) error {
	if isEmpty(value) {
		return nil
	}
	s, err := cvt.StringE(value)
	if err != nil || !models.TagScaleMode(s).Valid() {
		return ErrUnknownScaleMode
	}
	return nil
}
