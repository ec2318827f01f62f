package tagoptions

import (
	"errors"
	"fmt"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/shockerli/cvt"
)

// Field names a form control.
type Field string

const (
	FieldEnabled            Field = "enabled"
	FieldInterval           Field = "interval"
	FieldChanged            Field = "changed"
	FieldRestored           Field = "restored"
	FieldFormat             Field = "format"
	FieldScaleMode          Field = "scaleMode"
	FieldRawLow             Field = "rawLow"
	FieldRawHigh            Field = "rawHigh"
	FieldScaledLow          Field = "scaledLow"
	FieldScaledHigh         Field = "scaledHigh"
	FieldDateTimeFormat     Field = "dateTimeFormat"
	FieldScaleReadFunction  Field = "scaleReadFunction"
	FieldScaleWriteFunction Field = "scaleWriteFunction"
	FieldScaleWriteParams   Field = "scaleWriteParams"
)

// Form errors.
var (
	ErrUnknownField  = errors.New("unknown field")
	ErrFieldDisabled = errors.New("field is disabled")
	ErrInvalidValue  = errors.New("invalid value")
)

type kind int

const (
	kindBool kind = iota
	kindInt
	kindFloat
	kindString
)

// fieldOrder is the order in which patches are applied, so that toggles
// run before the controls they enable.
var fieldOrder = []Field{
	FieldEnabled,
	FieldInterval,
	FieldChanged,
	FieldRestored,
	FieldFormat,
	FieldScaleMode,
	FieldRawLow,
	FieldRawHigh,
	FieldScaledLow,
	FieldScaledHigh,
	FieldDateTimeFormat,
	FieldScaleReadFunction,
	FieldScaleWriteFunction,
	FieldScaleWriteParams,
}

var boundFields = []Field{FieldRawLow, FieldRawHigh, FieldScaledLow, FieldScaledHigh}

// Control is one form input: its value, whether it is enabled, and the
// validators currently attached to it.
type Control struct {
	kind       kind
	value      any
	disabled   bool
	validators []Validator
	err        error
}

func (c *Control) validate() {
	c.err = nil
	for _, v := range c.validators {
		if err := v(c.value); err != nil {
			c.err = err
			return
		}
	}
}

// Listener runs after the value of a control changed.
type Listener func(f *Form, value any)

// Form is the editable view-model of the tag options. Validity is
// recomputed whenever a value, a validator or the enabled state changes.
// A Form is not safe for concurrent use.
type Form struct {
	controls  map[Field]*Control
	listeners map[Field][]Listener
}

// NewForm creates the form with its initial values: DAQ disabled, interval
// 60 s, no scaling.
func NewForm() *Form {
	f := &Form{
		controls:  make(map[Field]*Control, len(fieldOrder)),
		listeners: make(map[Field][]Listener),
	}
	f.add(FieldEnabled, kindBool, false)
	f.add(FieldInterval, kindInt, models.DefaultDaqInterval, Required, Min(0))
	f.add(FieldChanged, kindBool, false)
	f.add(FieldRestored, kindBool, false)
	f.add(FieldFormat, kindInt, nil, Min(0))
	f.add(FieldScaleMode, kindString, string(models.ScaleModeUndefined), KnownScaleMode)
	for _, b := range boundFields {
		f.add(b, kindFloat, nil)
	}
	f.add(FieldDateTimeFormat, kindString, nil)
	f.add(FieldScaleReadFunction, kindString, nil)
	f.add(FieldScaleWriteFunction, kindString, nil)
	f.add(FieldScaleWriteParams, kindString, nil)

	f.controls[FieldInterval].disabled = true
	f.controls[FieldChanged].disabled = true

	f.OnChange(FieldEnabled, func(f *Form, value any) {
		enabled, _ := cvt.BoolE(value)
		f.setDisabled(FieldInterval, !enabled)
		f.setDisabled(FieldChanged, !enabled)
	})
	f.OnChange(FieldScaleMode, func(f *Form, value any) {
		f.checkScaleMode(value)
	})
	f.OnChange(FieldScaleWriteFunction, func(f *Form, value any) {
		if isEmpty(value) {
			f.setValidators(FieldScaleWriteParams)
		} else {
			f.setValidators(FieldScaleWriteParams, ParamsJSON)
		}
	})
	return f
}

func (f *Form) add(field Field, k kind, value any, validators ...Validator) {
	c := &Control{kind: k, value: value, validators: validators}
	c.validate()
	f.controls[field] = c
}

// OnChange registers a listener for value changes of field.
func (f *Form) OnChange(field Field, l Listener) {
	f.listeners[field] = append(f.listeners[field], l)
}

// checkScaleMode makes the four bounds required for linear scaling and
// optional for any other mode.
func (f *Form) checkScaleMode(value any) {
	mode, _ := cvt.StringE(value)
	for _, b := range boundFields {
		if models.TagScaleMode(mode) == models.ScaleModeLinear {
			f.setValidators(b, Required)
		} else {
			f.setValidators(b)
		}
	}
}

func (f *Form) setValidators(field Field, validators ...Validator) {
	c := f.controls[field]
	c.validators = validators
	c.validate()
}

// IsRequired reports whether field currently rejects an empty value.
func (f *Form) IsRequired(field Field) bool {
	c, ok := f.controls[field]
	if !ok {
		return false
	}
	for _, v := range c.validators {
		if v(nil) == ErrRequired {
			return true
		}
	}
	return false
}

func (f *Form) setDisabled(field Field, disabled bool) {
	f.controls[field].disabled = disabled
}

// Disable turns a control off. Disabled controls keep their value and do
// not count for validity.
func (f *Form) Disable(field Field) {
	if c, ok := f.controls[field]; ok {
		c.disabled = true
	}
}

// Disabled reports whether field is disabled.
func (f *Form) Disabled(field Field) bool {
	c, ok := f.controls[field]
	return ok && c.disabled
}

// Value returns the raw value of field, including disabled controls.
func (f *Form) Value(field Field) any {
	if c, ok := f.controls[field]; ok {
		return c.value
	}
	return nil
}

// SetValue sets a value as the user would: disabled controls refuse it.
func (f *Form) SetValue(field Field, value any) error {
	return f.Patch(map[Field]any{field: value})
}

// Patch sets several values as the user would. Either every value is
// applied or none is.
func (f *Form) Patch(values map[Field]any) error {
	next := f.clone()
	if err := next.apply(values, true); err != nil {
		return err
	}
	f.controls = next.controls
	return nil
}

// seed applies reconciled values, ignoring the disabled state.
func (f *Form) seed(values map[Field]any) error {
	next := f.clone()
	if err := next.apply(values, false); err != nil {
		return err
	}
	f.controls = next.controls
	return nil
}

func (f *Form) apply(values map[Field]any, respectDisabled bool) error {
	for field := range values {
		if _, ok := f.controls[field]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}
	for _, field := range fieldOrder {
		raw, ok := values[field]
		if !ok {
			continue
		}
		c := f.controls[field]
		if respectDisabled && c.disabled {
			return fmt.Errorf("%w: %s", ErrFieldDisabled, field)
		}
		v, err := coerce(c.kind, raw)
		if err != nil {
			return fmt.Errorf("%w for %s: %v", ErrInvalidValue, field, err)
		}
		c.value = v
		c.validate()
		for _, l := range f.listeners[field] {
			l(f, v)
		}
	}
	return nil
}

func (f *Form) clone() *Form {
	next := &Form{
		controls:  make(map[Field]*Control, len(f.controls)),
		listeners: f.listeners,
	}
	for field, c := range f.controls {
		cc := *c
		next.controls[field] = &cc
	}
	return next
}

// Valid reports whether every enabled control passes its validators.
func (f *Form) Valid() bool {
	for _, c := range f.controls {
		if !c.disabled && c.err != nil {
			return false
		}
	}
	return true
}

// Errors returns the validation error of each invalid enabled control.
func (f *Form) Errors() map[Field]string {
	errs := make(map[Field]string)
	for field, c := range f.controls {
		if !c.disabled && c.err != nil {
			errs[field] = c.err.Error()
		}
	}
	return errs
}

// Values returns a copy of all raw values.
func (f *Form) Values() map[Field]any {
	values := make(map[Field]any, len(f.controls))
	for field, c := range f.controls {
		values[field] = c.value
	}
	return values
}

// DisabledFields lists the disabled controls in form order.
func (f *Form) DisabledFields() []Field {
	var out []Field
	for _, field := range fieldOrder {
		if f.controls[field].disabled {
			out = append(out, field)
		}
	}
	return out
}

// Bool returns the value of field as a bool; empty is false.
func (f *Form) Bool(field Field) bool {
	b, _ := cvt.BoolE(f.Value(field))
	return b
}

// Int returns the value of field as an int; empty is 0.
func (f *Form) Int(field Field) int {
	n, _ := cvt.IntE(f.Value(field))
	return n
}

// IntPtr returns the value of field, or nil when it is empty.
func (f *Form) IntPtr(field Field) *int {
	v := f.Value(field)
	if isEmpty(v) {
		return nil
	}
	n, err := cvt.IntE(v)
	if err != nil {
		return nil
	}
	return &n
}

// FloatPtr returns the value of field, or nil when it is empty.
func (f *Form) FloatPtr(field Field) *float64 {
	v := f.Value(field)
	if isEmpty(v) {
		return nil
	}
	n, err := cvt.Float64E(v)
	if err != nil {
		return nil
	}
	return &n
}

// String returns the value of field as a string; empty is "".
func (f *Form) String(field Field) string {
	v := f.Value(field)
	if v == nil {
		return ""
	}
	s, _ := cvt.StringE(v)
	return s
}

func coerce(k kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch k {
	case kindBool:
		return cvt.BoolE(v)
	case kindInt:
		if s, ok := v.(string); ok && s == "" {
			return nil, nil
		}
		return cvt.IntE(v)
	case kindFloat:
		if s, ok := v.(string); ok && s == "" {
			return nil, nil
		}
		return cvt.Float64E(v)
	default:
		return cvt.StringE(v)
	}
}
