package tagoptions

import (
	"github.com/google/go-cmp/cmp"
	"github.com/hmi-editor/backend/internal/models"
)

// merged accumulates one field across a multi-selection. The first value
// seen wins; any later different value makes the field inconsistent.
type merged[T any] struct {
	value    T
	seen     bool
	conflict bool
}

func (m *merged[T]) add(v T) {
	switch {
	case m.conflict:
	case !m.seen:
		m.value, m.seen = v, true
	case !cmp.Equal(m.value, v):
		m.conflict = true
	}
}

// get returns the merged value, and false when nothing was seen or the
// selection disagrees.
func (m *merged[T]) get() (T, bool) {
	return m.value, m.seen && !m.conflict
}

// ScaleBounds groups the scale fields that are shown together with the
// scale mode.
type ScaleBounds struct {
	RawLow         *float64 `json:"rawLow"`
	RawHigh        *float64 `json:"rawHigh"`
	ScaledLow      *float64 `json:"scaledLow"`
	ScaledHigh     *float64 `json:"scaledHigh"`
	DateTimeFormat string   `json:"dateTimeFormat,omitempty"`
}

// Patch is the result of reconciling a selection: only the fields every
// contributing tag agrees on are set.
type Patch struct {
	Enabled            *bool                `json:"enabled,omitempty"`
	Changed            *bool                `json:"changed,omitempty"`
	Restored           *bool                `json:"restored,omitempty"`
	Interval           *int                 `json:"interval,omitempty"`
	Format             *int                 `json:"format,omitempty"`
	ScaleMode          *models.TagScaleMode `json:"scaleMode,omitempty"`
	Bounds             *ScaleBounds         `json:"bounds,omitempty"`
	ScaleReadFunction  *string              `json:"scaleReadFunction,omitempty"`
	ScaleReadParams    *string              `json:"scaleReadParams,omitempty"`
	ScaleWriteFunction *string              `json:"scaleWriteFunction,omitempty"`
	ScaleWriteParams   *string              `json:"scaleWriteParams,omitempty"`
}

// Values converts the patch into form field values.
func (p Patch) Values() map[Field]any {
	values := make(map[Field]any)
	if p.Enabled != nil {
		values[FieldEnabled] = *p.Enabled
	}
	if p.Changed != nil {
		values[FieldChanged] = *p.Changed
	}
	if p.Restored != nil {
		values[FieldRestored] = *p.Restored
	}
	if p.Interval != nil {
		values[FieldInterval] = *p.Interval
	}
	if p.Format != nil {
		values[FieldFormat] = *p.Format
	}
	if p.ScaleMode != nil {
		values[FieldScaleMode] = string(*p.ScaleMode)
	}
	if p.Bounds != nil {
		values[FieldRawLow] = floatValue(p.Bounds.RawLow)
		values[FieldRawHigh] = floatValue(p.Bounds.RawHigh)
		values[FieldScaledLow] = floatValue(p.Bounds.ScaledLow)
		values[FieldScaledHigh] = floatValue(p.Bounds.ScaledHigh)
		if p.Bounds.DateTimeFormat != "" {
			values[FieldDateTimeFormat] = p.Bounds.DateTimeFormat
		}
	}
	if p.ScaleReadFunction != nil {
		values[FieldScaleReadFunction] = *p.ScaleReadFunction
	}
	if p.ScaleWriteFunction != nil {
		values[FieldScaleWriteFunction] = *p.ScaleWriteFunction
	}
	if p.ScaleWriteParams != nil {
		values[FieldScaleWriteParams] = *p.ScaleWriteParams
	}
	return values
}

// Reconcile folds the selected tags into one patch. Tags without a DAQ
// block do not take part. Empty strings and nil formats are never patched,
// so the corresponding controls keep their defaults.
func Reconcile(tags []*models.Tag) Patch {
	var (
		enabled, changed, restored merged[bool]
		interval                   merged[int]
		format                     merged[*int]
		mode                       merged[models.TagScaleMode]
		bounds                     merged[ScaleBounds]
		readFn, readParams         merged[string]
		writeFn, writeParams       merged[string]
	)

	for _, tag := range tags {
		if tag == nil || tag.Daq == nil {
			continue
		}
		enabled.add(tag.Daq.Enabled)
		changed.add(tag.Daq.Changed)
		restored.add(tag.Daq.Restored)
		interval.add(tag.Daq.Interval)
		format.add(tag.Format)

		m, b := scaleOf(tag)
		mode.add(m)
		bounds.add(b)

		readFn.add(tag.ScaleReadFunction)
		readParams.add(tag.ScaleReadParams)
		writeFn.add(tag.ScaleWriteFunction)
		writeParams.add(tag.ScaleWriteParams)
	}

	var p Patch
	if v, ok := enabled.get(); ok {
		p.Enabled = &v
	}
	if v, ok := changed.get(); ok {
		p.Changed = &v
	}
	if v, ok := restored.get(); ok {
		p.Restored = &v
	}
	if v, ok := interval.get(); ok {
		p.Interval = &v
	}
	if v, ok := format.get(); ok && v != nil {
		f := *v
		p.Format = &f
	}
	if m, ok := mode.get(); ok {
		p.ScaleMode = &m
		if b, ok := bounds.get(); ok {
			p.Bounds = &b
		}
	}
	p.ScaleReadFunction = nonEmpty(readFn)
	p.ScaleReadParams = nonEmpty(readParams)
	p.ScaleWriteFunction = nonEmpty(writeFn)
	p.ScaleWriteParams = nonEmpty(writeParams)
	return p
}

func scaleOf(tag *models.Tag) (models.TagScaleMode, ScaleBounds) {
	if tag.Scale == nil {
		return models.ScaleModeUndefined, ScaleBounds{}
	}
	mode := tag.Scale.Mode
	if mode == "" {
		mode = models.ScaleModeUndefined
	}
	return mode, ScaleBounds{
		RawLow:         tag.Scale.RawLow,
		RawHigh:        tag.Scale.RawHigh,
		ScaledLow:      tag.Scale.ScaledLow,
		ScaledHigh:     tag.Scale.ScaledHigh,
		DateTimeFormat: tag.Scale.DateTimeFormat,
	}
}

func nonEmpty(m merged[string]) *string {
	v, ok := m.get()
	if !ok || v == "" {
		return nil
	}
	return &v
}

func floatValue(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
