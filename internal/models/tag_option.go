package models

// TagOption is the consolidated result of the tag options dialog. The
// params fields hold JSON-encoded []ScriptParam and are empty when no
// script is selected.
type TagOption struct {
	Daq                TagDaq    `json:"daq"`
	Format             *int      `json:"format"`
	Scale              *TagScale `json:"scale"`
	ScaleReadFunction  string    `json:"scaleReadFunction,omitempty"`
	ScaleReadParams    string    `json:"scaleReadParams,omitempty"`
	ScaleWriteFunction string    `json:"scaleWriteFunction,omitempty"`
	ScaleWriteParams   string    `json:"scaleWriteParams,omitempty"`
}

// ApplyTo writes the option onto a tag.
func (o *TagOption) ApplyTo(t *Tag) {
	daq := o.Daq
	t.Daq = &daq
	if o.Format != nil {
		f := *o.Format
		t.Format = &f
	} else {
		t.Format = nil
	}
	if o.Scale != nil {
		s := *o.Scale
		s.RawLow = copyFloat(s.RawLow)
		s.RawHigh = copyFloat(s.RawHigh)
		s.ScaledLow = copyFloat(s.ScaledLow)
		s.ScaledHigh = copyFloat(s.ScaledHigh)
		t.Scale = &s
	} else {
		t.Scale = nil
	}
	t.ScaleReadFunction = o.ScaleReadFunction
	t.ScaleReadParams = o.ScaleReadParams
	t.ScaleWriteFunction = o.ScaleWriteFunction
	t.ScaleWriteParams = o.ScaleWriteParams
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
