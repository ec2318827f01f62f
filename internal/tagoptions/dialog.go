package tagoptions

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Dialog errors.
var (
	ErrDialogClosed  = errors.New("dialog is closed")
	ErrInvalidForm   = errors.New("form is invalid")
	ErrUnknownScript = errors.New("unknown script")
	ErrUnknownParam  = errors.New("unknown script parameter")
)

// Subscription is a registration that can be released once.
type Subscription interface {
	Unsubscribe() error
}

// ScriptSource provides the project scripts and notifies when the project
// is reloaded.
type ScriptSource interface {
	GetScripts() []models.Script
	SubscribeLoad(fn func()) Subscription
}

// Side selects read or write scaling.
type Side string

const (
	SideRead  Side = "read"
	SideWrite Side = "write"
)

// Data is the selection the dialog is opened with.
type Data struct {
	Tags   []*models.Tag  `json:"tags"`
	Device *models.Device `json:"device,omitempty"`
}

// State is a snapshot of the dialog for rendering.
type State struct {
	Values      map[Field]any                   `json:"values"`
	Disabled    []Field                         `json:"disabled"`
	Required    []Field                         `json:"required"`
	Errors      map[Field]string                `json:"errors,omitempty"`
	Valid       bool                            `json:"valid"`
	Scripts     []models.Script                 `json:"scripts"`
	ReadParams  map[string][]models.ScriptParam `json:"readParams"`
	WriteParams map[string][]models.ScriptParam `json:"writeParams"`
}

// Dialog edits the DAQ and scaling options of a tag selection. It merges
// the selection into a single form, keeps per-script parameter lists for
// read and write scaling, and produces a TagOption on confirm.
type Dialog struct {
	mu          sync.Mutex
	source      ScriptSource
	sub         Subscription
	log         *logrus.Entry
	form        *Form
	scripts     []models.Script
	readParams  map[string][]models.ScriptParam
	writeParams map[string][]models.ScriptParam
	closed      bool
}

// Open builds the dialog for data: it loads the scaling scripts, seeds the
// form from the reconciled selection, and subscribes to project reloads.
func Open(source ScriptSource, data Data, log *logrus.Entry) (*Dialog, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	d := &Dialog{
		source:      source,
		log:         log,
		form:        NewForm(),
		readParams:  make(map[string][]models.ScriptParam),
		writeParams: make(map[string][]models.ScriptParam),
	}
	d.loadScripts(false)

	if len(data.Tags) > 0 {
		patch := Reconcile(data.Tags)
		d.restoreParams(SideRead, patch.ScaleReadFunction, patch.ScaleReadParams)
		if !d.restoreParams(SideWrite, patch.ScaleWriteFunction, patch.ScaleWriteParams) {
			patch.ScaleWriteParams = nil
		}
		if err := d.form.seed(patch.Values()); err != nil {
			return nil, fmt.Errorf("seeding form: %w", err)
		}
	}
	if data.Device.IsServer() {
		d.form.Disable(FieldScaleMode)
	}

	d.sub = source.SubscribeLoad(d.onProjectLoaded)
	return d, nil
}

func (d *Dialog) onProjectLoaded() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.loadScripts(true)
	d.log.Debugf("scripts reloaded, %d usable for scaling", len(d.scripts))
}

// loadScripts fetches the scaling scripts and rebuilds the default
// parameter lists. With keep set, lists that still match their script
// survive the reload.
func (d *Dialog) loadScripts(keep bool) {
	scripts := ScalingScripts(d.source.GetScripts())
	read := make(map[string][]models.ScriptParam, len(scripts))
	write := make(map[string][]models.ScriptParam, len(scripts))
	for _, s := range scripts {
		read[s.ID] = DefaultParams(s)
		write[s.ID] = DefaultParams(s)
		if !keep {
			continue
		}
		if old, ok := d.readParams[s.ID]; ok && ParamsMatch(s, old) {
			read[s.ID] = old
		}
		if old, ok := d.writeParams[s.ID]; ok && ParamsMatch(s, old) {
			write[s.ID] = old
		}
	}
	d.scripts = scripts
	d.readParams = read
	d.writeParams = write
}

// restoreParams replaces the defaults of the selected script with the
// stored list when it still matches the script signature.
func (d *Dialog) restoreParams(side Side, scriptID, raw *string) bool {
	if scriptID == nil || raw == nil {
		return false
	}
	s, ok := findScript(d.scripts, *scriptID)
	if !ok {
		return false
	}
	params, matched := resolveParams(s, *raw)
	if !matched {
		d.log.WithFields(logrus.Fields{"script": s.ID, "side": side}).
			Info("stored scaling parameters no longer match the script, using defaults")
		return false
	}
	d.params(side)[s.ID] = params
	return true
}

func (d *Dialog) params(side Side) map[string][]models.ScriptParam {
	if side == SideWrite {
		return d.writeParams
	}
	return d.readParams
}

// SetValue changes one form field.
func (d *Dialog) SetValue(field Field, value any) error {
	return d.Patch(map[Field]any{field: value})
}

// Patch changes several form fields at once.
func (d *Dialog) Patch(values map[Field]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDialogClosed
	}
	if err := d.form.Patch(values); err != nil {
		return err
	}
	for _, field := range []Field{FieldScaleReadFunction, FieldScaleWriteFunction} {
		if v, ok := values[field]; ok {
			d.log.Debugf("selected %s script %v", field, v)
		}
	}
	return nil
}

// SetParam sets the value of one parameter of a scaling script.
func (d *Dialog) SetParam(side Side, scriptID, name string, value any) error {
	return d.SetParams(side, scriptID, map[string]any{name: value})
}

// SetParams sets several parameter values of a scaling script at once.
func (d *Dialog) SetParams(side Side, scriptID string, values map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDialogClosed
	}
	if side != SideRead && side != SideWrite {
		return fmt.Errorf("%w: side %q", ErrInvalidValue, side)
	}
	list, ok := d.params(side)[scriptID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScript, scriptID)
	}
	next := cloneParams(list)
	for name, value := range values {
		idx := -1
		for i := range next {
			if next[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownParam, name)
		}
		next[idx].Value = value
	}
	d.params(side)[scriptID] = next
	return nil
}

// Params returns a copy of the configured parameters of a script.
func (d *Dialog) Params(side Side, scriptID string) ([]models.ScriptParam, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list, ok := d.params(side)[scriptID]
	return cloneParams(list), ok
}

// Scripts returns the scripts usable for scaling.
func (d *Dialog) Scripts() []models.Script {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Script, len(d.scripts))
	copy(out, d.scripts)
	return out
}

// Valid reports whether the dialog can be confirmed: the form is valid and
// every parameter of the selected read and write scripts has a value.
func (d *Dialog) Valid() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.valid()
}

func (d *Dialog) valid() bool {
	return d.form.Valid() && !d.paramsInvalid()
}

func (d *Dialog) paramsInvalid() bool {
	if fn := d.form.String(FieldScaleReadFunction); fn != "" && paramsIncomplete(d.readParams[fn]) {
		return true
	}
	if fn := d.form.String(FieldScaleWriteFunction); fn != "" && paramsIncomplete(d.writeParams[fn]) {
		return true
	}
	return false
}

// SelectedWriteScript returns the script chosen for write scaling.
func (d *Dialog) SelectedWriteScript() (models.Script, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return findScript(d.scripts, d.form.String(FieldScaleWriteFunction))
}

// State returns a snapshot of the dialog.
func (d *Dialog) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := State{
		Values:      d.form.Values(),
		Disabled:    d.form.DisabledFields(),
		Errors:      d.form.Errors(),
		Valid:       d.valid(),
		Scripts:     make([]models.Script, len(d.scripts)),
		ReadParams:  make(map[string][]models.ScriptParam, len(d.readParams)),
		WriteParams: make(map[string][]models.ScriptParam, len(d.writeParams)),
	}
	for _, field := range fieldOrder {
		if d.form.IsRequired(field) {
			st.Required = append(st.Required, field)
		}
	}
	copy(st.Scripts, d.scripts)
	for id, p := range d.readParams {
		st.ReadParams[id] = cloneParams(p)
	}
	for id, p := range d.writeParams {
		st.WriteParams[id] = cloneParams(p)
	}
	return st
}

// Confirm builds the consolidated option and closes the dialog.
func (d *Dialog) Confirm() (*models.TagOption, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrDialogClosed
	}
	if !d.valid() {
		d.mu.Unlock()
		return nil, ErrInvalidForm
	}
	opt, err := d.result()
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	sub := d.markClosed()
	d.mu.Unlock()

	d.release(sub)
	return opt, nil
}

func (d *Dialog) result() (*models.TagOption, error) {
	f := d.form
	opt := &models.TagOption{
		Daq: models.TagDaq{
			Enabled:  f.Bool(FieldEnabled),
			Changed:  f.Bool(FieldChanged),
			Interval: f.Int(FieldInterval),
			Restored: f.Bool(FieldRestored),
		},
		Format:             f.IntPtr(FieldFormat),
		ScaleReadFunction:  f.String(FieldScaleReadFunction),
		ScaleWriteFunction: f.String(FieldScaleWriteFunction),
	}
	if mode := models.TagScaleMode(f.String(FieldScaleMode)); mode != "" && mode != models.ScaleModeUndefined {
		opt.Scale = &models.TagScale{
			Mode:           mode,
			RawLow:         f.FloatPtr(FieldRawLow),
			RawHigh:        f.FloatPtr(FieldRawHigh),
			ScaledLow:      f.FloatPtr(FieldScaledLow),
			ScaledHigh:     f.FloatPtr(FieldScaledHigh),
			DateTimeFormat: f.String(FieldDateTimeFormat),
		}
	}
	var err error
	if params, ok := d.readParams[opt.ScaleReadFunction]; ok && opt.ScaleReadFunction != "" {
		if opt.ScaleReadParams, err = EncodeParams(params); err != nil {
			return nil, fmt.Errorf("encoding read params: %w", err)
		}
	}
	if params, ok := d.writeParams[opt.ScaleWriteFunction]; ok && opt.ScaleWriteFunction != "" {
		if opt.ScaleWriteParams, err = EncodeParams(params); err != nil {
			return nil, fmt.Errorf("encoding write params: %w", err)
		}
	}
	return opt, nil
}

// Cancel closes the dialog without a result.
func (d *Dialog) Cancel() {
	d.Close()
}

// Close releases the reload subscription. It is safe to call more than
// once; errors from an already released subscription are ignored.
func (d *Dialog) Close() {
	d.mu.Lock()
	sub := d.markClosed()
	d.mu.Unlock()

	d.release(sub)
}

// markClosed must be called with d.mu held.
func (d *Dialog) markClosed() Subscription {
	d.closed = true
	sub := d.sub
	d.sub = nil
	return sub
}

func (d *Dialog) release(sub Subscription) {
	if sub == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	if err := sub.Unsubscribe(); err != nil {
		d.log.Debugf("releasing reload subscription: %v", err)
	}
}

// Closed reports whether the dialog was confirmed, cancelled or closed.
func (d *Dialog) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
