package models

// ScriptMode tells where a script runs.
type ScriptMode string

const (
	ScriptModeClient ScriptMode = "CLIENT"
	ScriptModeServer ScriptMode = "SERVER"
)

// ScriptParamType is the kind of value bound to a script parameter.
type ScriptParamType string

const (
	ScriptParamTagID ScriptParamType = "tagid"
	ScriptParamValue ScriptParamType = "value"
	ScriptParamChart ScriptParamType = "chart"
)

// ScriptValueParam is the name of the first parameter of a scaling script,
// which receives the tag's own value.
const ScriptValueParam = "value"

// Script is a user script stored with the project.
type Script struct {
	ID         string        `json:"id" yaml:"id"`
	Name       string        `json:"name" yaml:"name"`
	Code       string        `json:"code,omitempty" yaml:"code,omitempty"`
	Mode       ScriptMode    `json:"mode" yaml:"mode"`
	Sync       bool          `json:"sync,omitempty" yaml:"sync,omitempty"`
	Parameters []ScriptParam `json:"parameters" yaml:"parameters"`
}

// ScriptParam is one parameter of a script. Value is nil when the parameter
// has no value assigned.
type ScriptParam struct {
	Name  string          `json:"name" yaml:"name"`
	Type  ScriptParamType `json:"type" yaml:"type"`
	Value any             `json:"value" yaml:"value"`
}
