// Package tagoptions implements the tag options editor: the form that edits
// DAQ and scaling settings for one or more selected tags.
package tagoptions

import (
	"github.com/hmi-editor/backend/internal/models"
)

// IsScalingScript reports whether s can scale a tag value. Such a script
// runs on the server, takes the tag value as its first parameter named
// "value", and only has parameters of the value type.
func IsScalingScript(s models.Script) bool {
	if len(s.Parameters) == 0 || s.Mode != models.ScriptModeServer {
		return false
	}
	first := s.Parameters[0]
	if first.Name != models.ScriptValueParam || first.Type != models.ScriptParamValue {
		return false
	}
	for _, p := range s.Parameters {
		if p.Type != models.ScriptParamValue {
			return false
		}
	}
	return true
}

// ScalingScripts filters scripts down to those usable for scaling,
// keeping their order.
func ScalingScripts(scripts []models.Script) []models.Script {
	out := make([]models.Script, 0, len(scripts))
	for _, s := range scripts {
		if IsScalingScript(s) {
			out = append(out, s)
		}
	}
	return out
}

// DefaultParams returns the user-editable parameters of a scaling script
// with their default values. The first parameter carries the tag value and
// is skipped. The result is a fresh copy on every call.
func DefaultParams(s models.Script) []models.ScriptParam {
	params := make([]models.ScriptParam, 0, len(s.Parameters))
	for i := 1; i < len(s.Parameters); i++ {
		p := s.Parameters[i]
		params = append(params, models.ScriptParam{
			Name:  p.Name,
			Type:  p.Type,
			Value: p.Value,
		})
	}
	return params
}

func findScript(scripts []models.Script, id string) (models.Script, bool) {
	if id == "" {
		return models.Script{}, false
	}
	for _, s := range scripts {
		if s.ID == id {
			return s, true
		}
	}
	return models.Script{}, false
}
