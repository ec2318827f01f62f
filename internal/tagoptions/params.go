package tagoptions

import (
	"encoding/json"

	"github.com/hmi-editor/backend/internal/models"
)

// DecodeParams decodes a stored parameter list. Malformed JSON and an
// empty string are treated as no stored list.
func DecodeParams(raw string) ([]models.ScriptParam, bool) {
	if raw == "" {
		return nil, false
	}
	var params []models.ScriptParam
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, false
	}
	if params == nil {
		return nil, false
	}
	return params, true
}

// EncodeParams serializes a parameter list the way it is stored on a tag.
func EncodeParams(params []models.ScriptParam) (string, error) {
	if params == nil {
		params = make([]models.ScriptParam, 0)
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParamsMatch reports whether a stored parameter list still fits the
// signature of s. The names are compared as sets against the script
// parameters after the first one; order does not matter.
func ParamsMatch(s models.Script, params []models.ScriptParam) bool {
	if len(s.Parameters) == 0 || len(params) != len(s.Parameters)-1 {
		return false
	}
	stored := make(map[string]struct{}, len(params))
	for _, p := range params {
		stored[p.Name] = struct{}{}
	}
	if len(stored) != len(params) {
		return false
	}
	for _, p := range s.Parameters[1:] {
		if _, ok := stored[p.Name]; !ok {
			return false
		}
	}
	return true
}

// resolveParams picks the working parameter list for s: the stored list
// when it decodes and matches the script, the script defaults otherwise.
// The second result is false when the stored list was discarded.
func resolveParams(s models.Script, raw string) ([]models.ScriptParam, bool) {
	stored, ok := DecodeParams(raw)
	if !ok || !ParamsMatch(s, stored) {
		return DefaultParams(s), false
	}
	byName := make(map[string]models.ScriptParam, len(s.Parameters))
	for _, p := range s.Parameters[1:] {
		byName[p.Name] = p
	}
	params := make([]models.ScriptParam, 0, len(stored))
	for _, p := range stored {
		params = append(params, models.ScriptParam{
			Name:  p.Name,
			Type:  byName[p.Name].Type,
			Value: p.Value,
		})
	}
	return params, true
}

// isEmpty reports whether v counts as "no value": nil or the empty string.
// Zero and false are values.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case *string:
		return x == nil || *x == ""
	}
	return false
}

func paramsIncomplete(params []models.ScriptParam) bool {
	for _, p := range params {
		if isEmpty(p.Value) {
			return true
		}
	}
	return false
}

func cloneParams(params []models.ScriptParam) []models.ScriptParam {
	if params == nil {
		return nil
	}
	out := make([]models.ScriptParam, len(params))
	copy(out, params)
	return out
}
