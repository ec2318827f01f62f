package tagoptions

import (
	"testing"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/hmi-editor/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsScalingScript(t *testing.T) {
	renamedFirst := testutil.LinearScript("r1")
	renamedFirst.Parameters[0].Name = "input"

	tests := []struct {
		name   string
		script models.Script
		want   bool
	}{
		{"server script with value params", testutil.LinearScript("s1"), true},
		{"value parameter only", testutil.ValueOnlyScript("s2"), true},
		{"client script", testutil.ClientScript("c1"), false},
		{"tag id parameter", testutil.TagIDScript("x1"), false},
		{"first parameter not named value", renamedFirst, false},
		{"no parameters", models.Script{ID: "e", Mode: models.ScriptModeServer}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsScalingScript(tt.script))
		})
	}
}

func TestScalingScripts(t *testing.T) {
	got := ScalingScripts(testutil.SampleProject().Scripts)

	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, "s2", got[1].ID)
	assert.Empty(t, ScalingScripts(nil))
}

func TestDefaultParams(t *testing.T) {
	s := testutil.LinearScript("s1")

	params := DefaultParams(s)

	require.Len(t, params, 2)
	assert.Equal(t, "gain", params[0].Name)
	assert.Equal(t, 1.0, params[0].Value)
	assert.Equal(t, "offset", params[1].Name)
	assert.Nil(t, params[1].Value)

	params[0].Value = 5.0
	assert.Equal(t, 1.0, s.Parameters[1].Value, "defaults must not alias the script")
	assert.Equal(t, 1.0, DefaultParams(s)[0].Value)

	assert.Empty(t, DefaultParams(testutil.ValueOnlyScript("s2")))
}
