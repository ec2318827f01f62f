package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectData(t *testing.T) {
	p := NewProjectData()

	assert.Equal(t, ProjectVersion, p.Version)
	assert.Equal(t, ServerDeviceID, p.Server.ID)
	assert.NotNil(t, p.Server.Tags)
	assert.NotNil(t, p.Devices)
	assert.NotNil(t, p.Hmi.Views)
	assert.NotNil(t, p.Charts)
	assert.NotNil(t, p.Alarms)
	assert.NotNil(t, p.Texts)
	assert.NotNil(t, p.Plugin)
	assert.NotNil(t, p.Scripts)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"devices":{}`)
	assert.Contains(t, string(data), `"charts":[]`)
}

func TestProjectData_Normalize(t *testing.T) {
	var p ProjectData
	err := json.Unmarshal([]byte(`{"devices":{"d1":{"id":"d1","name":"plc"},"d2":null}}`), &p)
	require.NoError(t, err)

	p.Normalize()

	assert.Equal(t, ProjectVersion, p.Version)
	assert.True(t, p.Server.IsServer())
	require.Contains(t, p.Devices, "d1")
	assert.NotContains(t, p.Devices, "d2")
	assert.NotNil(t, p.Devices["d1"].Tags)
	assert.NotNil(t, p.Texts)
}

func TestProjectData_Device(t *testing.T) {
	p := NewProjectData()
	p.Devices["d1"] = &Device{ID: "d1", Tags: map[string]*Tag{}}

	d, ok := p.Device(ServerDeviceID)
	require.True(t, ok)
	assert.Same(t, &p.Server, d)

	d, ok = p.Device("d1")
	require.True(t, ok)
	assert.Equal(t, "d1", d.ID)

	_, ok = p.Device("missing")
	assert.False(t, ok)
}

func TestProjectData_Apply(t *testing.T) {
	tests := []struct {
		name    string
		cmd     ProjectDataCmdType
		payload string
		wantErr bool
		check   func(t *testing.T, p *ProjectData)
	}{
		{
			name:    "set device",
			cmd:     CmdSetDevice,
			payload: `{"id":"d1","name":"PLC-1","type":"SiemensS7"}`,
			check: func(t *testing.T, p *ProjectData) {
				require.Contains(t, p.Devices, "d1")
				assert.Equal(t, "PLC-1", p.Devices["d1"].Name)
				assert.NotNil(t, p.Devices["d1"].Tags)
			},
		},
		{
			name:    "set server device replaces server",
			cmd:     CmdSetDevice,
			payload: `{"id":"0","name":"Server","tags":{"t1":{"id":"t1","name":"tag"}}}`,
			check: func(t *testing.T, p *ProjectData) {
				assert.Equal(t, "Server", p.Server.Name)
				assert.Contains(t, p.Server.Tags, "t1")
				assert.NotContains(t, p.Devices, ServerDeviceID)
			},
		},
		{
			name:    "delete device",
			cmd:     CmdDelDevice,
			payload: `{"id":"existing"}`,
			check: func(t *testing.T, p *ProjectData) {
				assert.NotContains(t, p.Devices, "existing")
			},
		},
		{
			name:    "delete server device is rejected",
			cmd:     CmdDelDevice,
			payload: `{"id":"0"}`,
			wantErr: true,
		},
		{
			name:    "set view appends then replaces",
			cmd:     CmdSetView,
			payload: `{"id":"v2","name":"Second"}`,
			check: func(t *testing.T, p *ProjectData) {
				require.Len(t, p.Hmi.Views, 2)
				assert.Equal(t, "Second", p.Hmi.Views[1].Name)
			},
		},
		{
			name:    "set view replaces existing",
			cmd:     CmdSetView,
			payload: `{"id":"v1","name":"Renamed"}`,
			check: func(t *testing.T, p *ProjectData) {
				require.Len(t, p.Hmi.Views, 1)
				assert.Equal(t, "Renamed", p.Hmi.Views[0].Name)
			},
		},
		{
			name:    "delete view",
			cmd:     CmdDelView,
			payload: `{"id":"v1"}`,
			check: func(t *testing.T, p *ProjectData) {
				assert.Empty(t, p.Hmi.Views)
			},
		},
		{
			name:    "layout",
			cmd:     CmdHmiLayout,
			payload: `{"start":"v1","navbar":true}`,
			check: func(t *testing.T, p *ProjectData) {
				assert.Equal(t, "v1", p.Hmi.Layout.Start)
				assert.True(t, p.Hmi.Layout.NavBar)
			},
		},
		{
			name:    "charts null becomes empty",
			cmd:     CmdCharts,
			payload: `null`,
			check: func(t *testing.T, p *ProjectData) {
				assert.NotNil(t, p.Charts)
				assert.Empty(t, p.Charts)
			},
		},
		{
			name:    "set and delete text",
			cmd:     CmdSetText,
			payload: `{"name":"greeting","value":"hi"}`,
			check: func(t *testing.T, p *ProjectData) {
				require.Len(t, p.Texts, 1)
				require.NoError(t, p.Apply(CmdDelText, json.RawMessage(`{"name":"greeting"}`)))
				assert.Empty(t, p.Texts)
			},
		},
		{
			name:    "set alarm replaces by name",
			cmd:     CmdSetAlarm,
			payload: `{"name":"overheat","property":{"variableId":"t2"}}`,
			check: func(t *testing.T, p *ProjectData) {
				require.Len(t, p.Alarms, 1)
				assert.Equal(t, "t2", p.Alarms[0].Property.VariableID)
			},
		},
		{
			name:    "delete alarm",
			cmd:     CmdDelAlarm,
			payload: `{"name":"overheat"}`,
			check: func(t *testing.T, p *ProjectData) {
				assert.Empty(t, p.Alarms)
			},
		},
		{
			name:    "empty payload",
			cmd:     CmdSetText,
			payload: ``,
			wantErr: true,
		},
		{
			name:    "invalid json",
			cmd:     CmdCharts,
			payload: `{"id":`,
			wantErr: true,
		},
		{
			name:    "unknown command",
			cmd:     "set-unknown",
			payload: `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProjectData()
			p.Devices["existing"] = &Device{ID: "existing", Tags: map[string]*Tag{}}
			p.Hmi.Views = append(p.Hmi.Views, View{ID: "v1", Name: "Main"})
			p.Alarms = append(p.Alarms, Alarm{Name: "overheat", Property: AlarmProperty{VariableID: "t1"}})

			err := p.Apply(tt.cmd, json.RawMessage(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestProjectData_ApplyUnknownCommand(t *testing.T) {
	p := NewProjectData()
	err := p.Apply("bogus", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestTagOption_ApplyTo(t *testing.T) {
	format := 2
	low, high := 0.0, 100.0
	opt := &TagOption{
		Daq:                TagDaq{Enabled: true, Interval: 30},
		Format:             &format,
		Scale:              &TagScale{Mode: ScaleModeLinear, RawLow: &low, RawHigh: &high, ScaledLow: &low, ScaledHigh: &high},
		ScaleReadFunction:  "s1",
		ScaleReadParams:    `[{"name":"gain","type":"value","value":2}]`,
		ScaleWriteFunction: "",
	}
	tag := &Tag{ID: "t1", ScaleWriteFunction: "old", ScaleWriteParams: "[]"}

	opt.ApplyTo(tag)

	require.NotNil(t, tag.Daq)
	assert.Equal(t, 30, tag.Daq.Interval)
	assert.Equal(t, 2, *tag.Format)
	require.NotNil(t, tag.Scale)
	assert.NotSame(t, opt.Scale, tag.Scale)
	assert.Equal(t, "s1", tag.ScaleReadFunction)
	assert.Empty(t, tag.ScaleWriteFunction)
	assert.Empty(t, tag.ScaleWriteParams)

	other := &Tag{ID: "t2"}
	opt.ApplyTo(other)
	assert.NotSame(t, tag.Format, other.Format)
	assert.NotSame(t, tag.Scale.RawHigh, other.Scale.RawHigh)
	*tag.Format = 5
	*tag.Scale.RawHigh = 50
	assert.Equal(t, 2, *other.Format)
	assert.Equal(t, 100.0, *other.Scale.RawHigh)
	assert.Equal(t, 2, format)

	opt.Scale = nil
	opt.Format = nil
	opt.ApplyTo(tag)
	assert.Nil(t, tag.Scale)
	assert.Nil(t, tag.Format)
}
