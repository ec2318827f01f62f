package testutil

import "github.com/hmi-editor/backend/internal/models"

// LinearScript returns a server script usable for scaling with two extra
// parameters, gain and offset. Gain defaults to 1; offset has no default.
func LinearScript(id string) models.Script {
	return models.Script{
		ID:   id,
		Name: "scale_" + id,
		Mode: models.ScriptModeServer,
		Parameters: []models.ScriptParam{
			{Name: models.ScriptValueParam, Type: models.ScriptParamValue},
			{Name: "gain", Type: models.ScriptParamValue, Value: 1.0},
			{Name: "offset", Type: models.ScriptParamValue},
		},
	}
}

// ValueOnlyScript returns a scaling script without user parameters.
func ValueOnlyScript(id string) models.Script {
	return models.Script{
		ID:   id,
		Name: "convert_" + id,
		Mode: models.ScriptModeServer,
		Parameters: []models.ScriptParam{
			{Name: models.ScriptValueParam, Type: models.ScriptParamValue},
		},
	}
}

// ClientScript returns a script that runs in the browser and cannot scale.
func ClientScript(id string) models.Script {
	s := LinearScript(id)
	s.Mode = models.ScriptModeClient
	return s
}

// TagIDScript returns a server script whose extra parameter is a tag id,
// which makes it unusable for scaling.
func TagIDScript(id string) models.Script {
	s := LinearScript(id)
	s.Parameters[2].Type = models.ScriptParamTagID
	return s
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}

// Int returns a pointer to n.
func Int(n int) *int {
	return &n
}

// DaqTag returns a tag with the given DAQ settings.
func DaqTag(id string, enabled bool, interval int) *models.Tag {
	return &models.Tag{
		ID:   id,
		Name: "tag_" + id,
		Daq:  &models.TagDaq{Enabled: enabled, Interval: interval},
	}
}

// SampleProject returns a project with one PLC device holding two tags
// and a mix of scripts.
func SampleProject() *models.ProjectData {
	p := models.NewProjectData()
	p.Devices["plc1"] = &models.Device{
		ID:      "plc1",
		Name:    "PLC 1",
		Type:    models.DeviceTypeS7,
		Enabled: true,
		Tags: map[string]*models.Tag{
			"t1": DaqTag("t1", true, 60),
			"t2": DaqTag("t2", true, 120),
		},
	}
	p.Server.Tags["st1"] = DaqTag("st1", false, 60)
	p.Scripts = []models.Script{
		LinearScript("s1"),
		ValueOnlyScript("s2"),
		ClientScript("c1"),
		TagIDScript("x1"),
	}
	return p
}
