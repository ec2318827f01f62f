// Package models contains the project schema edited by the HMI editor.
package models

// ProjectVersion is the schema version written into new projects.
const ProjectVersion = "1.00"

// ProjectData is the whole automation project as it is held in memory and
// serialized to disk.
type ProjectData struct {
	Version string             `json:"version" yaml:"version"`
	Server  Device             `json:"server" yaml:"server"`   // built-in server pseudo-device
	Hmi     Hmi                `json:"hmi" yaml:"hmi"`         // layout and views
	Devices map[string]*Device `json:"devices" yaml:"devices"` // keyed by device id
	Charts  []Chart            `json:"charts" yaml:"charts"`
	Alarms  []Alarm            `json:"alarms" yaml:"alarms"`
	Texts   []Text             `json:"texts" yaml:"texts"`
	Plugin  []Plugin           `json:"plugin" yaml:"plugin"`
	Scripts []Script           `json:"scripts" yaml:"scripts"`
}

// NewProjectData creates an empty project with the server device in place.
func NewProjectData() *ProjectData {
	p := &ProjectData{
		Version: ProjectVersion,
		Server:  *NewServerDevice(),
	}
	p.Normalize()
	return p
}

// Normalize replaces nil containers with empty ones. It is applied after
// decoding, since a stored project may omit any of its sections.
func (p *ProjectData) Normalize() {
	if p.Version == "" {
		p.Version = ProjectVersion
	}
	if p.Server.ID == "" {
		p.Server = *NewServerDevice()
	}
	if p.Server.Tags == nil {
		p.Server.Tags = make(map[string]*Tag)
	}
	if p.Devices == nil {
		p.Devices = make(map[string]*Device)
	}
	for id, d := range p.Devices {
		if d == nil {
			delete(p.Devices, id)
			continue
		}
		if d.Tags == nil {
			d.Tags = make(map[string]*Tag)
		}
	}
	if p.Hmi.Views == nil {
		p.Hmi.Views = make([]View, 0)
	}
	if p.Charts == nil {
		p.Charts = make([]Chart, 0)
	}
	if p.Alarms == nil {
		p.Alarms = make([]Alarm, 0)
	}
	if p.Texts == nil {
		p.Texts = make([]Text, 0)
	}
	if p.Plugin == nil {
		p.Plugin = make([]Plugin, 0)
	}
	if p.Scripts == nil {
		p.Scripts = make([]Script, 0)
	}
}

// Device returns the device with the given id. The server pseudo-device is
// found under ServerDeviceID.
func (p *ProjectData) Device(id string) (*Device, bool) {
	if id == p.Server.ID {
		return &p.Server, true
	}
	d, ok := p.Devices[id]
	return d, ok
}

// Plugin describes an installed device plugin.
type Plugin struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	Version string `json:"version" yaml:"version"`
	Current string `json:"current,omitempty" yaml:"current,omitempty"`
}

// Text is a translatable text entry.
type Text struct {
	Name  string `json:"name" yaml:"name"`
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
	Value string `json:"value" yaml:"value"`
}
