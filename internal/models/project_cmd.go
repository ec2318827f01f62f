package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ProjectDataCmdType names an edit applied to a project.
type ProjectDataCmdType string

const (
	CmdSetDevice ProjectDataCmdType = "set-device"
	CmdDelDevice ProjectDataCmdType = "del-device"
	CmdSetView   ProjectDataCmdType = "set-view"
	CmdDelView   ProjectDataCmdType = "del-view"
	CmdHmiLayout ProjectDataCmdType = "layout"
	CmdCharts    ProjectDataCmdType = "charts"
	CmdSetText   ProjectDataCmdType = "set-text"
	CmdDelText   ProjectDataCmdType = "del-text"
	CmdSetAlarm  ProjectDataCmdType = "set-alarm"
	CmdDelAlarm  ProjectDataCmdType = "del-alarm"
)

// ErrUnknownCommand is returned by Apply for a command it does not handle.
var ErrUnknownCommand = errors.New("unknown project command")

// Apply decodes payload according to cmd and edits the project with it.
// Set commands replace an existing entry or append a new one; del commands
// remove the entry if present.
func (p *ProjectData) Apply(cmd ProjectDataCmdType, payload json.RawMessage) error {
	switch cmd {
	case CmdSetDevice, CmdDelDevice:
		var d Device
		if err := decodePayload(cmd, payload, &d); err != nil {
			return err
		}
		if d.ID == "" {
			return fmt.Errorf("%s: device id is required", cmd)
		}
		if cmd == CmdDelDevice {
			if d.ID == ServerDeviceID {
				return fmt.Errorf("%s: server device cannot be removed", cmd)
			}
			delete(p.Devices, d.ID)
			return nil
		}
		if d.Tags == nil {
			d.Tags = make(map[string]*Tag)
		}
		if d.ID == ServerDeviceID {
			p.Server = d
		} else {
			p.Devices[d.ID] = &d
		}
	case CmdSetView, CmdDelView:
		var v View
		if err := decodePayload(cmd, payload, &v); err != nil {
			return err
		}
		idx := -1
		for i := range p.Hmi.Views {
			if p.Hmi.Views[i].ID == v.ID {
				idx = i
				break
			}
		}
		switch {
		case cmd == CmdDelView && idx >= 0:
			p.Hmi.Views = append(p.Hmi.Views[:idx], p.Hmi.Views[idx+1:]...)
		case cmd == CmdSetView && idx >= 0:
			p.Hmi.Views[idx] = v
		case cmd == CmdSetView:
			p.Hmi.Views = append(p.Hmi.Views, v)
		}
	case CmdHmiLayout:
		var l LayoutSettings
		if err := decodePayload(cmd, payload, &l); err != nil {
			return err
		}
		p.Hmi.Layout = l
	case CmdCharts:
		var charts []Chart
		if err := decodePayload(cmd, payload, &charts); err != nil {
			return err
		}
		if charts == nil {
			charts = make([]Chart, 0)
		}
		p.Charts = charts
	case CmdSetText, CmdDelText:
		var t Text
		if err := decodePayload(cmd, payload, &t); err != nil {
			return err
		}
		idx := -1
		for i := range p.Texts {
			if p.Texts[i].Name == t.Name {
				idx = i
				break
			}
		}
		switch {
		case cmd == CmdDelText && idx >= 0:
			p.Texts = append(p.Texts[:idx], p.Texts[idx+1:]...)
		case cmd == CmdSetText && idx >= 0:
			p.Texts[idx] = t
		case cmd == CmdSetText:
			p.Texts = append(p.Texts, t)
		}
	case CmdSetAlarm, CmdDelAlarm:
		var a Alarm
		if err := decodePayload(cmd, payload, &a); err != nil {
			return err
		}
		idx := -1
		for i := range p.Alarms {
			if p.Alarms[i].Name == a.Name {
				idx = i
				break
			}
		}
		switch {
		case cmd == CmdDelAlarm && idx >= 0:
			p.Alarms = append(p.Alarms[:idx], p.Alarms[idx+1:]...)
		case cmd == CmdSetAlarm && idx >= 0:
			p.Alarms[idx] = a
		case cmd == CmdSetAlarm:
			p.Alarms = append(p.Alarms, a)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	return nil
}

func decodePayload(cmd ProjectDataCmdType, payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%s: empty payload", cmd)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%s: decoding payload: %w", cmd, err)
	}
	return nil
}
