package models

// Hmi holds the editor layout and the views of a project.
type Hmi struct {
	Layout LayoutSettings `json:"layout" yaml:"layout"`
	Views  []View         `json:"views" yaml:"views"`
}

// LayoutSettings configures the runtime frame around the views.
type LayoutSettings struct {
	Start     string `json:"start,omitempty" yaml:"start,omitempty"` // id of the first view
	NavBar    bool   `json:"navbar,omitempty" yaml:"navbar,omitempty"`
	Header    bool   `json:"header,omitempty" yaml:"header,omitempty"`
	ShowDev   bool   `json:"showdev,omitempty" yaml:"showdev,omitempty"`
	Zoom      string `json:"zoom,omitempty" yaml:"zoom,omitempty"`
	InputMode string `json:"inputdialog,omitempty" yaml:"inputdialog,omitempty"`
	Theme     string `json:"theme,omitempty" yaml:"theme,omitempty"`
}

// ViewType is the kind of a view.
type ViewType string

const (
	ViewTypeSVG   ViewType = "svg"
	ViewTypeCards ViewType = "cards"
	ViewTypeMaps  ViewType = "maps"
)

// View is one HMI page.
type View struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Type       ViewType       `json:"type,omitempty" yaml:"type,omitempty"`
	Profile    ViewProfile    `json:"profile" yaml:"profile"`
	Items      map[string]any `json:"items,omitempty" yaml:"items,omitempty"`
	Svgcontent string         `json:"svgcontent,omitempty" yaml:"svgcontent,omitempty"`
}

// ViewProfile holds the size and background of a view.
type ViewProfile struct {
	Width   int    `json:"width" yaml:"width"`
	Height  int    `json:"height" yaml:"height"`
	Bkcolor string `json:"bkcolor,omitempty" yaml:"bkcolor,omitempty"`
}

// Chart is a named set of tag lines plotted together.
type Chart struct {
	ID    string      `json:"id" yaml:"id"`
	Name  string      `json:"name" yaml:"name"`
	Lines []ChartLine `json:"lines" yaml:"lines"`
}

// ChartLine binds one tag to a chart.
type ChartLine struct {
	Device string `json:"device" yaml:"device"`
	ID     string `json:"id" yaml:"id"` // tag id
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
	YAxis  int    `json:"yaxis,omitempty" yaml:"yaxis,omitempty"`
}

// Alarm watches one tag and raises events by severity.
type Alarm struct {
	Name     string            `json:"name" yaml:"name"`
	Property AlarmProperty     `json:"property" yaml:"property"`
	HighHigh *AlarmSubProperty `json:"highhigh,omitempty" yaml:"highhigh,omitempty"`
	High     *AlarmSubProperty `json:"high,omitempty" yaml:"high,omitempty"`
	Low      *AlarmSubProperty `json:"low,omitempty" yaml:"low,omitempty"`
	Info     *AlarmSubProperty `json:"info,omitempty" yaml:"info,omitempty"`
	Actions  []AlarmAction     `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// AlarmProperty names the tag an alarm watches.
type AlarmProperty struct {
	Permission int    `json:"permission,omitempty" yaml:"permission,omitempty"`
	Variable   string `json:"variable" yaml:"variable"`
	VariableID string `json:"variableId" yaml:"variableId"`
}

// AlarmSubProperty is the condition of one alarm severity.
type AlarmSubProperty struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	Checkdelay int      `json:"checkdelay" yaml:"checkdelay"`
	Min        *float64 `json:"min" yaml:"min"`
	Max        *float64 `json:"max" yaml:"max"`
	Timedelay  int      `json:"timedelay" yaml:"timedelay"`
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`
	Group      string   `json:"group,omitempty" yaml:"group,omitempty"`
	Ackmode    string   `json:"ackmode,omitempty" yaml:"ackmode,omitempty"`
	BkColor    string   `json:"bkcolor,omitempty" yaml:"bkcolor,omitempty"`
	Color      string   `json:"color,omitempty" yaml:"color,omitempty"`
}

// AlarmAction runs when an alarm condition is met.
type AlarmAction struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}
