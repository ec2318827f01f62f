package models

// ServerDeviceID identifies the built-in server pseudo-device.
const ServerDeviceID = "0"

// ServerDeviceName is the display name of the server pseudo-device.
const ServerDeviceName = "FUXA"

// DeviceType names the driver a device is bound to.
type DeviceType string

const (
	DeviceTypeServer   DeviceType = "FuxaServer"
	DeviceTypeS7       DeviceType = "SiemensS7"
	DeviceTypeOPCUA    DeviceType = "OPCUA"
	DeviceTypeModbus   DeviceType = "ModbusRTU"
	DeviceTypeModbusIP DeviceType = "ModbusTCP"
	DeviceTypeInternal DeviceType = "internal"
)

// Device is a connection to a data source together with its tags.
type Device struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Type     DeviceType      `json:"type" yaml:"type"`
	Enabled  bool            `json:"enabled" yaml:"enabled"`
	Polling  int             `json:"polling,omitempty" yaml:"polling,omitempty"` // ms
	Property *DeviceProperty `json:"property,omitempty" yaml:"property,omitempty"`
	Tags     map[string]*Tag `json:"tags" yaml:"tags"`
}

// DeviceProperty holds the connection parameters of a device.
type DeviceProperty struct {
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	SlaveID  int    `json:"slaveid,omitempty" yaml:"slaveid,omitempty"`
	Rack     int    `json:"rack,omitempty" yaml:"rack,omitempty"`
	Slot     int    `json:"slot,omitempty" yaml:"slot,omitempty"`
	Baudrate int    `json:"baudrate,omitempty" yaml:"baudrate,omitempty"`
}

// NewServerDevice creates the server pseudo-device with no tags.
func NewServerDevice() *Device {
	return &Device{
		ID:      ServerDeviceID,
		Name:    ServerDeviceName,
		Type:    DeviceTypeServer,
		Enabled: true,
		Tags:    make(map[string]*Tag),
	}
}

// IsServer reports whether d is the server pseudo-device.
func (d *Device) IsServer() bool {
	return d != nil && d.ID == ServerDeviceID
}

// Tag is a named data point sourced from a device.
type Tag struct {
	ID                 string    `json:"id" yaml:"id"`
	Name               string    `json:"name" yaml:"name"`
	Label              string    `json:"label,omitempty" yaml:"label,omitempty"`
	Type               string    `json:"type,omitempty" yaml:"type,omitempty"`
	Address            string    `json:"address,omitempty" yaml:"address,omitempty"`
	Memaddress         string    `json:"memaddress,omitempty" yaml:"memaddress,omitempty"`
	Divisor            int       `json:"divisor,omitempty" yaml:"divisor,omitempty"`
	Description        string    `json:"description,omitempty" yaml:"description,omitempty"`
	Daq                *TagDaq   `json:"daq,omitempty" yaml:"daq,omitempty"`
	Format             *int      `json:"format,omitempty" yaml:"format,omitempty"` // decimal digits
	Scale              *TagScale `json:"scale,omitempty" yaml:"scale,omitempty"`
	ScaleReadFunction  string    `json:"scaleReadFunction,omitempty" yaml:"scaleReadFunction,omitempty"`
	ScaleReadParams    string    `json:"scaleReadParams,omitempty" yaml:"scaleReadParams,omitempty"`
	ScaleWriteFunction string    `json:"scaleWriteFunction,omitempty" yaml:"scaleWriteFunction,omitempty"`
	ScaleWriteParams   string    `json:"scaleWriteParams,omitempty" yaml:"scaleWriteParams,omitempty"`
}

// DefaultDaqInterval is the polling interval, in seconds, of a new DAQ block.
const DefaultDaqInterval = 60

// TagDaq holds the data-acquisition settings of a tag.
type TagDaq struct {
	Enabled  bool `json:"enabled" yaml:"enabled"`
	Changed  bool `json:"changed" yaml:"changed"`   // record only on value change
	Interval int  `json:"interval" yaml:"interval"` // seconds
	Restored bool `json:"restored" yaml:"restored"` // restore last value on start
}

// TagScaleMode selects how a raw value is converted.
type TagScaleMode string

const (
	ScaleModeUndefined       TagScaleMode = "undefined"
	ScaleModeLinear          TagScaleMode = "linear"
	ScaleModeConvertDateTime TagScaleMode = "convertDateTime"
	ScaleModeConvertTickTime TagScaleMode = "convertTickTime"
)

// Valid reports whether m is one of the known scale modes.
func (m TagScaleMode) Valid() bool {
	switch m {
	case ScaleModeUndefined, ScaleModeLinear, ScaleModeConvertDateTime, ScaleModeConvertTickTime:
		return true
	}
	return false
}

// TagScale holds the scaling of a tag value.
type TagScale struct {
	Mode           TagScaleMode `json:"mode" yaml:"mode"`
	RawLow         *float64     `json:"rawLow" yaml:"rawLow"`
	RawHigh        *float64     `json:"rawHigh" yaml:"rawHigh"`
	ScaledLow      *float64     `json:"scaledLow" yaml:"scaledLow"`
	ScaledHigh     *float64     `json:"scaledHigh" yaml:"scaledHigh"`
	DateTimeFormat string       `json:"dateTimeFormat,omitempty" yaml:"dateTimeFormat,omitempty"`
}
