// Package vdl implements the configuration record and the usb protocol
// of the Voltcraft DL-120TH temperature/humidity data logger.
package vdl

import (
	"bytes"
	"fmt"
	"time"
)

// TemperatureUnit is the unit the device records temperatures in.
type TemperatureUnit int

const (
	Celsius TemperatureUnit = iota
	Fahrenheit
)

// String returns the unit symbol.
func (u TemperatureUnit) String() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// value ranges of the configuration fields
const (
	MinSampleCount   = 1
	MaxSampleCount   = 16000
	MinInterval      = 1
	MaxInterval      = 86400
	MinTemperature   = -40
	MaxTemperature   = 100
	MinHumidity      = 0
	MaxHumidity      = 100
	MinFlashInterval = 1
	MaxFlashInterval = 31
	MaxNameLength    = nameSize
)

// Config is the 64 byte configuration record of the device.
//
// Setters validate their argument and return a *ValidationError if it is out of range,
// leaving the record unchanged. DecodeConfig trusts the device and does not validate.
type Config struct {
	// begin and end are the record markers as read from the device.
	begin, end uint32

	sampleCount uint32
	recorded    uint32
	interval    uint32

	// start time, local time zone
	year                             uint32
	month, day, hour, minute, second uint8

	// thresholds in their encoded wire form
	tempLow, tempHigh uint16
	humLow, humHigh   uint16

	unit  uint8
	led   uint8
	name  string
	start uint8
}

// NewConfig returns a record with the defaults used to start a new logging cycle:
// alarm off, flash interval 10s, humidity thresholds 0-100%, temperature thresholds 0-70,
// automatic start now, one sample every second.
func NewConfig() *Config {
	c := &Config{}
	c.sampleCount = MinSampleCount
	c.interval = MinInterval
	c.tempLow = encodeThreshold(0)
	c.tempHigh = encodeThreshold(70)
	c.humLow = encodeThreshold(MinHumidity)
	c.humHigh = encodeThreshold(MaxHumidity)
	c.led = 10
	c.start = startAutomatic
	c.SetStartTime(time.Now())
	return c
}

// DecodeConfig decodes a configuration record read from the device.
func DecodeConfig(b []byte) (*Config, error) {
	if len(b) != ConfigSize {
		return nil, &FormatError{Size: len(b), Want: ConfigSize}
	}

	c := &Config{}
	for _, f := range layout {
		f.set(c, getUint(b[f.offset:], f.width))
	}

	name := b[offName : offName+nameSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	c.name = string(name)

	return c, nil
}

// Encode returns the canonical wire form of the record.
// Both markers are set, the recorded count and all reserved bytes are zero.
func (c *Config) Encode() []byte {
	b := make([]byte, ConfigSize)

	for _, f := range layout {
		putUint(b[f.offset:], f.width, f.get(c))
	}
	copy(b[offName:offName+nameSize], c.name)

	for _, r := range reserved {
		for i := r[0]; i < r[1]; i++ {
			b[i] = 0
		}
	}

	return b
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Config) MarshalBinary() ([]byte, error) {
	return c.Encode(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (c *Config) UnmarshalBinary(b []byte) error {
	d, err := DecodeConfig(b)
	if err != nil {
		return err
	}
	*c = *d
	return nil
}

// Marker returns the begin marker as read from the device.
func (c *Config) Marker() uint32 {
	return c.begin
}

// Logging reports whether the device was logging when the record was read.
// The device clears the begin marker while a logging cycle is active.
func (c *Config) Logging() bool {
	return c.begin != configMarker
}

// SampleCount returns the number of samples to record.
func (c *Config) SampleCount() int {
	return int(c.sampleCount)
}

// SetSampleCount sets the number of samples to record.
func (c *Config) SetSampleCount(n int) error {
	if err := validate("sample count", n, MinSampleCount, MaxSampleCount); err != nil {
		return err
	}
	c.sampleCount = uint32(n)
	return nil
}

// RecordedCount returns the number of samples stored on the device.
func (c *Config) RecordedCount() int {
	return int(c.recorded)
}

// Interval returns the sample interval in seconds.
func (c *Config) Interval() int {
	return int(c.interval)
}

// SetInterval sets the sample interval in seconds.
func (c *Config) SetInterval(seconds int) error {
	if err := validate("interval", seconds, MinInterval, MaxInterval); err != nil {
		return err
	}
	c.interval = uint32(seconds)
	return nil
}

// StartTime returns the start time of the logging cycle in the local time zone.
func (c *Config) StartTime() time.Time {
	return time.Date(int(c.year), time.Month(c.month), int(c.day),
		int(c.hour), int(c.minute), int(c.second), 0, time.Local)
}

// SetStartTime stores t in the local time zone with second resolution.
func (c *Config) SetStartTime(t time.Time) {
	t = t.Local()
	c.year = uint32(t.Year())
	c.month = uint8(t.Month())
	c.day = uint8(t.Day())
	c.hour = uint8(t.Hour())
	c.minute = uint8(t.Minute())
	c.second = uint8(t.Second())
}

// TemperatureLow returns the low temperature alarm threshold.
func (c *Config) TemperatureLow() int {
	return decodeThreshold(c.tempLow)
}

// SetTemperatureLow sets the low temperature alarm threshold.
func (c *Config) SetTemperatureLow(v int) error {
	if err := validate("temperature low threshold", v, MinTemperature, MaxTemperature); err != nil {
		return err
	}
	c.tempLow = encodeThreshold(v)
	return nil
}

// TemperatureHigh returns the high temperature alarm threshold.
func (c *Config) TemperatureHigh() int {
	return decodeThreshold(c.tempHigh)
}

// SetTemperatureHigh sets the high temperature alarm threshold.
func (c *Config) SetTemperatureHigh(v int) error {
	if err := validate("temperature high threshold", v, MinTemperature, MaxTemperature); err != nil {
		return err
	}
	c.tempHigh = encodeThreshold(v)
	return nil
}

// HumidityLow returns the low humidity alarm threshold in percent.
func (c *Config) HumidityLow() int {
	return decodeThreshold(c.humLow)
}

// SetHumidityLow sets the low humidity alarm threshold in percent.
func (c *Config) SetHumidityLow(v int) error {
	if err := validate("humidity low threshold", v, MinHumidity, MaxHumidity); err != nil {
		return err
	}
	c.humLow = encodeThreshold(v)
	return nil
}

// HumidityHigh returns the high humidity alarm threshold in percent.
func (c *Config) HumidityHigh() int {
	return decodeThreshold(c.humHigh)
}

// SetHumidityHigh sets the high humidity alarm threshold in percent.
func (c *Config) SetHumidityHigh(v int) error {
	if err := validate("humidity high threshold", v, MinHumidity, MaxHumidity); err != nil {
		return err
	}
	c.humHigh = encodeThreshold(v)
	return nil
}

// TemperatureUnit returns the unit of the recorded temperatures.
func (c *Config) TemperatureUnit() TemperatureUnit {
	if c.unit == 0 {
		return Celsius
	}
	return Fahrenheit
}

// SetTemperatureUnit selects Celsius or Fahrenheit recording.
func (c *Config) SetTemperatureUnit(u TemperatureUnit) {
	if u == Fahrenheit {
		c.unit = 1
		return
	}
	c.unit = 0
}

// AlarmEnabled reports the top bit of the led byte.
func (c *Config) AlarmEnabled() bool {
	return c.led&ledAlarm != 0
}

// SetAlarmEnabled switches the threshold alarm, the flash interval is kept.
func (c *Config) SetAlarmEnabled(on bool) {
	if on {
		c.led |= ledAlarm
		return
	}
	c.led &^= ledAlarm
}

// FlashInterval returns the led flash interval in seconds (low 7 bits of the led byte).
func (c *Config) FlashInterval() int {
	return int(c.led & ledInterval)
}

// SetFlashInterval sets the led flash interval in seconds, the alarm bit is kept.
func (c *Config) SetFlashInterval(seconds int) error {
	if err := validate("flash interval", seconds, MinFlashInterval, MaxFlashInterval); err != nil {
		return err
	}
	c.led = c.led&ledAlarm | uint8(seconds)
	return nil
}

// Name returns the label of the logging cycle.
func (c *Config) Name() string {
	return c.name
}

// SetName sets the label. The label is stored in 16 NUL padded bytes,
// so it must not contain a NUL byte itself.
func (c *Config) SetName(name string) error {
	if err := validate("name length", len(name), 0, MaxNameLength); err != nil {
		return err
	}
	for i := 0; i < len(name); i++ {
		if err := validate("name byte", int(name[i]), 1, 0xff); err != nil {
			return err
		}
	}
	c.name = name
	return nil
}

// AutoStart reports whether logging starts when the device is unplugged.
// Otherwise logging is started manually on the device.
func (c *Config) AutoStart() bool {
	return c.start == startAutomatic
}

// SetAutoStart selects automatic (on unplug) or manual (button) start.
func (c *Config) SetAutoStart(on bool) {
	if on {
		c.start = startAutomatic
		return
	}
	c.start = startManual
}

// String returns a one line summary for logging.
func (c *Config) String() string {
	return fmt.Sprintf("%q start %s, %d of %d samples every %ds",
		c.name, c.StartTime().Format(TimeFormat), c.recorded, c.sampleCount, c.interval)
}
