package vdl

import (
	"fmt"
	"time"
)

// TimeFormat is the layout of all timestamps shown to the user.
const TimeFormat = "2006-01-02T15:04:05"

// Measurement is one stored sample.
type Measurement struct {
	Time        time.Time
	Temperature float64
	Unit        TemperatureUnit
	// Humidity is the relative humidity in percent.
	Humidity float64
}

// String returns the console line of the sample, e.g. "2024-01-01T00:00:00: 21.5 °C - 48.0 %".
func (m Measurement) String() string {
	return fmt.Sprintf("%s: %.1f %s - %.1f %%", m.Time.Format(TimeFormat), m.Temperature, m.Unit, m.Humidity)
}

// Recording is the result of one retrieval: the configuration in effect
// and all samples in the order they were recorded.
type Recording struct {
	Config       *Config
	Measurements []Measurement
}
