package vdl

import (
	"encoding/binary"
	"math"
)

// ConfigSize is the size of the configuration record on the wire.
const ConfigSize = 64

// configMarker is written to both ends of a record sent by set config.
const configMarker uint32 = 0xce

// byte offsets of the configuration record
const (
	offBegin       = 0
	offSampleCount = 4
	offRecorded    = 8
	offInterval    = 12
	offYear        = 16
	offTempLow     = 22
	offTempHigh    = 26
	offMonth       = 28
	offDay         = 29
	offHour        = 30
	offMinute      = 31
	offSecond      = 32
	offUnit        = 33
	offLED         = 34
	offName        = 35
	offStart       = 51
	offHumLow      = 54
	offHumHigh     = 58
	offEnd         = 60

	nameSize = 16
)

// bit layout of the led byte
const (
	ledAlarm    = 1 << 7
	ledInterval = 0x7f
)

// startMode values of the start byte
const (
	startManual    = 1
	startAutomatic = 2
)

// field maps one little-endian integer of the record to the Config.
// get yields the value written by Encode, set stores the value read by DecodeConfig.
type field struct {
	name   string
	offset int
	width  int
	get    func(c *Config) uint32
	set    func(c *Config, v uint32)
}

// layout lists every integer field of the record. The name is a byte string and handled separately.
var layout = []field{
	{"begin", offBegin, 4,
		func(*Config) uint32 { return configMarker },
		func(c *Config, v uint32) { c.begin = v }},
	{"sample count", offSampleCount, 4,
		func(c *Config) uint32 { return c.sampleCount },
		func(c *Config, v uint32) { c.sampleCount = v }},
	// the recorded count is owned by the device and cleared on write
	{"recorded count", offRecorded, 4,
		func(*Config) uint32 { return 0 },
		func(c *Config, v uint32) { c.recorded = v }},
	{"interval", offInterval, 4,
		func(c *Config) uint32 { return c.interval },
		func(c *Config, v uint32) { c.interval = v }},
	{"year", offYear, 4,
		func(c *Config) uint32 { return c.year },
		func(c *Config, v uint32) { c.year = v }},
	{"temperature low", offTempLow, 2,
		func(c *Config) uint32 { return uint32(c.tempLow) },
		func(c *Config, v uint32) { c.tempLow = uint16(v) }},
	{"temperature high", offTempHigh, 2,
		func(c *Config) uint32 { return uint32(c.tempHigh) },
		func(c *Config, v uint32) { c.tempHigh = uint16(v) }},
	{"month", offMonth, 1,
		func(c *Config) uint32 { return uint32(c.month) },
		func(c *Config, v uint32) { c.month = uint8(v) }},
	{"day", offDay, 1,
		func(c *Config) uint32 { return uint32(c.day) },
		func(c *Config, v uint32) { c.day = uint8(v) }},
	{"hour", offHour, 1,
		func(c *Config) uint32 { return uint32(c.hour) },
		func(c *Config, v uint32) { c.hour = uint8(v) }},
	{"minute", offMinute, 1,
		func(c *Config) uint32 { return uint32(c.minute) },
		func(c *Config, v uint32) { c.minute = uint8(v) }},
	{"second", offSecond, 1,
		func(c *Config) uint32 { return uint32(c.second) },
		func(c *Config, v uint32) { c.second = uint8(v) }},
	{"unit", offUnit, 1,
		func(c *Config) uint32 { return uint32(c.unit) },
		func(c *Config, v uint32) { c.unit = uint8(v) }},
	{"led", offLED, 1,
		func(c *Config) uint32 { return uint32(c.led) },
		func(c *Config, v uint32) { c.led = uint8(v) }},
	{"start", offStart, 1,
		func(c *Config) uint32 { return uint32(c.start) },
		func(c *Config, v uint32) { c.start = uint8(v) }},
	{"humidity low", offHumLow, 2,
		func(c *Config) uint32 { return uint32(c.humLow) },
		func(c *Config, v uint32) { c.humLow = uint16(v) }},
	{"humidity high", offHumHigh, 2,
		func(c *Config) uint32 { return uint32(c.humHigh) },
		func(c *Config, v uint32) { c.humHigh = uint16(v) }},
	{"end", offEnd, 4,
		func(*Config) uint32 { return configMarker },
		func(c *Config, v uint32) { c.end = v }},
}

// reserved byte ranges [from, to), zeroed on every encode.
// Each one is the low half of the threshold float that follows it.
var reserved = [][2]int{
	{20, 22},
	{24, 26},
	{52, 54},
	{56, 58},
}

func getUint(b []byte, width int) uint32 {
	switch width {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(b))
	default:
		return binary.LittleEndian.Uint32(b)
	}
}

func putUint(b []byte, width int, v uint32) {
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	default:
		binary.LittleEndian.PutUint32(b, v)
	}
}

// encodeThreshold returns the high half of the little-endian float32 holding v.
// The low half is a reserved word and zero for every integer threshold.
func encodeThreshold(v int) uint16 {
	return uint16(math.Float32bits(float32(v)) >> 16)
}

// decodeThreshold is the inverse of encodeThreshold.
// Values outside [MinTemperature, MaxTemperature] are clamped, NaN decodes as 0.
func decodeThreshold(raw uint16) int {
	f := float64(math.Float32frombits(uint32(raw) << 16))

	switch {
	case math.IsNaN(f):
		return 0
	case f < MinTemperature:
		return MinTemperature
	case f > MaxTemperature:
		return MaxTemperature
	}
	return int(math.Round(f))
}
