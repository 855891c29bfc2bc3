package vdl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func TestDecodeConfigInvalidSize(t *testing.T) {
	for _, n := range []int{0, 63, 65} {
		_, err := DecodeConfig(make([]byte, n))

		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("DecodeConfig(%d bytes): expected *FormatError, got %v", n, err)
		}
		if fe.Size != n || fe.Want != ConfigSize {
			t.Errorf("DecodeConfig(%d bytes): got %+v", n, fe)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 15, 13, 45, 30, 0, time.Local)

	c := &Config{}
	mustSet(t, c.SetSampleCount(2000))
	mustSet(t, c.SetInterval(60))
	c.SetStartTime(start)
	mustSet(t, c.SetTemperatureLow(-40))
	mustSet(t, c.SetTemperatureHigh(35))
	mustSet(t, c.SetHumidityLow(20))
	mustSet(t, c.SetHumidityHigh(85))
	c.SetTemperatureUnit(Fahrenheit)
	c.SetAlarmEnabled(true)
	mustSet(t, c.SetFlashInterval(15))
	mustSet(t, c.SetName("greenhouse"))
	c.SetAutoStart(false)

	b := c.Encode()
	if len(b) != ConfigSize {
		t.Fatalf("encoded size %d, want %d", len(b), ConfigSize)
	}

	d, err := DecodeConfig(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	checks := []struct {
		name      string
		got, want interface{}
	}{
		{"sample count", d.SampleCount(), 2000},
		{"interval", d.Interval(), 60},
		{"start time", d.StartTime(), start},
		{"temperature low", d.TemperatureLow(), -40},
		{"temperature high", d.TemperatureHigh(), 35},
		{"humidity low", d.HumidityLow(), 20},
		{"humidity high", d.HumidityHigh(), 85},
		{"unit", d.TemperatureUnit(), Fahrenheit},
		{"alarm", d.AlarmEnabled(), true},
		{"flash interval", d.FlashInterval(), 15},
		{"name", d.Name(), "greenhouse"},
		{"auto start", d.AutoStart(), false},
		{"marker", d.Marker(), configMarker},
		{"logging", d.Logging(), false},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s: got %v, want %v", ch.name, ch.got, ch.want)
		}
	}
}

func TestConfigWireLayout(t *testing.T) {
	c := &Config{}
	mustSet(t, c.SetSampleCount(16000))
	mustSet(t, c.SetInterval(86400))
	c.SetStartTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local))
	c.SetTemperatureUnit(Fahrenheit)
	c.SetAlarmEnabled(true)
	mustSet(t, c.SetFlashInterval(31))
	mustSet(t, c.SetName("abc"))
	c.SetAutoStart(true)

	b := c.Encode()

	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }
	if u32(0) != 0xce || u32(60) != 0xce {
		t.Errorf("markers: got %#x/%#x, want 0xce", u32(0), u32(60))
	}
	if u32(4) != 16000 || u32(8) != 0 || u32(12) != 86400 || u32(16) != 2024 {
		t.Errorf("counts/interval/year: % x", b[4:20])
	}
	if !bytes.Equal(b[28:33], []byte{1, 2, 3, 4, 5}) {
		t.Errorf("month..second: % x", b[28:33])
	}
	if b[33] != 1 {
		t.Errorf("unit byte: got %#x, want 1", b[33])
	}
	if b[34] != 0x80|31 {
		t.Errorf("led byte: got %#x, want %#x", b[34], 0x80|31)
	}
	if !bytes.Equal(b[35:51], append([]byte("abc"), make([]byte, 13)...)) {
		t.Errorf("name: % x", b[35:51])
	}
	if b[51] != 2 {
		t.Errorf("start byte: got %d, want 2", b[51])
	}
}

func TestEncodeZeroesReservedBytes(t *testing.T) {
	raw := bytes.Repeat([]byte{0xaa}, ConfigSize)

	c, err := DecodeConfig(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if uint32(c.RecordedCount()) != 0xaaaaaaaa {
		t.Errorf("recorded count: got %#x", c.RecordedCount())
	}
	if !c.Logging() {
		t.Errorf("marker %#x should report an active logging cycle", c.Marker())
	}

	b := c.Encode()
	for _, r := range reserved {
		for i := r[0]; i < r[1]; i++ {
			if b[i] != 0 {
				t.Errorf("reserved byte %d: got %#x, want 0", i, b[i])
			}
		}
	}
	if binary.LittleEndian.Uint32(b[8:]) != 0 {
		t.Errorf("recorded count not cleared: % x", b[8:12])
	}
	if binary.LittleEndian.Uint32(b[0:]) != configMarker || binary.LittleEndian.Uint32(b[60:]) != configMarker {
		t.Errorf("markers not set: % x / % x", b[0:4], b[60:64])
	}
	if bytes.Equal(b, raw) {
		t.Errorf("re-encoded record must not be byte identical")
	}
}

func TestDecodeUnterminatedName(t *testing.T) {
	b := make([]byte, ConfigSize)
	copy(b[offName:], "0123456789abcdef")

	c, err := DecodeConfig(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Name() != "0123456789abcdef" {
		t.Errorf("name: got %q", c.Name())
	}
}

func TestSetterBounds(t *testing.T) {
	tests := []struct {
		field    string
		set      func(c *Config, v int) error
		min, max int
	}{
		{"sample count", (*Config).SetSampleCount, 1, 16000},
		{"interval", (*Config).SetInterval, 1, 86400},
		{"temperature low threshold", (*Config).SetTemperatureLow, -40, 100},
		{"temperature high threshold", (*Config).SetTemperatureHigh, -40, 100},
		{"humidity low threshold", (*Config).SetHumidityLow, 0, 100},
		{"humidity high threshold", (*Config).SetHumidityHigh, 0, 100},
		{"flash interval", (*Config).SetFlashInterval, 1, 31},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			c := &Config{}
			for v := tt.min; v <= tt.max; v++ {
				if err := tt.set(c, v); err != nil {
					t.Fatalf("set %d: %v", v, err)
				}
			}

			for _, v := range []int{tt.min - 1, tt.max + 1} {
				err := tt.set(c, v)

				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("set %d: expected *ValidationError, got %v", v, err)
				}
				if ve.Field != tt.field || ve.Min != tt.min || ve.Max != tt.max || ve.Value != v {
					t.Errorf("set %d: got %+v", v, ve)
				}
			}
		})
	}
}

func TestRejectedValueLeavesRecordUnchanged(t *testing.T) {
	c := &Config{}
	mustSet(t, c.SetInterval(30))

	if err := c.SetInterval(0); err == nil {
		t.Fatal("expected error")
	}
	if c.Interval() != 30 {
		t.Errorf("interval: got %d, want 30", c.Interval())
	}
}

func TestSetNameLength(t *testing.T) {
	c := &Config{}
	for _, name := range []string{"", "a", "0123456789abcdef"} {
		if err := c.SetName(name); err != nil {
			t.Errorf("SetName(%q): %v", name, err)
		}
	}

	var ve *ValidationError
	if err := c.SetName("0123456789abcdefg"); !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Field != "name length" || ve.Max != 16 {
		t.Errorf("got %+v", ve)
	}
}

func TestLEDByteHalvesAreIndependent(t *testing.T) {
	c := &Config{}
	mustSet(t, c.SetFlashInterval(31))
	c.SetAlarmEnabled(true)
	mustSet(t, c.SetFlashInterval(7))

	if !c.AlarmEnabled() || c.FlashInterval() != 7 {
		t.Fatalf("got alarm %v flash %d", c.AlarmEnabled(), c.FlashInterval())
	}

	c.SetAlarmEnabled(false)
	if c.AlarmEnabled() || c.FlashInterval() != 7 {
		t.Fatalf("got alarm %v flash %d", c.AlarmEnabled(), c.FlashInterval())
	}
}

func TestThresholdEncoding(t *testing.T) {
	known := map[int]uint16{
		-40: 0xc220,
		0:   0x0000,
		1:   0x3f80,
		70:  0x428c,
		100: 0x42c8,
	}
	for v, raw := range known {
		if got := encodeThreshold(v); got != raw {
			t.Errorf("encodeThreshold(%d) = %#04x, want %#04x", v, got, raw)
		}
	}

	for v := MinTemperature; v <= MaxTemperature; v++ {
		if got := decodeThreshold(encodeThreshold(v)); got != v {
			t.Errorf("decodeThreshold(encodeThreshold(%d)) = %d", v, got)
		}
	}
}

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()

	if c.AlarmEnabled() || c.FlashInterval() != 10 || !c.AutoStart() {
		t.Errorf("led/start defaults: alarm %v flash %d auto %v", c.AlarmEnabled(), c.FlashInterval(), c.AutoStart())
	}
	if c.TemperatureLow() != 0 || c.TemperatureHigh() != 70 || c.HumidityLow() != 0 || c.HumidityHigh() != 100 {
		t.Errorf("thresholds: %d %d %d %d", c.TemperatureLow(), c.TemperatureHigh(), c.HumidityLow(), c.HumidityHigh())
	}
	if c.TemperatureUnit() != Celsius {
		t.Errorf("unit: %v", c.TemperatureUnit())
	}
	if time.Since(c.StartTime()) > time.Minute {
		t.Errorf("start time: %v", c.StartTime())
	}
}

func TestBinaryMarshaler(t *testing.T) {
	c := NewConfig()
	mustSet(t, c.SetName("probe"))

	b, err := c.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var d Config
	if err = d.UnmarshalBinary(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Name() != "probe" {
		t.Errorf("name: got %q", d.Name())
	}

	var fe *FormatError
	if err = d.UnmarshalBinary(b[:10]); !errors.As(err, &fe) {
		t.Errorf("expected *FormatError, got %v", err)
	}
}

func mustSet(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestSetNameRejectsNUL(t *testing.T) {
	c := &Config{}
	mustSet(t, c.SetName("cellar"))

	var ve *ValidationError
	if err := c.SetName("ab\x00cd"); !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Field != "name byte" || ve.Value != 0 {
		t.Errorf("got %+v", ve)
	}
	if c.Name() != "cellar" {
		t.Errorf("name changed to %q", c.Name())
	}
}

func TestDecodeThresholdOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		raw  uint16
		want int
	}{
		{"NaN", 0x7fc0, 0},
		{"+Inf", 0x7f80, MaxTemperature},
		{"-Inf", 0xff80, MinTemperature},
		{"2^31", 0x4f00, MaxTemperature},
		{"-1000", 0xc47a, MinTemperature},
		{"101", 0x42ca, MaxTemperature},
		{"half", 0x3f00, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeThreshold(tt.raw); got != tt.want {
				t.Errorf("decodeThreshold(%#04x) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}
