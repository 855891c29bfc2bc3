package vdl

import (
	"time"

	"github.com/womat/debug"
	"vdl120/pkg/port"
)

// AckTimeout bounds the read of the short acknowledgement following every command.
const AckTimeout = 2 * time.Second

// ackSize is the maximum size of an acknowledgement.
const ackSize = 3

// statusOK is the only successful response to set config.
const statusOK = 0xff

// command sequences
var (
	cmdReadConfig = []byte{0x00, 0x10, 0x01}
	cmdSetConfig  = []byte{0x01, 0x40, 0x00}
)

// Device is an attached data logger.
// Every operation opens its own connection and releases it before returning.
type Device struct {
	handle       port.Handle
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewDevice returns a device using the given payload timeouts.
func NewDevice(h port.Handle, readTimeout, writeTimeout time.Duration) *Device {
	return &Device{handle: h, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

// Vendor returns the usb vendor id.
func (d *Device) Vendor() uint16 {
	return d.handle.Info().Vendor
}

// Product returns the usb product id.
func (d *Device) Product() uint16 {
	return d.handle.Info().Product
}

// Name returns the product string of the device.
func (d *Device) Name() string {
	return d.handle.Info().Name
}

// ReadConfig reads the configuration record.
// Note: the device stops an active logging cycle when its configuration is read.
func (d *Device) ReadConfig() (*Config, error) {
	con, err := d.handle.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = con.Close() }()

	return d.readConfig(con)
}

func (d *Device) readConfig(con port.Conn) (*Config, error) {
	if err := con.Write(cmdReadConfig, d.writeTimeout); err != nil {
		return nil, err
	}

	ack, err := con.Read(ackSize, AckTimeout)
	if err != nil {
		return nil, err
	}
	debug.DebugLog.Printf("read config ack: % x", ack)

	b, err := con.Read(ConfigSize, d.readTimeout)
	if err != nil {
		return nil, err
	}
	if len(b) != ConfigSize {
		return nil, &ProtocolError{Op: "read config", Msg: "short config record"}
	}

	return DecodeConfig(b)
}

// SetConfig writes c to the device. The device confirms with a single status byte.
// Note: the device stops an active logging cycle. A new cycle starts after the device
// has been unplugged (automatic start) or on the device button (manual start).
func (d *Device) SetConfig(c *Config) error {
	con, err := d.handle.Open()
	if err != nil {
		return err
	}
	defer func() { _ = con.Close() }()

	if err = con.Write(cmdSetConfig, d.writeTimeout); err != nil {
		return err
	}

	if err = con.Write(c.Encode(), d.writeTimeout); err != nil {
		return err
	}

	resp, err := con.Read(ackSize, d.readTimeout)
	if err != nil {
		return err
	}

	switch {
	case len(resp) == 1 && resp[0] == statusOK:
		debug.DebugLog.Printf("config set: %v", c)
		return nil
	case len(resp) == 0:
		return &ProtocolError{Op: "set config", Msg: "empty response"}
	default:
		return &ProtocolError{Op: "set config", Msg: "could not set config", Status: resp[0], HasStatus: true}
	}
}
