package vdl

import (
	"time"

	"vdl120/pkg/port"
)

// Factory creates devices and readers with common timeouts and calibration biases.
type Factory struct {
	bus          port.Bus
	readTimeout  time.Duration
	writeTimeout time.Duration
	tempBias     int
	humBias      int
}

// NewFactory returns a factory for the devices on bus.
func NewFactory(bus port.Bus, readTimeout, writeTimeout time.Duration, tempBias, humBias int) *Factory {
	return &Factory{
		bus:          bus,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		tempBias:     tempBias,
		humBias:      humBias,
	}
}

// Devices returns all attached devices.
func (f *Factory) Devices() ([]*Device, error) {
	handles, err := f.bus.Handles()
	if err != nil {
		return nil, err
	}

	devices := make([]*Device, 0, len(handles))
	for _, h := range handles {
		devices = append(devices, NewDevice(h, f.readTimeout, f.writeTimeout))
	}
	return devices, nil
}

// NewReader returns a measurement reader for d.
func (f *Factory) NewReader(d *Device) *Reader {
	return NewReader(d, f.tempBias, f.humBias)
}
