package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/womat/debug"
	"vdl120/pkg/app/config"
	"vdl120/pkg/port"
	"vdl120/pkg/usb"
	"vdl120/pkg/vdl"
)

var (
	ErrNoDevice        = errors.New("no data logger found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// config is the application configuration
	config *config.Config

	// bus is the handler to the attached usb devices
	bus port.Bus

	// factory creates devices and readers with the configured timeouts and calibration
	factory *vdl.Factory

	// out receives all console output
	out io.Writer
}

// openBus opens the devices with the configured ids.
var openBus = func(vendor, product uint16) (port.Bus, error) {
	return usb.Open(vendor, product)
}

// New opens the usb bus and initializes the main app structure.
// A bus on which no matching device could be opened (e.g. missing permissions) is reported as ErrNoDevice.
func New(config *config.Config) (*App, error) {
	bus, err := openBus(config.USB.Vendor, config.USB.Product)
	if err != nil {
		debug.ErrorLog.Printf("can't open usb: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	return NewWithBus(config, bus, os.Stdout), nil
}

// NewWithBus initializes the main app structure using the given bus and console.
func NewWithBus(config *config.Config, bus port.Bus, out io.Writer) *App {
	return &App{
		config: config,
		bus:    bus,
		factory: vdl.NewFactory(bus,
			config.USB.ReadTimeout, config.USB.WriteTimeout,
			config.Calibration.Temperature, config.Calibration.Humidity),
		out: out,
	}
}

// Close releases the usb bus.
func (app *App) Close() error {
	if app.bus == nil {
		return nil
	}
	return app.bus.Close()
}

// device returns the first attached data logger.
func (app *App) device() (*vdl.Device, error) {
	devices, err := app.factory.Devices()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}

	d := devices[0]
	debug.InfoLog.Printf("using device %04x:%04x %s", d.Vendor(), d.Product(), d.Name())
	app.printf("Found Sensor (VID:%04X PID:%04X) - %s\n", d.Vendor(), d.Product(), d.Name())

	return d, nil
}

func (app *App) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(app.out, format, a...)
}
