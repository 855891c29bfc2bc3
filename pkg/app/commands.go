package app

import (
	"fmt"

	"github.com/womat/debug"
	"vdl120/pkg/vdl"
)

// timeFormat is used for all timestamps written to console and file.
const timeFormat = vdl.TimeFormat

// ConfigureOptions are the settings of a new logging cycle.
type ConfigureOptions struct {
	Name          string
	SampleCount   int
	Interval      int
	Alarm         bool
	FlashInterval int
	TempLow       int
	TempHigh      int
	HumidityLow   int
	HumidityHigh  int
	Manual        bool
	Fahrenheit    bool
}

// DefaultConfigureOptions returns the thresholds and led settings of vdl.NewConfig.
func DefaultConfigureOptions() ConfigureOptions {
	return ConfigureOptions{
		FlashInterval: 10,
		TempLow:       0,
		TempHigh:      70,
		HumidityLow:   0,
		HumidityHigh:  100,
	}
}

// ShowData reads all measurements and prints them to the console.
func (app *App) ShowData() error {
	d, err := app.device()
	if err != nil {
		return err
	}

	app.printf("Reading measurements\n")
	rec, err := app.factory.NewReader(d).ReadMeasurements(app.showProgress)
	if err != nil {
		return err
	}

	for _, m := range rec.Measurements {
		app.printf("%s\n", m)
	}
	app.printf("\nTotal count: %d\n", len(rec.Measurements))

	return nil
}

// ShowConfig prints the device configuration.
func (app *App) ShowConfig() error {
	d, err := app.device()
	if err != nil {
		return err
	}

	c, err := d.ReadConfig()
	if err != nil {
		return err
	}

	app.printf("last measurement start time: %s\n", c.StartTime().Format(timeFormat))
	app.printf(" measurement name: %s\n", c.Name())
	app.printf(" measurement interval: %d\n", c.Interval())
	app.printf(" maximum measurements: %d\n", c.SampleCount())
	app.printf(" measurement count: %d\n", c.RecordedCount())
	app.printf(" temperature unit: %s\n", c.TemperatureUnit())
	app.printf("\nalert enabled: %v\n", c.AlarmEnabled())
	app.printf("alert thresholds:\n")
	app.printf(" humidity high: %d\n", c.HumidityHigh())
	app.printf(" humidity low: %d\n", c.HumidityLow())
	app.printf(" temperature high: %d\n", c.TemperatureHigh())
	app.printf(" temperature low: %d\n", c.TemperatureLow())
	app.printf("\nLED flash interval: %d\n", c.FlashInterval())
	app.printf("automatic measurement start: %v\n", c.AutoStart())

	return nil
}

// SaveData reads all measurements and writes them to file.
func (app *App) SaveData(file string) error {
	d, err := app.device()
	if err != nil {
		return err
	}

	app.printf("Saving measurements to %s\n", file)
	rec, err := app.factory.NewReader(d).ReadMeasurements(app.showProgress)
	if err != nil {
		return err
	}

	if err = writeFile(file, rec); err != nil {
		debug.ErrorLog.Printf("can't write %s: %v", file, err)
		return err
	}

	debug.InfoLog.Printf("saved %d measurements to %s", len(rec.Measurements), file)
	return nil
}

// Configure starts a new logging cycle on the device.
// The options are validated before the device is accessed.
func (app *App) Configure(o ConfigureOptions) error {
	c, err := o.config()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	d, err := app.device()
	if err != nil {
		return err
	}

	if err = d.SetConfig(c); err != nil {
		return err
	}

	app.printf("Sensor configured, unplug to start measurement\n")
	return nil
}

func (o ConfigureOptions) config() (*vdl.Config, error) {
	c := vdl.NewConfig()
	c.SetAlarmEnabled(o.Alarm)
	c.SetAutoStart(!o.Manual)
	if o.Fahrenheit {
		c.SetTemperatureUnit(vdl.Fahrenheit)
	}

	setters := []func() error{
		func() error { return c.SetName(o.Name) },
		func() error { return c.SetSampleCount(o.SampleCount) },
		func() error { return c.SetInterval(o.Interval) },
		func() error { return c.SetFlashInterval(o.FlashInterval) },
		func() error { return c.SetTemperatureLow(o.TempLow) },
		func() error { return c.SetTemperatureHigh(o.TempHigh) },
		func() error { return c.SetHumidityLow(o.HumidityLow) },
		func() error { return c.SetHumidityHigh(o.HumidityHigh) },
	}
	for _, set := range setters {
		if err := set(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (app *App) showProgress(percent int) {
	app.printf("%d%%\r", percent)
}
