package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"vdl120/pkg/app"
	"vdl120/pkg/app/config"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

// exit codes
const (
	exitOK = iota
	exitNoDevice
	exitConfig
	exitInvalidArgument
	exitDeviceError
)

var errConfig = errors.New("configuration error")

func main() {
	exitCode := exitDeviceError
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()
	defaults := app.DefaultConfigureOptions()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "Management tool for the Voltcraft DL-120TH temperature and humidity logger",
		Version: app.VERSION,
		Description: "Read, export and configure the measurements of a DL-120TH data logger connected by usb." +
			"\n Note: all operations stop the current active measurement cycle.",
		UsageText: "vdl120 [--config <file>] [--log standard|debug|trace] command [arguments]" +
			"\n\nEXAMPLE:" +
			"\n\tconfigure a new measurement cycle with 2000 samples every 60 seconds" +
			"\n\t\tvdl120 configure porch 2000 60" +
			"\n\tsave all measurements as csv file" +
			"\n\t\tvdl120 save porch.csv",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.LogLevel, Usage: "`LEVEL` defines the log level (standard|debug|trace), overrides the config file"},
		},
		Before: func(ctx *cli.Context) error {
			if err := cfg.LoadConfig(); err != nil {
				return fmt.Errorf("%w: %v", errConfig, err)
			}

			debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)
			return nil
		},
		After: func(ctx *cli.Context) error {
			if cfg.Debug.File != nil && cfg.Debug.File != os.Stderr && cfg.Debug.File != os.Stdout {
				debug.InfoLog.Printf("closing debug file %s", cfg.Debug.FileString)
				_ = cfg.Debug.File.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "print",
				Usage:  "print measurements",
				Action: withApp(cfg, (*app.App).ShowData),
			},
			{
				Name:   "info",
				Usage:  "show device configuration",
				Action: withApp(cfg, (*app.App).ShowConfig),
			},
			{
				Name:      "save",
				Usage:     "save measurements as csv file",
				ArgsUsage: "FILE",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 1 {
						return fmt.Errorf("%w: save expects exactly one file name", app.ErrInvalidArgument)
					}
					return withApp(cfg, func(a *app.App) error {
						return a.SaveData(ctx.Args().First())
					})(ctx)
				},
			},
			{
				Name:      "configure",
				Usage:     "configure new measurement cycle",
				ArgsUsage: "NAME COUNT INTERVAL",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "alarm", Usage: "enable the threshold alarm"},
					&cli.IntFlag{Name: "flash", Value: defaults.FlashInterval, Usage: "led flash interval in `SECONDS` (1-31)"},
					&cli.IntFlag{Name: "temp-low", Value: defaults.TempLow, Usage: "low temperature alarm `THRESHOLD`"},
					&cli.IntFlag{Name: "temp-high", Value: defaults.TempHigh, Usage: "high temperature alarm `THRESHOLD`"},
					&cli.IntFlag{Name: "hum-low", Value: defaults.HumidityLow, Usage: "low humidity alarm `THRESHOLD`"},
					&cli.IntFlag{Name: "hum-high", Value: defaults.HumidityHigh, Usage: "high humidity alarm `THRESHOLD`"},
					&cli.BoolFlag{Name: "manual", Usage: "start logging by button instead of unplugging"},
					&cli.BoolFlag{Name: "fahrenheit", Usage: "record temperatures in °F"},
				},
				Action: func(ctx *cli.Context) error {
					o, err := configureOptions(ctx)
					if err != nil {
						return err
					}
					return withApp(cfg, func(a *app.App) error {
						return a.Configure(o)
					})(ctx)
				},
			},
		},
	}

	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	exitCode = exitStatus(err)
}

// withApp opens the usb bus, runs f and releases the bus again.
func withApp(cfg *config.Config, f func(*app.App) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() {
			debug.InfoLog.Printf("closing app %s", app.Version())
			_ = a.Close()
		}()

		debug.InfoLog.Printf("starting app %s", app.Version())
		return f(a)
	}
}

// configureOptions parses the positional arguments and flags of the configure command.
func configureOptions(ctx *cli.Context) (app.ConfigureOptions, error) {
	o := app.DefaultConfigureOptions()
	if ctx.NArg() != 3 {
		return o, fmt.Errorf("%w: configure expects NAME COUNT INTERVAL", app.ErrInvalidArgument)
	}

	o.Name = ctx.Args().Get(0)

	var err error
	if o.SampleCount, err = strconv.Atoi(ctx.Args().Get(1)); err != nil {
		return o, fmt.Errorf("%w: count %q", app.ErrInvalidArgument, ctx.Args().Get(1))
	}
	if o.Interval, err = strconv.Atoi(ctx.Args().Get(2)); err != nil {
		return o, fmt.Errorf("%w: interval %q", app.ErrInvalidArgument, ctx.Args().Get(2))
	}

	o.Alarm = ctx.Bool("alarm")
	o.FlashInterval = ctx.Int("flash")
	o.TempLow = ctx.Int("temp-low")
	o.TempHigh = ctx.Int("temp-high")
	o.HumidityLow = ctx.Int("hum-low")
	o.HumidityHigh = ctx.Int("hum-high")
	o.Manual = ctx.Bool("manual")
	o.Fahrenheit = ctx.Bool("fahrenheit")

	return o, nil
}

// exitStatus prints the user hint that belongs to err and returns the process exit code.
func exitStatus(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, app.ErrNoDevice):
		fmt.Println("No Sensor found. Check if device:")
		fmt.Println("- is plugged in correctly")
		fmt.Println("- is listed by lsusb")
		fmt.Println("- is accessible by the current user (udev rules)")
		return exitNoDevice
	case errors.Is(err, errConfig):
		fmt.Println(err)
		return exitConfig
	case errors.Is(err, app.ErrInvalidArgument):
		fmt.Println(err)
		return exitInvalidArgument
	default:
		debug.ErrorLog.Print(err)
		fmt.Println("Unexpected error occurred. try disconnecting device and retry after plug in.")
		return exitDeviceError
	}
}
