package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	USB         USBConfig         `yaml:"usb"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Flag        FlagConfig        `yaml:"-"`
	Debug       DebugConfig       `yaml:"debug"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	ConfigFile string
	LogLevel   string
}

// USBConfig defines the device ids and the payload timeouts (ms)
type USBConfig struct {
	Vendor          uint16        `yaml:"vendor"`
	Product         uint16        `yaml:"product"`
	ReadTimeoutInt  int           `yaml:"readtimeout"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeoutInt int           `yaml:"writetimeout"`
	WriteTimeout    time.Duration `yaml:"-"`
}

// CalibrationConfig defines the bias added to every measured value
type CalibrationConfig struct {
	Temperature int `yaml:"temperature"`
	Humidity    int `yaml:"humidity"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		USB: USBConfig{
			Vendor:          0x10c4,
			Product:         0x0003,
			ReadTimeoutInt:  5000,
			WriteTimeoutInt: 2000,
		},
		Flag: FlagConfig{},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
	}
}

// LoadConfig reads the configuration file, if one is defined, and applies the command line flags.
func (c *Config) LoadConfig() error {
	if c.Flag.ConfigFile != "" {
		if err := c.readConfigFile(); err != nil {
			return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
		}
	}

	if c.Flag.LogLevel != "" {
		c.Debug.FlagString = c.Flag.LogLevel
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("debug config: %w", err)
	}

	c.USB.ReadTimeout = time.Duration(c.USB.ReadTimeoutInt) * time.Millisecond
	c.USB.WriteTimeout = time.Duration(c.USB.WriteTimeoutInt) * time.Millisecond

	return nil
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	default:
		return fmt.Errorf("unknown log level %q", c.Debug.FlagString)
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
