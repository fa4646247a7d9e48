// Package config provides configuration management for testclass
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/golang/glog"
	"github.com/spf13/viper"
)

// AppName names the XDG directories used for configuration and data.
const AppName = "testclass"

type Config struct {
	Device   DeviceConfig   `mapstructure:"device"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
	Report   ReportConfig   `mapstructure:"report"`
}

// DeviceConfig selects the device under test.
type DeviceConfig struct {
	VID uint16 `mapstructure:"vid"`
	PID uint16 `mapstructure:"pid"`
}

type TimeoutsConfig struct {
	Transfer time.Duration `mapstructure:"transfer"`
	Bench    time.Duration `mapstructure:"bench"`
}

// ReportConfig configures what is kept of a run.
type ReportConfig struct {
	// Dir holds saved reports. Empty means the XDG data directory.
	Dir string `mapstructure:"dir"`
	// Save keeps every run in Dir.
	Save bool `mapstructure:"save"`
	// MetricsFile, if set, receives a Prometheus textfile of each run.
	MetricsFile string `mapstructure:"metrics_file"`
}

func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			VID: 0x16c0,
			PID: 0x05dc,
		},
		Timeouts: TimeoutsConfig{
			Transfer: time.Second,
			Bench:    10 * time.Second,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("device.vid", d.Device.VID)
	v.SetDefault("device.pid", d.Device.PID)
	v.SetDefault("timeouts.transfer", d.Timeouts.Transfer.String())
	v.SetDefault("timeouts.bench", d.Timeouts.Bench.String())
	v.SetDefault("report.dir", "")
	v.SetDefault("report.save", false)
	v.SetDefault("report.metrics_file", "")
}

// Load reads configuration from path, or from the XDG config directory if
// path is empty, and applies TESTCLASS_* environment overrides. A missing
// file in the XDG directory is not an error, a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		if p, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml")); err == nil {
			path = p
		}
	}
	if path != "" {
		glog.Infof("Using configuration from %s", path)
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("TESTCLASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Device.VID == 0 {
		return fmt.Errorf("device.vid must be set")
	}
	if c.Timeouts.Transfer <= 0 {
		return fmt.Errorf("timeouts.transfer must be positive, got %s", c.Timeouts.Transfer)
	}
	if c.Timeouts.Bench < c.Timeouts.Transfer {
		return fmt.Errorf("timeouts.bench (%s) must not be shorter than timeouts.transfer (%s)", c.Timeouts.Bench, c.Timeouts.Transfer)
	}
	return nil
}

// ReportDir returns the directory saved reports live in.
func (c *Config) ReportDir() string {
	if c.Report.Dir != "" {
		return c.Report.Dir
	}
	return filepath.Join(xdg.DataHome, AppName, "reports")
}
