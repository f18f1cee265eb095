// Package atdrv wires the protocol core (packages at and engine) into a
// runnable daemon: configuration loading, the HTTP/WebSocket admin surface,
// the SQLite audit log, and mDNS advertisement.
package atdrv

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon's ambient (non-protocol) configuration.
type Config struct {
	BindAddress string `yaml:"bind_address"`
	SerialPort  string `yaml:"serial_port"`
	BaudRate    int    `yaml:"baud_rate"`
	LogLevel    string `yaml:"log_level"`

	DBPath string `yaml:"db_path"`

	EnableMDNS  bool   `yaml:"enable_mdns"`
	ServiceName string `yaml:"service_name"`

	RXCapacity            int  `yaml:"rx_capacity"`
	StrictExtendedFraming bool `yaml:"strict_extended_framing"`
}

// ConfigOption mutates a Config during LoadConfig, applied in order —
// defaults, then an optional YAML file, then environment, then flags.
type ConfigOption func(*Config) error

// LoadConfig builds a Config by applying opts in order.
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// WithDefaults applies the daemon's baseline configuration.
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.DBPath = "atgatewayd.db"
		c.EnableMDNS = true
		c.ServiceName = "atgatewayd"
		c.RXCapacity = 256
		return nil
	}
}

// WithYAMLFile loads configuration from an optional YAML file. A missing
// file is not an error — the layering simply falls through to env/flags.
func WithYAMLFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("atdrv: read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("atdrv: parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv overlays configuration from environment variables.
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if v := os.Getenv("BIND_ADDRESS"); v != "" {
			c.BindAddress = v
		}
		if v := os.Getenv("SERIAL_PORT"); v != "" {
			c.SerialPort = v
		}
		if v := os.Getenv("BAUD_RATE"); v != "" {
			if b, err := strconv.Atoi(v); err == nil {
				c.BaudRate = b
			}
		}
		if v := os.Getenv("LOG_LEVEL"); v != "" {
			c.LogLevel = v
		}
		if v := os.Getenv("DB_PATH"); v != "" {
			c.DBPath = v
		}
		if v := os.Getenv("ENABLE_MDNS"); v != "" {
			c.EnableMDNS = v == "true" || v == "1"
		}
		if v := os.Getenv("SERVICE_NAME"); v != "" {
			c.ServiceName = v
		}
		if v := os.Getenv("STRICT_EXTENDED_FRAMING"); v != "" {
			c.StrictExtendedFraming = v == "true" || v == "1"
		}
		return nil
	}
}

// WithFlags overlays configuration from command-line flags explicitly set
// on fSet, following the teacher's "only override what the caller actually
// passed" discipline.
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "db-path":
				c.DBPath = f.Value.String()
			case "enable-mdns":
				c.EnableMDNS = f.Value.String() == "true"
			case "service-name":
				c.ServiceName = f.Value.String()
			case "strict-extended-framing":
				c.StrictExtendedFraming = f.Value.String() == "true"
			}
		})
		return nil
	}
}
