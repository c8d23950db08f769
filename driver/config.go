package driver

import "time"

// Default configuration values.
const (
	DefaultHost       = "localhost"
	DefaultPort       = 8989
	DefaultTimeout    = 5 * time.Second
	handshakeByteSize = 3
)

// Config carries the driver's connection configuration. The zero value is
// valid and resolves to the defaults above.
type Config struct {
	// Host is the device address to dial. Defaults to "localhost".
	Host string
	// Port is the device's TCP port. Defaults to 8989.
	Port int
	// Timeout bounds every request/response round trip and the initial
	// connect/handshake. Defaults to 5 seconds.
	Timeout time.Duration
	// LogSink, if set, receives one formatted line per log event.
	LogSink func(string)
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
