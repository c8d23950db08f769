package device

import "math/rand"

// Default configuration values, per the wire protocol's external interface.
const (
	DefaultHost = "localhost"
	DefaultPort = 8989
)

// Config carries the device's optional configuration. The zero value is
// valid and resolves to the defaults above.
type Config struct {
	// Host is the address the device listens on. Defaults to "localhost".
	Host string
	// Port is the TCP port the device listens on. Defaults to 8989.
	Port int
	// LogSink, if set, receives one formatted line per log event.
	LogSink func(string)
	// Rand seeds the sensor evolution step's RNG. If nil, a source seeded
	// from the current time is used. Tests should set this for
	// determinism.
	Rand *rand.Rand
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	return c
}
