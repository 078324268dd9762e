package report

import (
	"flag"
	"os"
)

// Config defines where reports go.
type Config struct {
	// BrokerURL is the MQTT broker, reports are only logged when empty.
	BrokerURL string
}

var defaultConfig Config

func init() {
	defaultConfig.BrokerURL = os.Getenv("IMGLINK_MQTT_URL")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL for cycle reports.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewReporter creates a Reporter, connecting to the broker if configured.
// The returned Broker is nil without a broker.
func (c *Config) NewReporter(linkName string) (*Reporter, *Broker, error) {
	if c.BrokerURL == "" {
		return NewReporter(linkName, nil), nil, nil
	}
	b, err := DialBroker(c.BrokerURL)
	if err != nil {
		return nil, nil, err
	}
	return NewReporter(linkName, b), b, nil
}
