package link

import (
	"flag"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config defines how to open a link.
type Config struct {
	// Link identifies the byte source, one of
	//   /dev/ttyACM0, COM3, serial:///dev/ttyACM0 - serial port
	//   tcp://host:port - raw TCP bridge (e.g. ser2net)
	//   ws://host:port/path, wss://... - websocket bridge
	Link string
	// BitRate of a serial port.
	BitRate int
	// ReadTimeout bounds each read. A read which times out returns no data.
	ReadTimeout time.Duration
}

var defaultConfig = Config{
	Link:        defaultLink(),
	BitRate:     2000000,
	ReadTimeout: 10 * time.Second,
}

func defaultLink() string {
	if runtime.GOOS == "windows" {
		return "COM3"
	}
	return "/dev/ttyACM0"
}

func init() {
	if val := os.Getenv("IMGLINK_PORT"); val != "" {
		defaultConfig.Link = val
	}
	if val := os.Getenv("IMGLINK_BAUD"); val != "" {
		if rate, err := strconv.Atoi(val); err == nil {
			defaultConfig.BitRate = rate
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Link, "port", defaultConfig.Link, "Serial port or link URL (tcp://, ws://).")
	flag.IntVar(&defaultConfig.BitRate, "baud", defaultConfig.BitRate, "Serial bit rate.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Timeout of each read.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the link and creates a Session.
func (c *Config) Open() (*Session, error) {
	src, err := OpenSource(c)
	if err != nil {
		return nil, &FatalError{Op: "open", Link: c.Link, Err: err}
	}
	if f, ok := src.(Flusher); ok {
		if err := f.ResetInputBuffer(); err != nil {
			src.Close()
			return nil, &FatalError{Op: "flush", Link: c.Link, Err: err}
		}
	}
	return NewSession(src, c.Link), nil
}
