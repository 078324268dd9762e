package link

import (
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/net/websocket"
)

// ByteSource is the byte stream a Session runs on.
// Read returns at most len(p) bytes; when the read timeout elapses
// without data it returns 0 bytes with either a nil or a timeout error.
type ByteSource interface {
	io.ReadWriteCloser
}

// Flusher discards pending input, implemented by serial ports.
type Flusher interface {
	ResetInputBuffer() error
}

// Drainer waits until written bytes are transmitted, implemented by serial ports.
type Drainer interface {
	Drain() error
}

// OpenSource opens the byte source identified by c.Link.
func OpenSource(c *Config) (ByteSource, error) {
	if !strings.Contains(c.Link, "://") {
		return OpenSerial(c.Link, c.BitRate, c.ReadTimeout)
	}
	u, err := url.Parse(c.Link)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "serial":
		return OpenSerial(u.Host+u.Path, c.BitRate, c.ReadTimeout)
	case "tcp":
		return DialTCP(u.Host, c.ReadTimeout)
	case "ws", "wss":
		return DialWebsocket(c.Link, c.ReadTimeout)
	}
	return nil, errors.Errorf("unsupported link scheme %q", u.Scheme)
}

// OpenSerial opens a serial port with 8 data bits, no parity, one stop bit.
func OpenSerial(path string, bitRate int, readTimeout time.Duration) (serial.Port, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: bitRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open serial port %s", path)
	}
	if readTimeout > 0 {
		if err := port.SetReadTimeout(readTimeout); err != nil {
			port.Close()
			return nil, errors.Wrap(err, "set read timeout")
		}
	}
	glog.Infof("%s opened at %d bps", path, bitRate)
	return port, nil
}

// DialTCP connects a raw TCP serial bridge.
func DialTCP(addr string, readTimeout time.Duration) (ByteSource, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	glog.Infof("tcp %s connected", addr)
	return NewConnSource(conn, readTimeout), nil
}

// DialWebsocket connects a websocket serial bridge exchanging binary frames.
func DialWebsocket(rawURL string, readTimeout time.Duration) (ByteSource, error) {
	conf, err := websocket.NewConfig(rawURL, "http://localhost/")
	if err != nil {
		return nil, err
	}
	conn, err := websocket.DialConfig(conf)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	glog.Infof("websocket %s connected", rawURL)
	return NewConnSource(conn, readTimeout), nil
}

// ConnSource adapts a net.Conn into a ByteSource with per-read timeout.
type ConnSource struct {
	net.Conn
	ReadTimeout time.Duration
}

// NewConnSource wraps conn.
func NewConnSource(conn net.Conn, readTimeout time.Duration) *ConnSource {
	return &ConnSource{Conn: conn, ReadTimeout: readTimeout}
}

// Read implements io.Reader. A timeout returns (0, nil) like a serial port.
func (s *ConnSource) Read(p []byte) (int, error) {
	if s.ReadTimeout > 0 {
		if err := s.Conn.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return 0, err
		}
	}
	n, err := s.Conn.Read(p)
	if err != nil && os.IsTimeout(err) {
		return n, nil
	}
	return n, err
}
