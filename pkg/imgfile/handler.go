package imgfile

import (
	"context"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/imglink/pkg/pixel"
	"github.com/robotalks/imglink/pkg/proto"
)

// LastReceived names the most recently received image in Handler.Sources.
const LastReceived = "@last"

// ErrNothingReceived indicates LastReceived was requested before any image arrived.
var ErrNothingReceived = errors.New("no image received yet")

// Handler serves device requests from image files.
// Device reads are answered with Sources in order, cycling; device writes
// are saved through Namer when it's set.
type Handler struct {
	Sources []string
	Namer   *Namer
	// LastFile is where the most recently received image was saved.
	LastFile string

	next  int
	last  *pixel.Buffer
	cache map[string]*pixel.Buffer
}

// NewHandler creates a Handler. sources is a comma separated list.
func NewHandler(sources string, namer *Namer) *Handler {
	h := &Handler{Namer: namer}
	for _, src := range strings.Split(sources, ",") {
		if src = strings.TrimSpace(src); src != "" {
			h.Sources = append(h.Sources, src)
		}
	}
	return h
}

// Last returns the most recently received image.
func (h *Handler) Last() *pixel.Buffer {
	return h.last
}

// SetLast records an image received outside of Received.
func (h *Handler) SetLast(img *pixel.Buffer, file string) {
	h.last, h.LastFile = img, file
}

// ImageFor implements link.Handler.
func (h *Handler) ImageFor(ctx context.Context, req *proto.Request) (*pixel.Buffer, error) {
	if len(h.Sources) == 0 {
		return nil, nil
	}
	src := h.Sources[h.next%len(h.Sources)]
	h.next++
	if src == LastReceived {
		if h.last == nil {
			return nil, ErrNothingReceived
		}
		return h.last, nil
	}
	if img := h.cache[src]; img != nil {
		return img, nil
	}
	img, err := Load(src)
	if err != nil {
		return nil, err
	}
	if h.cache == nil {
		h.cache = make(map[string]*pixel.Buffer)
	}
	h.cache[src] = img
	glog.Infof("sending %s as %s", src, req)
	return img, nil
}

// Received implements link.Handler.
func (h *Handler) Received(ctx context.Context, req *proto.Request, img *pixel.Buffer) error {
	h.last, h.LastFile = img, ""
	if h.Namer == nil {
		return nil
	}
	name, err := h.Namer.Save(req.Format, img)
	h.LastFile = name
	return err
}
