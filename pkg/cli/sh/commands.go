package sh

import (
	"context"
	"fmt"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/imglink/pkg/imgfile"
	"github.com/robotalks/imglink/pkg/link"
	"github.com/robotalks/imglink/pkg/pixel"
	"github.com/robotalks/imglink/pkg/proto"
)

// DefaultPollTimeout bounds a poll from the shell.
const DefaultPollTimeout = 30 * time.Second

// Status is the output of the status command.
type Status struct {
	Link    string         `json:"link"`
	State   string         `json:"state"`
	Request *proto.Request `json:"request,omitempty"`
	Stats   link.Stats     `json:"stats"`
}

func pollTimeout(c *ishell.Context) (time.Duration, error) {
	if len(c.Args) == 0 {
		return DefaultPollTimeout, nil
	}
	return time.ParseDuration(c.Args[0])
}

var (
	// OpenCmd opens a link.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[LINK]",
		Func: func(c *ishell.Context) {
			var name string
			if len(c.Args) > 0 {
				name = c.Args[0]
			}
			if err := ShellFrom(c).Open(name); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes current link.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// PollCmd waits for the next request.
	PollCmd = ishell.Cmd{
		Name:    "poll",
		Aliases: []string{"p"},
		Help:    "[TIMEOUT]",
		Func: MustBeOpen(func(c *ishell.Context) {
			s := ShellFrom(c)
			timeout, err := pollTimeout(c)
			if err != nil {
				c.Err(err)
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			req, err := s.Session.PollRequest(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, req, req.String())
		}),
	}

	// RecvCmd receives the image of a pending device write.
	RecvCmd = ishell.Cmd{
		Name:    "recv",
		Aliases: []string{"r"},
		Help:    "[FILE]",
		Func: MustHaveRequest(proto.DeviceWrites, func(c *ishell.Context, req *proto.Request) {
			s := ShellFrom(c)
			img, err := s.Session.ReadPayload(context.Background(), req)
			if err != nil {
				c.Err(err)
				return
			}
			var name string
			if len(c.Args) > 0 {
				name = c.Args[0]
				if err = imgfile.Save(name, img); err == nil {
					s.Handler.SetLast(img, name)
				}
			} else {
				err = s.Handler.Received(context.Background(), req, img)
				name = s.Handler.LastFile
			}
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, map[string]string{"image": img.String(), "file": name},
				fmt.Sprintf("received %s, saved %s", img, name))
		}),
	}

	// SendCmd sends an image for a pending device read.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "FILE|@last",
		Func: MustHaveRequest(proto.DeviceReads, func(c *ishell.Context, req *proto.Request) {
			s := ShellFrom(c)
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("image file expected"))
				return
			}
			var img *pixel.Buffer
			var err error
			if c.Args[0] == imgfile.LastReceived {
				if img = s.Handler.Last(); img == nil {
					err = imgfile.ErrNothingReceived
				}
			} else {
				img, err = imgfile.Load(c.Args[0])
			}
			if err != nil {
				c.Err(err)
				return
			}
			if err := s.Session.WritePayload(context.Background(), req, img); err != nil {
				c.Err(err)
				return
			}
			size, _ := req.PayloadSize()
			s.Print(c, map[string]int{"bytes": size}, fmt.Sprintf("sent %d bytes", size))
		}),
	}

	// CycleCmd runs one full cycle.
	CycleCmd = ishell.Cmd{
		Name:    "cycle",
		Aliases: []string{"c"},
		Help:    "[FILE|@last ...]",
		Func: MustBeOpen(func(c *ishell.Context) {
			s := ShellFrom(c)
			h := s.Handler
			h.Sources = append(h.Sources[:0], c.Args...)
			ctx, cancel := context.WithTimeout(context.Background(), DefaultPollTimeout)
			defer cancel()
			result, err := s.Session.Cycle(ctx, h)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, s.Reporter.Last, fmt.Sprintf("%s: %d bytes in %v", result.Request, result.Bytes, result.Duration))
		}),
	}

	// StatusCmd shows the link state.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "",
		Func: MustBeOpen(func(c *ishell.Context) {
			s := ShellFrom(c)
			st := Status{
				Link:    s.Session.Name(),
				State:   s.Session.State().String(),
				Request: s.Session.LastRequest(),
				Stats:   s.Session.Stats(),
			}
			text := fmt.Sprintf("%s: %s", st.Link, st.State)
			if st.Request != nil {
				text += "\nlast request: " + st.Request.String()
			}
			text += fmt.Sprintf("\n%d requests, %d cycles, %d failed, %d resyncs (%d bytes dropped), %d bytes in, %d bytes out",
				st.Stats.Requests, st.Stats.Cycles, st.Stats.Failed, st.Stats.Resyncs,
				st.Stats.DroppedBytes, st.Stats.BytesIn, st.Stats.BytesOut)
			s.Print(c, &st, text)
		}),
	}
)
