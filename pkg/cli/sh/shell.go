package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/imglink/pkg/imgfile"
	"github.com/robotalks/imglink/pkg/link"
	"github.com/robotalks/imglink/pkg/proto"
	"github.com/robotalks/imglink/pkg/report"
)

// Shell provides ishell backed interactive shell over a link session.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell    *ishell.Shell
	Config   *link.Config
	Session  *link.Session
	Reporter *report.Reporter
	Handler  *imgfile.Handler
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	outputDir  string

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&PollCmd,
		&RecvCmd,
		&SendCmd,
		&CycleCmd,
		&StatusCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&outputDir, "out", outputDir, "Directory of received images.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *link.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Config:  conf,
		Handler: imgfile.NewHandler("", &imgfile.Namer{Dir: outputDir}),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requiring an open link.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(fmt.Errorf("link not open"))
			return
		}
		fn(c)
	}
}

// MustHaveRequest wraps command func requiring a decoded request in direction dir.
func MustHaveRequest(dir proto.Direction, fn func(c *ishell.Context, req *proto.Request)) func(c *ishell.Context) {
	return MustBeOpen(func(c *ishell.Context) {
		req := ShellFrom(c).Session.LastRequest()
		if req == nil || ShellFrom(c).Session.State() != link.StateHeaderDecoded {
			c.Err(fmt.Errorf("no pending request, poll first"))
			return
		}
		if req.Direction != dir {
			c.Err(fmt.Errorf("pending request is %s", req))
			return
		}
		fn(c, req)
	})
}

// Print prints v as JSON in JSON mode, otherwise the text.
func (s *Shell) Print(c *ishell.Context, v interface{}, text string) {
	if !s.OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// Open opens the link identified by linkName, or the configured one if empty.
func (s *Shell) Open(linkName string) error {
	conf := *s.Config
	if linkName != "" {
		conf.Link = linkName
	}
	session, err := conf.Open()
	if err != nil {
		return err
	}
	reporter, _, err := report.Default().NewReporter(conf.Link)
	if err != nil {
		session.Close()
		return err
	}
	s.Close()
	session.CycleNotifier = reporter
	session.StateNotifier = link.StateChangedFunc(func(ctx context.Context, state link.State) {
		reporter.StateChanged(ctx, state)
		s.Shell.SetPrompt(fmt.Sprintf("%s [%s] > ", session.Name(), state))
	})
	s.Session, s.Reporter = session, reporter
	s.Shell.SetPrompt(fmt.Sprintf("%s [%s] > ", session.Name(), link.StateIdle))
	return nil
}

// Close closes current link.
func (s *Shell) Close() {
	if s.Session != nil {
		s.Session.Close()
		s.Session = nil
		s.Shell.SetPrompt(closedPrompt)
	}
	if s.Reporter != nil {
		if b, ok := s.Reporter.Sink.(*report.Broker); ok {
			b.Close()
		}
		s.Reporter = nil
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Link)
		}
		if err := s.Open(""); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.Link, err)
		}
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(link.Default()).WithAutoOpen(true).Run(flag.Args()...)
}
