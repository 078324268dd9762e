package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/framework"
	"github.com/robotalks/imglink/pkg/imgfile"
	"github.com/robotalks/imglink/pkg/link"
	"github.com/robotalks/imglink/pkg/report"
)

var (
	sendImages string
	outputDir  = "."
	prefix     = "received"
)

func init() {
	link.SetupFlags()
	report.SetupFlags()
	flag.StringVar(&sendImages, "send", sendImages, "Comma separated images sent on device reads, in order; @last is the last received image.")
	flag.StringVar(&outputDir, "out", outputDir, "Directory of received images.")
	flag.StringVar(&prefix, "prefix", prefix, "File name prefix of received images.")
}

// server answers every device request until cancelled or the link is lost.
type server struct {
	session *link.Session
	handler link.Handler
}

func (s *server) Name() string {
	return "serve " + s.session.Name()
}

func (s *server) Run(ctx context.Context) error {
	return framework.RunWithContextCloser(ctx, s.session, func() error {
		return s.session.Run(ctx, s.handler)
	})
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := link.Default()
	session, err := conf.Open()
	if err != nil {
		glog.Exitf("%v", err)
	}
	reporter, broker, err := report.Default().NewReporter(conf.Link)
	if err != nil {
		session.Close()
		glog.Exitf("%v", err)
	}
	if broker != nil {
		defer broker.Close()
	}
	session.CycleNotifier = reporter
	session.StateNotifier = reporter

	handler := imgfile.NewHandler(sendImages, &imgfile.Namer{Dir: outputDir, Prefix: prefix})
	err = framework.NewRunner().HandleSignals().Run(&server{session: session, handler: handler})
	stats := session.Stats()
	glog.Infof("%d requests, %d cycles, %d failed, %d resyncs", stats.Requests, stats.Cycles, stats.Failed, stats.Resyncs)
	if err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
}
