package report

import (
	"context"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/imglink/pkg/link"
)

// Topics relative to the broker topic prefix.
const (
	TopicCycles = "cycles"
	TopicState  = "state"
)

// Sink receives encoded reports.
type Sink interface {
	Publish(topic string, payload []byte, retain bool) error
}

// Reporter turns cycle results and state changes into reports.
// It implements link.CycleNotifier and link.StateNotifier.
type Reporter struct {
	Host string
	Link string
	// Sink is optional, reports are only logged without it.
	Sink Sink
	// Last is the most recent report.
	Last *CycleReport
}

// NewReporter creates a Reporter for a link.
func NewReporter(linkName string, sink Sink) *Reporter {
	return &Reporter{Host: MachineID(), Link: linkName, Sink: sink}
}

// CycleDone implements link.CycleNotifier.
func (r *Reporter) CycleDone(ctx context.Context, result *link.CycleResult) {
	m := NewCycleReport(r.Host, r.Link, result)
	r.Last = m
	if m.Error != "" {
		glog.Warningf("cycle: %s", m.Summary())
	} else if glog.V(1) {
		glog.Infof("cycle: %s", m.Summary())
	}
	if r.Sink == nil {
		return
	}
	data, err := proto.Marshal(m)
	if err != nil {
		glog.Errorf("encode report: %v", err)
		return
	}
	if err := r.Sink.Publish(TopicCycles, data, false); err != nil {
		glog.Warningf("publish report: %v", err)
	}
}

// StateChanged implements link.StateNotifier.
func (r *Reporter) StateChanged(ctx context.Context, state link.State) {
	glog.V(3).Infof("%s: %s", r.Link, state)
	if r.Sink == nil {
		return
	}
	if err := r.Sink.Publish(TopicState, []byte(state.String()), true); err != nil {
		glog.Warningf("publish state: %v", err)
	}
}
