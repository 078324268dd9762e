package report

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/imglink/pkg/link"
	wire "github.com/robotalks/imglink/pkg/proto"
)

// CycleReport describes one finished cycle.
type CycleReport struct {
	Host       string `protobuf:"bytes,1,opt,name=host,proto3" json:"host,omitempty"`
	Link       string `protobuf:"bytes,2,opt,name=link,proto3" json:"link,omitempty"`
	Direction  uint32 `protobuf:"varint,3,opt,name=direction,proto3" json:"direction,omitempty"`
	Height     uint32 `protobuf:"varint,4,opt,name=height,proto3" json:"height,omitempty"`
	Width      uint32 `protobuf:"varint,5,opt,name=width,proto3" json:"width,omitempty"`
	Format     uint32 `protobuf:"varint,6,opt,name=format,proto3" json:"format,omitempty"`
	Bytes      int64  `protobuf:"varint,7,opt,name=bytes,proto3" json:"bytes,omitempty"`
	StartedAt  int64  `protobuf:"varint,8,opt,name=started_at,json=startedAt,proto3" json:"started_at,omitempty"`
	DurationUs int64  `protobuf:"varint,9,opt,name=duration_us,json=durationUs,proto3" json:"duration_us,omitempty"`
	Error      string `protobuf:"bytes,10,opt,name=error,proto3" json:"error,omitempty"`
	Fatal      bool   `protobuf:"varint,11,opt,name=fatal,proto3" json:"fatal,omitempty"`
}

// Reset implements proto.Message.
func (m *CycleReport) Reset() { *m = CycleReport{} }

// String implements proto.Message.
func (m *CycleReport) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*CycleReport) ProtoMessage() {}

// NewCycleReport creates a CycleReport from a cycle result.
func NewCycleReport(host, linkName string, r *link.CycleResult) *CycleReport {
	m := &CycleReport{
		Host:       host,
		Link:       linkName,
		Bytes:      int64(r.Bytes),
		DurationUs: int64(r.Duration / time.Microsecond),
	}
	if !r.Started.IsZero() {
		m.StartedAt = r.Started.UnixNano()
	}
	if req := r.Request; req != nil {
		m.Direction = uint32(req.Direction)
		m.Height = uint32(req.Height)
		m.Width = uint32(req.Width)
		m.Format = uint32(req.Format)
	}
	if r.Err != nil {
		m.Error = r.Err.Error()
		m.Fatal = link.IsFatal(r.Err)
	}
	return m
}

// Summary is a one-line human readable form.
func (m *CycleReport) Summary() string {
	msg := fmt.Sprintf("%s %dx%d %s: %d bytes in %v",
		wire.Direction(m.Direction), m.Width, m.Height, wire.Format(m.Format),
		m.Bytes, time.Duration(m.DurationUs)*time.Microsecond)
	if m.Error != "" {
		msg += ", failed: " + m.Error
	}
	return msg
}
