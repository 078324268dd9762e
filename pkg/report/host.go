package report

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves the unique ID identifying the machine.
// The hostname is used where no machine ID is available.
func MachineID() string {
	id, err := machineid.ProtectedID("imglink")
	if err == nil {
		return id
	}
	glog.V(1).Infof("machine id unavailable: %v", err)
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "unknown"
}
