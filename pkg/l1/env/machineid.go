package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/google/uuid"
)

// AppID salts the machine ID so it isn't exposed as-is.
const AppID = "bldc.go"

// MachineID retrieves the unique ID identifying the machine. A random ID
// is used if the machine has none.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		glog.Warningf("machine id unavailable, use random id: %v", err)
		return uuid.NewString()
	}
	return id[:16]
}
