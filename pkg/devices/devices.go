package devices

import (
	"fmt"

	"github.com/google/gousb"

	"github.com/freemyipod/testclass/pkg/protocol"
)

type Description struct {
	VID, PID gousb.ID
	Name     string
}

func (d Description) String() string {
	return fmt.Sprintf("%s (%s:%s)", d.Name, d.VID, d.PID)
}

// TestClass is the usb-device test class firmware.
var TestClass = Description{
	VID:  protocol.VID,
	PID:  protocol.PID,
	Name: "usb-device TestClass",
}

// WithID returns a description of a device with the given IDs, named after
// the well-known test class firmware if the IDs match.
func WithID(vid, pid uint16) Description {
	if gousb.ID(vid) == TestClass.VID && gousb.ID(pid) == TestClass.PID {
		return TestClass
	}
	return Description{
		VID:  gousb.ID(vid),
		PID:  gousb.ID(pid),
		Name: "test class device",
	}
}
