package transport

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/gousb"

	"github.com/freemyipod/testclass/pkg/devices"
	"github.com/freemyipod/testclass/pkg/suite"
)

func TestTranslateError(t *testing.T) {
	for _, tc := range []struct {
		in   error
		want error
	}{
		{gousb.ErrorTimeout, devices.UsbTimeoutError},
		{gousb.TransferTimedOut, devices.UsbTimeoutError},
		{fmt.Errorf("read: %w", context.DeadlineExceeded), devices.UsbTimeoutError},
		{gousb.ErrorPipe, devices.UsbStallError},
		{gousb.TransferStall, devices.UsbStallError},
		{gousb.ErrorOverflow, devices.UsbOverflowError},
	} {
		if got := translateError(tc.in); !errors.Is(got, tc.want) {
			t.Errorf("translateError(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if translateError(nil) != nil {
		t.Errorf("nil error translated")
	}
	if got := translateError(gousb.ErrorNoDevice); got != gousb.ErrorNoDevice {
		t.Errorf("unrelated error changed to %v", got)
	}
}

// Runs the functional cases against real hardware.
func TestHardware(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping hardware test in short mode")
	}

	dev, err := Open(devices.TestClass)
	if err != nil {
		t.Skipf("No test class device found: %v", err)
	}
	defer dev.Close()

	d, err := suite.NewDevice(dev, suite.DefaultTimeouts())
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	var tests []suite.Test
	for _, name := range []string{"string_descriptors", "interface_name", "control_request", "control_data", "control_data_static", "control_error", "bulk_loopback", "interrupt_loopback"} {
		test, ok := suite.Lookup(name)
		if !ok {
			t.Fatalf("no test %q", name)
		}
		tests = append(tests, test)
	}
	if _, err := suite.Run(d, tests, nil); err != nil {
		t.Errorf("suite failed: %v", err)
	}
}
