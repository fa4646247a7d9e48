package devices

import (
	"context"
	"errors"
	"time"
)

// Usb describes a common API to access a test class device over USB. It is
// implemented by pkg/transport (libusb) and pkg/emulator (in memory).
type Usb interface {
	// UseTestInterface requests the underlying provider to claim the test
	// class interface and returns its bulk and interrupt endpoints.
	UseTestInterface() (TestEndpoints, error)

	// Control sends a control request to the device.
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)

	SetControlTimeout(time.Duration) error

	GetStringDescriptor(descIndex int) (string, error)

	// Close disposes of this device. No other functions may be called on the
	// interface afterwards.
	Close() error
}

type InEndpoint interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

type OutEndpoint interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// TestEndpoints are the loopback endpoints of the test class interface.
type TestEndpoints struct {
	BulkIn       InEndpoint
	BulkOut      OutEndpoint
	InterruptIn  InEndpoint
	InterruptOut OutEndpoint

	BulkMaxPacketSize      int
	InterruptMaxPacketSize int
}

var (
	UsbTimeoutError  = errors.New("USB timeout error")
	UsbStallError    = errors.New("USB stall")
	UsbOverflowError = errors.New("USB overflow")
)
