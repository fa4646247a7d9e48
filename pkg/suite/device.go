package suite

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/freemyipod/testclass/pkg/devices"
	"github.com/freemyipod/testclass/pkg/protocol"
)

const (
	DefaultTimeout      = time.Second
	DefaultBenchTimeout = 10 * time.Second
)

type Timeouts struct {
	// Transfer bounds every functional transfer.
	Transfer time.Duration
	// Bench bounds every benchmark transfer.
	Bench time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Transfer: DefaultTimeout,
		Bench:    DefaultBenchTimeout,
	}
}

// Device is a test class device with its test interface claimed. It is owned
// by one run at a time.
type Device struct {
	usb      devices.Usb
	eps      devices.TestEndpoints
	Timeouts Timeouts
}

func NewDevice(usb devices.Usb, timeouts Timeouts) (*Device, error) {
	eps, err := usb.UseTestInterface()
	if err != nil {
		return nil, fmt.Errorf("claiming test interface: %w", err)
	}
	if eps.BulkIn == nil || eps.BulkOut == nil || eps.InterruptIn == nil || eps.InterruptOut == nil {
		return nil, fmt.Errorf("test interface is missing endpoints")
	}
	if timeouts.Transfer <= 0 {
		timeouts.Transfer = DefaultTimeout
	}
	if timeouts.Bench <= 0 {
		timeouts.Bench = DefaultBenchTimeout
	}
	return &Device{
		usb:      usb,
		eps:      eps,
		Timeouts: timeouts,
	}, nil
}

func (d *Device) BulkMaxPacketSize() int {
	if d.eps.BulkMaxPacketSize == 0 {
		return protocol.BulkMaxPacketSize
	}
	return d.eps.BulkMaxPacketSize
}

func (d *Device) InterruptMaxPacketSize() int {
	if d.eps.InterruptMaxPacketSize == 0 {
		return protocol.InterruptMaxPacketSize
	}
	return d.eps.InterruptMaxPacketSize
}

func (d *Device) control(rType uint8, request protocol.Request, val, idx uint16, data []byte, timeout time.Duration) (int, error) {
	if err := d.usb.SetControlTimeout(timeout); err != nil {
		return 0, fmt.Errorf("setting control timeout: %w", err)
	}
	glog.V(1).Infof("Control %s %s val 0x%04x idx 0x%04x len %d", protocol.DescribeRequestType(rType), request, val, idx, len(data))
	return d.usb.Control(rType, uint8(request), val, idx, data)
}

// WriteControl sends a vendor OUT request to the device.
func (d *Device) WriteControl(request protocol.Request, val, idx uint16, data []byte, timeout time.Duration) (int, error) {
	return d.control(protocol.VendorOut, request, val, idx, data, timeout)
}

// ReadControl sends a vendor IN request to the device, reading into buf.
func (d *Device) ReadControl(request protocol.Request, val, idx uint16, buf []byte, timeout time.Duration) (int, error) {
	return d.control(protocol.VendorIn, request, val, idx, buf, timeout)
}

func (d *Device) WriteBulk(data []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	glog.V(1).Infof("Bulk OUT len %d", len(data))
	return d.eps.BulkOut.WriteContext(ctx, data)
}

func (d *Device) ReadBulk(buf []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	glog.V(1).Infof("Bulk IN len %d", len(buf))
	return d.eps.BulkIn.ReadContext(ctx, buf)
}

func (d *Device) WriteInterrupt(data []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	glog.V(1).Infof("Interrupt OUT len %d", len(data))
	return d.eps.InterruptOut.WriteContext(ctx, data)
}

func (d *Device) ReadInterrupt(buf []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	glog.V(1).Infof("Interrupt IN len %d", len(buf))
	return d.eps.InterruptIn.ReadContext(ctx, buf)
}

func (d *Device) ReadString(index int, timeout time.Duration) (string, error) {
	if err := d.usb.SetControlTimeout(timeout); err != nil {
		return "", fmt.Errorf("setting control timeout: %w", err)
	}
	return d.usb.GetStringDescriptor(index)
}

func (d *Device) DeviceDescriptor(timeout time.Duration) (*devices.DeviceDescriptor, error) {
	if err := d.usb.SetControlTimeout(timeout); err != nil {
		return nil, fmt.Errorf("setting control timeout: %w", err)
	}
	return devices.ReadDeviceDescriptor(d.usb)
}

func (d *Device) ConfigDescriptor(index uint8, timeout time.Duration) (*devices.ConfigDescriptor, error) {
	if err := d.usb.SetControlTimeout(timeout); err != nil {
		return nil, fmt.Errorf("setting control timeout: %w", err)
	}
	return devices.ReadConfigDescriptor(d.usb, index)
}

// reset takes the firmware out of benchmark mode so no case observes state
// left behind by another.
func (d *Device) reset() error {
	if _, err := d.WriteControl(protocol.RequestSetBenchEnabled, 0, 0, nil, d.Timeouts.Transfer); err != nil {
		return fmt.Errorf("disabling bench mode: %w", err)
	}
	return nil
}
