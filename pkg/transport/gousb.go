// Package transport provides devices.Usb on top of libusb, through gousb.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/google/gousb"
	"github.com/hashicorp/go-multierror"

	"github.com/freemyipod/testclass/pkg/devices"
)

// Device is a test class device opened through libusb.
type Device struct {
	ctx  *gousb.Context
	usb  *gousb.Device
	Desc devices.Description

	cfg  *gousb.Config
	intf *gousb.Interface
}

func newContext() (*gousb.Context, error) {
	resC := make(chan *gousb.Context)
	errC := make(chan error)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errC <- fmt.Errorf("%v", r)
			}
		}()

		resC <- gousb.NewContext()
	}()

	select {
	case err := <-errC:
		return nil, err
	case res := <-resC:
		return res, nil
	}
}

// Open finds the first of the described devices attached to the host.
func Open(descs ...devices.Description) (*Device, error) {
	ctx, err := newContext()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize USB: %w", err)
	}

	var errs error
	for _, desc := range descs {
		usb, err := ctx.OpenDeviceWithVIDPID(desc.VID, desc.PID)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", desc, err))
		}
		if usb == nil {
			continue
		}
		glog.Infof("Found %s", desc)
		return &Device{
			ctx:  ctx,
			usb:  usb,
			Desc: desc,
		}, nil
	}
	ctx.Close()
	if errs == nil {
		return nil, fmt.Errorf("no device found")
	}
	return nil, errs
}

func (d *Device) UseTestInterface() (devices.TestEndpoints, error) {
	out := devices.TestEndpoints{}

	if err := d.usb.SetAutoDetach(true); err != nil {
		glog.Warningf("SetAutoDetach failed: %v", err)
	}
	cfgNum, err := d.usb.ActiveConfigNum()
	if err != nil {
		return out, fmt.Errorf("getting active configuration: %w", err)
	}
	cfg, err := d.usb.Config(cfgNum)
	if err != nil {
		return out, fmt.Errorf("claiming configuration %d: %w", cfgNum, err)
	}
	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		return out, fmt.Errorf("claiming interface: %w", err)
	}
	d.cfg = cfg
	d.intf = intf

	for _, ep := range intf.Setting.Endpoints {
		var err error
		switch {
		case ep.TransferType == gousb.TransferTypeBulk && ep.Direction == gousb.EndpointDirectionIn:
			var in *gousb.InEndpoint
			if in, err = intf.InEndpoint(ep.Number); err == nil {
				out.BulkIn = &inEndpoint{in}
				out.BulkMaxPacketSize = ep.MaxPacketSize
			}
		case ep.TransferType == gousb.TransferTypeBulk && ep.Direction == gousb.EndpointDirectionOut:
			var o *gousb.OutEndpoint
			if o, err = intf.OutEndpoint(ep.Number); err == nil {
				out.BulkOut = &outEndpoint{o}
			}
		case ep.TransferType == gousb.TransferTypeInterrupt && ep.Direction == gousb.EndpointDirectionIn:
			var in *gousb.InEndpoint
			if in, err = intf.InEndpoint(ep.Number); err == nil {
				out.InterruptIn = &inEndpoint{in}
				out.InterruptMaxPacketSize = ep.MaxPacketSize
			}
		case ep.TransferType == gousb.TransferTypeInterrupt && ep.Direction == gousb.EndpointDirectionOut:
			var o *gousb.OutEndpoint
			if o, err = intf.OutEndpoint(ep.Number); err == nil {
				out.InterruptOut = &outEndpoint{o}
			}
		}
		if err != nil {
			return out, fmt.Errorf("opening endpoint %s: %w", ep, err)
		}
	}

	if out.BulkIn == nil || out.BulkOut == nil {
		return out, fmt.Errorf("did not find both bulk IN and OUT endpoint on test interface")
	}
	if out.InterruptIn == nil || out.InterruptOut == nil {
		return out, fmt.Errorf("did not find both interrupt IN and OUT endpoint on test interface")
	}
	return out, nil
}

// translateError maps libusb errors onto the transport independent ones.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gousb.ErrorTimeout), errors.Is(err, gousb.TransferTimedOut),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", devices.UsbTimeoutError, err)
	case errors.Is(err, gousb.ErrorPipe), errors.Is(err, gousb.TransferStall):
		return fmt.Errorf("%w: %v", devices.UsbStallError, err)
	case errors.Is(err, gousb.ErrorOverflow), errors.Is(err, gousb.TransferOverflow):
		return fmt.Errorf("%w: %v", devices.UsbOverflowError, err)
	}
	return err
}

type inEndpoint struct {
	ep *gousb.InEndpoint
}

func (e *inEndpoint) ReadContext(ctx context.Context, buf []byte) (int, error) {
	n, err := e.ep.ReadContext(ctx, buf)
	return n, translateError(err)
}

type outEndpoint struct {
	ep *gousb.OutEndpoint
}

func (e *outEndpoint) WriteContext(ctx context.Context, buf []byte) (int, error) {
	n, err := e.ep.WriteContext(ctx, buf)
	return n, translateError(err)
}

func (d *Device) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	n, err := d.usb.Control(rType, request, val, idx, data)
	return n, translateError(err)
}

func (d *Device) SetControlTimeout(dur time.Duration) error {
	d.usb.ControlTimeout = dur
	return nil
}

func (d *Device) GetStringDescriptor(descIndex int) (string, error) {
	s, err := d.usb.GetStringDescriptor(descIndex)
	return s, translateError(err)
}

func (d *Device) Close() error {
	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
	}
	var errs error
	if d.cfg != nil {
		if err := d.cfg.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("when closing config: %w", err))
		}
		d.cfg = nil
	}
	if err := d.usb.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("when closing USB device: %w", err))
	}
	if err := d.ctx.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("when closing context: %w", err))
	}
	return errs
}
