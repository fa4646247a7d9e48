// Package emulator implements the test class firmware in memory, behind the
// same devices.Usb interface as real hardware. It lets the suite run without a
// device attached, and its Quirks reproduce firmware bugs the suite is meant
// to catch.
package emulator

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/freemyipod/testclass/pkg/devices"
	"github.com/freemyipod/testclass/pkg/protocol"
)

// controlBufferSize is how much WriteBuffer accepts before stalling.
const controlBufferSize = 256

// Quirks are firmware bugs the emulator can be told to have.
type Quirks struct {
	// BigEndianStoredValue stores wValue of StoreRequest big endian.
	BigEndianStoredValue bool
	// AcceptUnknownRequests acknowledges vendor requests it does not know.
	AcceptUnknownRequests bool
	// ShortLongData answers ReadLongData with one byte missing.
	ShortLongData bool
	// WrongProduct reports a product string that is off by one character.
	WrongProduct bool
	// WrongInterfaceString points iInterface at the custom string.
	WrongInterfaceString bool
	// DropBulkLastByte echoes every non-empty bulk transfer without its last
	// byte.
	DropBulkLastByte bool
	// CompleteOnFullPacket treats a full bulk packet as the end of a transfer,
	// splitting multi-packet transfers.
	CompleteOnFullPacket bool
}

// Stats counts what the emulated device observed.
type Stats struct {
	ControlRequests int
	BulkTransfers   int
	BulkZLPs        int
	InterruptPacket int
	BenchBytesIn    int
	BenchBytesOut   int
}

type Device struct {
	quirks Quirks

	mu             sync.Mutex
	closed         bool
	controlTimeout time.Duration
	controlBuf     []byte
	bench          bool
	bulkPending    []byte
	bulkIn         [][]byte
	interruptIn    [][]byte
	stats          Stats
}

// New returns an emulated test class device with the given bugs.
func New(quirks Quirks) *Device {
	return &Device{
		quirks: quirks,
	}
}

func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Device) BenchEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bench
}

func (d *Device) UseTestInterface() (devices.TestEndpoints, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return devices.TestEndpoints{}, fmt.Errorf("device closed")
	}
	return devices.TestEndpoints{
		BulkIn:                 &bulkInEndpoint{d},
		BulkOut:                &bulkOutEndpoint{d},
		InterruptIn:            &interruptInEndpoint{d},
		InterruptOut:           &interruptOutEndpoint{d},
		BulkMaxPacketSize:      protocol.BulkMaxPacketSize,
		InterruptMaxPacketSize: protocol.InterruptMaxPacketSize,
	}, nil
}

func (d *Device) SetControlTimeout(dur time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.controlTimeout = dur
	return nil
}

func (d *Device) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, fmt.Errorf("device closed")
	}
	d.stats.ControlRequests++
	glog.V(2).Infof("emulator: control %s request %d val 0x%04x idx 0x%04x len %d", protocol.DescribeRequestType(rType), request, val, idx, len(data))

	dir, typ, rcpt := protocol.ParseRequestType(rType)
	switch {
	case typ == protocol.TypeStandard && dir == protocol.DirectionIn && request == 0x06:
		return d.getDescriptor(val, data)
	case typ != protocol.TypeVendor || rcpt != protocol.RecipientDevice:
		return 0, devices.UsbStallError
	case dir == protocol.DirectionOut:
		return d.controlOut(rType, protocol.Request(request), val, idx, data)
	default:
		return d.controlIn(protocol.Request(request), data)
	}
}

func (d *Device) controlOut(rType uint8, request protocol.Request, val, idx uint16, data []byte) (int, error) {
	switch request {
	case protocol.RequestStoreRequest:
		d.controlBuf = protocol.StoredRequestHeader(rType, request, val, idx, uint16(len(data)))
		if d.quirks.BigEndianStoredValue {
			binary.BigEndian.PutUint16(d.controlBuf[2:4], val)
		}
		return len(data), nil
	case protocol.RequestWriteBuffer:
		if len(data) > controlBufferSize {
			return 0, devices.UsbStallError
		}
		d.controlBuf = append([]byte(nil), data...)
		return len(data), nil
	case protocol.RequestSetBenchEnabled:
		d.bench = val != 0
		d.bulkPending = nil
		d.bulkIn = nil
		return len(data), nil
	}
	if d.quirks.AcceptUnknownRequests {
		return len(data), nil
	}
	return 0, devices.UsbStallError
}

func (d *Device) controlIn(request protocol.Request, data []byte) (int, error) {
	switch request {
	case protocol.RequestReadBuffer:
		return copy(data, d.controlBuf), nil
	case protocol.RequestReadLongData:
		ld := protocol.LongData()
		if d.quirks.ShortLongData {
			ld = ld[:len(ld)-1]
		}
		return copy(data, ld), nil
	}
	return 0, devices.UsbStallError
}

func (d *Device) strings() map[int]string {
	product := protocol.Product
	if d.quirks.WrongProduct {
		product = product[:len(product)-1] + "X"
	}
	return map[int]string{
		protocol.ManufacturerIndex:         protocol.Manufacturer,
		protocol.ProductIndex:              product,
		protocol.SerialNumberIndex:         protocol.SerialNumber,
		protocol.CustomStringIndex:         protocol.CustomString,
		protocol.InterfaceDescriptionIndex: protocol.InterfaceDescription,
	}
}

func (d *Device) GetStringDescriptor(descIndex int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return "", fmt.Errorf("device closed")
	}
	s, ok := d.strings()[descIndex]
	if !ok {
		return "", fmt.Errorf("string descriptor %d: %w", descIndex, devices.UsbStallError)
	}
	return s, nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("already closed")
	}
	d.closed = true
	return nil
}
