package suite

import (
	"fmt"
	"math/rand/v2"

	"github.com/freemyipod/testclass/pkg/boundary"
	"github.com/freemyipod/testclass/pkg/protocol"
)

// Lengths exercised by the loopback cases.
var (
	controlDataLengths = boundary.Straddle(8, 2)
	bulkLengths        = boundary.Bulk(protocol.BulkMaxPacketSize)
	interruptLengths   = boundary.Interrupt(protocol.InterruptMaxPacketSize)
)

func randomData(n int) []byte {
	res := make([]byte, n)
	for i := 0; i < n; i += 8 {
		v := rand.Uint64()
		for j := 0; j < 8 && i+j < n; j++ {
			res[i+j] = uint8(v >> (8 * j))
		}
	}
	return res
}

func stringDescriptors(d *Device, _ *Output) error {
	desc, err := d.DeviceDescriptor(d.Timeouts.Transfer)
	if err != nil {
		return transportFailure("read device descriptor", err)
	}

	for _, s := range []struct {
		name  string
		index int
		want  string
	}{
		{"product string", desc.ProductIndex, protocol.Product},
		{"manufacturer string", desc.ManufacturerIndex, protocol.Manufacturer},
		{"serial number string", desc.SerialNumberIndex, protocol.SerialNumber},
		{"custom string", protocol.CustomStringIndex, protocol.CustomString},
	} {
		if s.index == 0 {
			return &Failure{Kind: FailureMismatch, Check: s.name + " index", Want: "non-zero", Got: 0}
		}
		got, err := d.ReadString(s.index, d.Timeouts.Transfer)
		if err != nil {
			return transportFailure("read "+s.name, err)
		}
		if err := expectString(s.name, s.want, got); err != nil {
			return err
		}
	}
	return nil
}

func interfaceName(d *Device, _ *Output) error {
	cfg, err := d.ConfigDescriptor(0, d.Timeouts.Transfer)
	if err != nil {
		return transportFailure("read configuration descriptor", err)
	}
	intf, err := cfg.FirstInterface()
	if err != nil {
		return transportFailure("get interface descriptors", err)
	}
	if intf.DescriptionIndex == 0 {
		return &Failure{Kind: FailureMismatch, Check: "interface description string index", Want: "non-zero", Got: 0}
	}

	got, err := d.ReadString(intf.DescriptionIndex, d.Timeouts.Transfer)
	if err != nil {
		return transportFailure("read interface description descriptor", err)
	}
	return expectString("interface description", protocol.InterfaceDescription, got)
}

func controlRequest(d *Device, _ *Output) error {
	val := uint16(rand.Uint32())
	idx := uint16(rand.Uint32())
	data := randomData(rand.IntN(16))

	want := protocol.StoredRequestHeader(protocol.VendorOut, protocol.RequestStoreRequest, val, idx, uint16(len(data)))

	n, err := d.WriteControl(protocol.RequestStoreRequest, val, idx, data, d.Timeouts.Transfer)
	if err := expectCount("control write", len(data), n, err); err != nil {
		return err
	}

	response := make([]byte, protocol.StoredRequestHeaderLength)
	n, err = d.ReadControl(protocol.RequestReadBuffer, 0, 0, response, d.Timeouts.Transfer)
	if err := expectCount("control read", len(response), n, err); err != nil {
		return err
	}
	return expectBytes("stored request", want, response)
}

func controlData(d *Device, _ *Output) error {
	for _, l := range controlDataLengths {
		data := randomData(l)

		n, err := d.WriteControl(protocol.RequestWriteBuffer, 0, 0, data, d.Timeouts.Transfer)
		if err := expectCount(fmt.Sprintf("control write len %d", l), len(data), n, err); err != nil {
			return err
		}

		response := make([]byte, l)
		n, err = d.ReadControl(protocol.RequestReadBuffer, 0, 0, response, d.Timeouts.Transfer)
		if err := expectCount(fmt.Sprintf("control read len %d", l), len(data), n, err); err != nil {
			return err
		}
		if err := expectBytes(fmt.Sprintf("control read len %d", l), data, response); err != nil {
			return err
		}
	}
	return nil
}

func controlDataStatic(d *Device, _ *Output) error {
	response := make([]byte, protocol.LongDataLength)
	n, err := d.ReadControl(protocol.RequestReadLongData, 0, 0, response, d.Timeouts.Transfer)
	if err := expectCount("control read", len(response), n, err); err != nil {
		return err
	}
	return expectBytes("control read", protocol.LongData(), response)
}

func controlError(d *Device, _ *Output) error {
	if _, err := d.WriteControl(protocol.RequestUnknown, 0, 0, nil, d.Timeouts.Transfer); err == nil {
		return &Failure{Kind: FailureUnexpectedSuccess, Check: "unknown control request succeeded"}
	}
	return nil
}

func bulkLoopback(d *Device, _ *Output) error {
	mps := d.BulkMaxPacketSize()
	for _, l := range bulkLengths {
		data := randomData(l)

		n, err := d.WriteBulk(data, d.Timeouts.Transfer)
		if err := expectCount(fmt.Sprintf("bulk write len %d", l), len(data), n, err); err != nil {
			return err
		}

		if boundary.NeedsZLP(l, mps) {
			n, err := d.WriteBulk(nil, d.Timeouts.Transfer)
			if err := expectCount("bulk write zero-length packet", 0, n, err); err != nil {
				return err
			}
		}

		response := make([]byte, l)
		n, err = d.ReadBulk(response, d.Timeouts.Transfer)
		if err := expectCount(fmt.Sprintf("bulk read len %d", l), len(data), n, err); err != nil {
			return err
		}
		if err := expectBytes(fmt.Sprintf("bulk read len %d", l), data, response); err != nil {
			return err
		}
	}
	return nil
}

func interruptLoopback(d *Device, _ *Output) error {
	for _, l := range interruptLengths {
		data := randomData(l)

		n, err := d.WriteInterrupt(data, d.Timeouts.Transfer)
		if err := expectCount(fmt.Sprintf("interrupt write len %d", l), len(data), n, err); err != nil {
			return err
		}

		response := make([]byte, l)
		n, err = d.ReadInterrupt(response, d.Timeouts.Transfer)
		if err := expectCount(fmt.Sprintf("interrupt read len %d", l), len(data), n, err); err != nil {
			return err
		}
		if err := expectBytes(fmt.Sprintf("interrupt read len %d", l), data, response); err != nil {
			return err
		}
	}
	return nil
}

func benchBulkWrite(d *Device, out *Output) error {
	return runBench(d, out, func(data []byte) error {
		n, err := d.WriteBulk(data, d.Timeouts.Bench)
		return expectCount("bulk write", len(data), n, err)
	})
}

func benchBulkRead(d *Device, out *Output) error {
	return runBench(d, out, func(data []byte) error {
		n, err := d.ReadBulk(data, d.Timeouts.Bench)
		return expectCount("bulk read", len(data), n, err)
	})
}
