package emulator

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/freemyipod/testclass/pkg/devices"
	"github.com/freemyipod/testclass/pkg/protocol"
)

type bulkOutEndpoint struct{ d *Device }
type bulkInEndpoint struct{ d *Device }
type interruptOutEndpoint struct{ d *Device }
type interruptInEndpoint struct{ d *Device }

// packets splits a transfer the way a host controller would. An empty transfer
// is a single zero-length packet.
func packets(buf []byte, maxPacket int) [][]byte {
	if len(buf) == 0 {
		return [][]byte{{}}
	}
	var res [][]byte
	for off := 0; off < len(buf); off += maxPacket {
		end := min(off+maxPacket, len(buf))
		res = append(res, buf[off:end])
	}
	return res
}

func (e *bulkOutEndpoint) WriteContext(ctx context.Context, buf []byte) (int, error) {
	d := e.d
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, fmt.Errorf("device closed")
	}

	if d.bench {
		d.stats.BenchBytesOut += len(buf)
		return len(buf), nil
	}

	for _, p := range packets(buf, protocol.BulkMaxPacketSize) {
		d.bulkPending = append(d.bulkPending, p...)
		if len(p) == 0 {
			d.stats.BulkZLPs++
		}
		full := len(p) == protocol.BulkMaxPacketSize
		if full && !d.quirks.CompleteOnFullPacket {
			continue
		}
		// Short packet, transfer complete: loop it back. The firmware has a
		// single IN buffer, so an empty transfer completing while an echo is
		// still waiting to be read is absorbed into it.
		t := d.bulkPending
		d.bulkPending = nil
		if len(t) == 0 && len(d.bulkIn) > 0 {
			continue
		}
		if d.quirks.DropBulkLastByte && len(t) > 0 {
			t = t[:len(t)-1]
		}
		d.bulkIn = append(d.bulkIn, t)
		d.stats.BulkTransfers++
		glog.V(2).Infof("emulator: bulk transfer of %d bytes complete", len(t))
	}
	return len(buf), nil
}

// dequeue pops the oldest pending transfer of a queue, waiting for the context
// to expire if there is none. Nothing else can fill the queue while the
// harness is blocked reading, so waiting is only a model of the host timeout.
func (d *Device) dequeue(ctx context.Context, queue *[][]byte, buf []byte) (int, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, fmt.Errorf("device closed")
	}
	if len(*queue) == 0 {
		d.mu.Unlock()
		<-ctx.Done()
		return 0, devices.UsbTimeoutError
	}
	defer d.mu.Unlock()

	t := (*queue)[0]
	*queue = (*queue)[1:]
	if len(t) > len(buf) {
		return 0, fmt.Errorf("%d byte transfer into %d byte buffer: %w", len(t), len(buf), devices.UsbOverflowError)
	}
	return copy(buf, t), nil
}

func (e *bulkInEndpoint) ReadContext(ctx context.Context, buf []byte) (int, error) {
	d := e.d
	d.mu.Lock()
	if d.bench && !d.closed {
		defer d.mu.Unlock()
		for i := range buf {
			buf[i] = uint8(i)
		}
		d.stats.BenchBytesIn += len(buf)
		return len(buf), nil
	}
	d.mu.Unlock()
	return d.dequeue(ctx, &d.bulkIn, buf)
}

func (e *interruptOutEndpoint) WriteContext(ctx context.Context, buf []byte) (int, error) {
	d := e.d
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, fmt.Errorf("device closed")
	}
	for _, p := range packets(buf, protocol.InterruptMaxPacketSize) {
		d.interruptIn = append(d.interruptIn, append([]byte{}, p...))
		d.stats.InterruptPacket++
	}
	return len(buf), nil
}

func (e *interruptInEndpoint) ReadContext(ctx context.Context, buf []byte) (int, error) {
	return e.d.dequeue(ctx, &e.d.interruptIn, buf)
}
