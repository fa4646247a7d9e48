package suite

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freemyipod/testclass/pkg/devices"
	"github.com/freemyipod/testclass/pkg/emulator"
)

// Short enough that reads the emulator cannot answer time out quickly.
var testTimeouts = Timeouts{
	Transfer: 50 * time.Millisecond,
	Bench:    time.Second,
}

func newEmulated(t *testing.T, quirks emulator.Quirks) (*Device, *emulator.Device) {
	t.Helper()
	emu := emulator.New(quirks)
	d, err := NewDevice(emu, testTimeouts)
	require.NoError(t, err)
	return d, emu
}

func TestAllPass(t *testing.T) {
	d, _ := newEmulated(t, emulator.Quirks{})

	var seen []string
	results, err := Run(d, All(), func(r *Result) {
		seen = append(seen, r.Name)
	})
	require.NoError(t, err)
	assert.Equal(t, Names(), seen)

	benchLine := regexp.MustCompile(`^  16 transfers of 65536 bytes in \d+\.\d{3}s -> \d+\.\d{3}Mbit/s\n$`)
	for _, r := range results {
		assert.True(t, r.Passed(), "%s: %v", r.Name, r.Err)
		switch r.Name {
		case "bench_bulk_write", "bench_bulk_read":
			assert.Regexp(t, benchLine, r.Output, r.Name)
			require.Len(t, r.Benchmarks, 1, r.Name)
			assert.Equal(t, BenchTotalBytes, r.Benchmarks[0].TotalBytes())
		default:
			assert.Empty(t, r.Output, r.Name)
			assert.Empty(t, r.Benchmarks, r.Name)
		}
	}
}

func TestOrderIndependent(t *testing.T) {
	d, _ := newEmulated(t, emulator.Quirks{})

	all := All()
	reversed := make([]Test, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		reversed = append(reversed, all[i])
	}
	_, err := Run(d, reversed, nil)
	require.NoError(t, err)

	// Again, now that the device is left in bench mode by the last case.
	_, err = Run(d, all, nil)
	require.NoError(t, err)
}

func TestBulkLoopbackSendsZLPs(t *testing.T) {
	d, emu := newEmulated(t, emulator.Quirks{})
	require.NoError(t, bulkLoopback(d, &Output{}))

	// Lengths 0, 64 and 128 are each followed by an explicit ZLP, and the
	// zero length write itself is one.
	assert.Equal(t, 4, emu.Stats().BulkZLPs)
}

func TestBulkWithoutZLPTimesOut(t *testing.T) {
	d, _ := newEmulated(t, emulator.Quirks{})

	data := randomData(64)
	n, err := d.WriteBulk(data, d.Timeouts.Transfer)
	require.NoError(t, err)
	require.Equal(t, 64, n)

	_, err = d.ReadBulk(make([]byte, 64), d.Timeouts.Transfer)
	assert.ErrorIs(t, err, devices.UsbTimeoutError)
}

func TestDetectsFirmwareBugs(t *testing.T) {
	for _, tc := range []struct {
		name   string
		quirks emulator.Quirks
		test   string
		kind   FailureKind
		check  string
	}{
		{"wrong product", emulator.Quirks{WrongProduct: true}, "string_descriptors", FailureMismatch, "product string"},
		{"wrong interface string", emulator.Quirks{WrongInterfaceString: true}, "interface_name", FailureMismatch, "interface description"},
		{"short long data", emulator.Quirks{ShortLongData: true}, "control_data_static", FailureMismatch, "control read count"},
		{"unknown request accepted", emulator.Quirks{AcceptUnknownRequests: true}, "control_error", FailureUnexpectedSuccess, "unknown control request succeeded"},
		{"bulk byte dropped", emulator.Quirks{DropBulkLastByte: true}, "bulk_loopback", FailureMismatch, "bulk read len 1 count"},
		{"bulk split on full packet", emulator.Quirks{CompleteOnFullPacket: true}, "bulk_loopback", FailureMismatch, "bulk read len 65 count"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newEmulated(t, tc.quirks)
			test, ok := Lookup(tc.test)
			require.True(t, ok)

			results, err := Run(d, []Test{test}, nil)
			require.Error(t, err)
			require.Len(t, results, 1)

			var f *Failure
			require.True(t, errors.As(results[0].Err, &f), "%v", results[0].Err)
			assert.Equal(t, tc.kind, f.Kind)
			assert.Equal(t, tc.check, f.Check)
		})
	}
}

func TestDetectsStoredRequestByteOrder(t *testing.T) {
	d, _ := newEmulated(t, emulator.Quirks{BigEndianStoredValue: true})

	// A random value with equal bytes is stored the same in both orders, so
	// give the case a few attempts.
	var f *Failure
	for i := 0; i < 8 && f == nil; i++ {
		err := controlRequest(d, &Output{})
		if err != nil {
			require.True(t, errors.As(err, &f), "%v", err)
		}
	}
	require.NotNil(t, f)
	assert.Equal(t, FailureMismatch, f.Kind)
	assert.Equal(t, "stored request data", f.Check)
}

func TestTransportFailure(t *testing.T) {
	d, emu := newEmulated(t, emulator.Quirks{})
	require.NoError(t, emu.Close())

	err := controlData(d, &Output{})
	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, FailureTransport, f.Kind)
	assert.Equal(t, "control write len 0", f.Check)
	assert.Contains(t, err.Error(), "device closed")
}

func TestBenchAbortsOnFailure(t *testing.T) {
	d, emu := newEmulated(t, emulator.Quirks{})
	out := &Output{}
	calls := 0
	err := runBench(d, out, func(data []byte) error {
		calls++
		if calls == 3 {
			return transportFailure("bulk write", devices.UsbTimeoutError)
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Empty(t, out.String())
	assert.Empty(t, out.Benchmarks)
	assert.True(t, emu.BenchEnabled())
}

func TestBenchReusesBuffer(t *testing.T) {
	d, _ := newEmulated(t, emulator.Quirks{})
	var bufs [][]byte
	require.NoError(t, runBench(d, &Output{}, func(data []byte) error {
		bufs = append(bufs, data)
		return nil
	}))
	require.Len(t, bufs, BenchTransfers)
	for _, b := range bufs {
		assert.Len(t, b, BenchTransferBytes)
		assert.Same(t, &bufs[0][0], &b[0])
	}
}

func TestThroughput(t *testing.T) {
	assert.InDelta(t, 8.388608, Throughput(BenchTotalBytes, time.Second), 1e-9)

	prev := Throughput(BenchTotalBytes, time.Millisecond)
	for _, el := range []time.Duration{10 * time.Millisecond, 100 * time.Millisecond, time.Second, 10 * time.Second} {
		cur := Throughput(BenchTotalBytes, el)
		assert.Less(t, cur, prev, "throughput at %s", el)
		prev = cur
	}

	b := BenchmarkRun{TransferSize: BenchTransferBytes, Transfers: BenchTransfers, Elapsed: 2 * time.Second}
	assert.Equal(t, "  16 transfers of 65536 bytes in 2.000s -> 4.194Mbit/s", b.String())
}

func TestRandomData(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 65536} {
		assert.Len(t, randomData(n), n)
	}
}
