package suite

import (
	"time"

	"github.com/golang/glog"

	"github.com/freemyipod/testclass/pkg/protocol"
)

const (
	BenchTransferBytes = 64 * 1024
	BenchTransfers     = 16
	BenchTotalBytes    = BenchTransferBytes * BenchTransfers
)

// runBench puts the device in benchmark mode and times BenchTransfers calls
// of op on one BenchTransferBytes buffer. Reads overwrite the buffer in place.
// The first failing transfer aborts the benchmark without a measurement.
func runBench(d *Device, out *Output, op func(data []byte) error) error {
	if _, err := d.WriteControl(protocol.RequestSetBenchEnabled, 1, 0, nil, d.Timeouts.Transfer); err != nil {
		return transportFailure("enable bench mode", err)
	}

	data := randomData(BenchTransferBytes)

	start := time.Now()
	for i := 0; i < BenchTransfers; i++ {
		if err := op(data); err != nil {
			return err
		}
	}

	run := BenchmarkRun{
		TransferSize: BenchTransferBytes,
		Transfers:    BenchTransfers,
		Elapsed:      time.Since(start),
	}
	glog.Infof("Benchmark: %d bytes in %s", run.TotalBytes(), run.Elapsed)
	out.Benchmarks = append(out.Benchmarks, run)
	out.Printf("%s\n", run)
	return nil
}
