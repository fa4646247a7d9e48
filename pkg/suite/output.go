package suite

import (
	"bytes"
	"fmt"
	"time"
)

// Output collects what a test case wants to show the user. Benchmark cases
// also record their measurements on it.
type Output struct {
	buf        bytes.Buffer
	Benchmarks []BenchmarkRun
}

func (o *Output) Write(p []byte) (int, error) {
	return o.buf.Write(p)
}

func (o *Output) Printf(format string, args ...any) {
	fmt.Fprintf(&o.buf, format, args...)
}

func (o *Output) String() string {
	return o.buf.String()
}

// BenchmarkRun is one measured benchmark.
type BenchmarkRun struct {
	TransferSize int           `json:"transfer_size"`
	Transfers    int           `json:"transfers"`
	Elapsed      time.Duration `json:"elapsed"`
}

func (b BenchmarkRun) TotalBytes() int {
	return b.TransferSize * b.Transfers
}

// Throughput in Mbit/s.
func (b BenchmarkRun) Throughput() float64 {
	return Throughput(b.TotalBytes(), b.Elapsed)
}

// Throughput returns the rate at which total bytes moved in elapsed, in
// Mbit/s.
func Throughput(total int, elapsed time.Duration) float64 {
	return float64(total*8) / 1_000_000.0 / elapsed.Seconds()
}

func (b BenchmarkRun) String() string {
	return fmt.Sprintf("  %d transfers of %d bytes in %.3fs -> %.3fMbit/s", b.Transfers, b.TransferSize, b.Elapsed.Seconds(), b.Throughput())
}
