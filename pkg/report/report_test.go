package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freemyipod/testclass/pkg/suite"
)

func sampleReport(started time.Time) *Report {
	return New(started, "emulator", []*suite.Result{
		{Name: "control_request", Duration: 3 * time.Millisecond},
		{Name: "bulk_loopback", Err: errors.New("bulk read len 65 count: want 65, got 64"), Duration: time.Second},
		{
			Name:     "bench_bulk_write",
			Output:   "  16 transfers of 65536 bytes in 0.100s -> 83.886Mbit/s\n",
			Duration: 100 * time.Millisecond,
			Benchmarks: []suite.BenchmarkRun{
				{TransferSize: 65536, Transfers: 16, Elapsed: 100 * time.Millisecond},
			},
		},
	})
}

func TestNew(t *testing.T) {
	r := sampleReport(time.Now())
	require.Len(t, r.Entries, 3)
	assert.True(t, r.Entries[0].Passed)
	assert.False(t, r.Entries[1].Passed)
	assert.Contains(t, r.Entries[1].Error, "len 65")

	passed, failed := r.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, failed)
	assert.False(t, r.Passed())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, sampleReport(time.Now()))
	out := buf.String()

	for _, want := range []string{"CONTROL_REQUEST", "PASS", "FAIL", "83.886 Mbit/s", "2 passed, 1 failed"} {
		assert.Contains(t, strings.ToUpper(out), strings.ToUpper(want))
	}
}

func TestStore(t *testing.T) {
	s := &Store{Dir: filepath.Join(t.TempDir(), "reports")}

	// Nothing saved yet.
	reports, err := s.List(0)
	require.NoError(t, err)
	assert.Empty(t, reports)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		p, err := s.Save(sampleReport(base.Add(time.Duration(i) * time.Minute)))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(p, ".json.xz"))
	}
	// Not a report.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "notes.txt"), []byte("hi"), 0644))

	reports, err = s.List(0)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.True(t, reports[0].Started.Equal(base.Add(2*time.Minute)), "newest first")
	assert.True(t, reports[2].Started.Equal(base))

	reports, err = s.List(2)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	got := reports[0]
	assert.Equal(t, "emulator", got.Device)
	require.Len(t, got.Entries, 3)
	assert.Equal(t, time.Second, got.Entries[1].Duration)
	require.Len(t, got.Entries[2].Benchmarks, 1)
	assert.Equal(t, 65536, got.Entries[2].Benchmarks[0].TransferSize)

	var hist bytes.Buffer
	WriteHistory(&hist, reports)
	assert.Contains(t, hist.String(), "2024-05-01T12:02:00Z")
}

func TestStoreCorrupt(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	_, err := s.Save(sampleReport(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	bad := filepath.Join(s.Dir, "20240502T120000.000000000Z.json.xz")
	require.NoError(t, os.WriteFile(bad, []byte("not xz"), 0644))

	reports, err := s.List(0)
	assert.Error(t, err)
	assert.Len(t, reports, 1)
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "testclass.prom")
	require.NoError(t, WriteMetrics(path, sampleReport(time.Unix(1714564800, 0))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `testclass_test_passed{test="control_request"} 1`)
	assert.Contains(t, out, `testclass_test_passed{test="bulk_loopback"} 0`)
	assert.Contains(t, out, `testclass_test_duration_seconds{test="bulk_loopback"} 1`)
	assert.Contains(t, out, `testclass_benchmark_throughput_mbits{test="bench_bulk_write"} 83.886`)
	assert.Contains(t, out, `testclass_last_run_timestamp_seconds 1.7145648e+09`)
}
