// Package report turns suite results into something to keep: a summary
// table, a saved run history and Prometheus textfile metrics.
package report

import (
	"time"

	"github.com/freemyipod/testclass/pkg/suite"
)

// Entry is a single test case outcome as saved in a Report.
type Entry struct {
	Name       string               `json:"name"`
	Passed     bool                 `json:"passed"`
	Error      string               `json:"error,omitempty"`
	Output     string               `json:"output,omitempty"`
	Duration   time.Duration        `json:"duration"`
	Benchmarks []suite.BenchmarkRun `json:"benchmarks,omitempty"`
}

// Report is one run of the suite against one device.
type Report struct {
	Started time.Time `json:"started"`
	Device  string    `json:"device"`
	Entries []Entry   `json:"entries"`
}

// New builds a Report out of runner results.
func New(started time.Time, device string, results []*suite.Result) *Report {
	r := &Report{
		Started: started,
		Device:  device,
	}
	for _, res := range results {
		e := Entry{
			Name:       res.Name,
			Passed:     res.Passed(),
			Output:     res.Output,
			Duration:   res.Duration,
			Benchmarks: res.Benchmarks,
		}
		if res.Err != nil {
			e.Error = res.Err.Error()
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

// Counts returns the number of passed and failed entries.
func (r *Report) Counts() (passed, failed int) {
	for _, e := range r.Entries {
		if e.Passed {
			passed++
		} else {
			failed++
		}
	}
	return
}

func (r *Report) Passed() bool {
	_, failed := r.Counts()
	return failed == 0
}
