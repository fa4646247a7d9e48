package suite

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
)

type Result struct {
	Name       string
	Err        error
	Output     string
	Benchmarks []BenchmarkRun
	Duration   time.Duration
}

func (r *Result) Passed() bool {
	return r.Err == nil
}

// Run executes tests one after another on d. Each case starts with the
// device out of benchmark mode. A failing case does not stop the run.
// onResult, if given, is called as soon as a case finishes. The returned
// error aggregates every failure.
func Run(d *Device, tests []Test, onResult func(*Result)) ([]*Result, error) {
	var results []*Result
	var errs error
	for _, t := range tests {
		glog.Infof("Running %s...", t.Name)
		res := runOne(d, t)
		if res.Passed() {
			glog.Infof("%s passed in %s", t.Name, res.Duration)
		} else {
			glog.Errorf("%s failed: %v", t.Name, res.Err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", t.Name, res.Err))
		}
		results = append(results, res)
		if onResult != nil {
			onResult(res)
		}
	}
	return results, errs
}

func runOne(d *Device, t Test) (res *Result) {
	res = &Result{
		Name: t.Name,
	}
	out := &Output{}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic: %v", r)
		}
		res.Duration = time.Since(start)
		res.Output = out.String()
		res.Benchmarks = out.Benchmarks
	}()

	if err := d.reset(); err != nil {
		res.Err = transportFailure("prepare device", err)
		return
	}
	res.Err = t.Run(d, out)
	return
}
