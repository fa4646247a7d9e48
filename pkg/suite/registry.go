// Package suite implements the test class conformance cases, the registry
// that names them and the runner that executes them against a device.
package suite

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slices"
)

// Func is a test case. It returns nil if the device behaved, and a *Failure
// describing the first violated check otherwise. Cases keep no state between
// calls.
type Func func(d *Device, out *Output) error

type Test struct {
	Name string
	Run  Func
}

var registry = []Test{
	{"string_descriptors", stringDescriptors},
	{"interface_name", interfaceName},
	{"control_request", controlRequest},
	{"control_data", controlData},
	{"control_data_static", controlDataStatic},
	{"control_error", controlError},
	{"bulk_loopback", bulkLoopback},
	{"interrupt_loopback", interruptLoopback},
	{"bench_bulk_write", benchBulkWrite},
	{"bench_bulk_read", benchBulkRead},
}

// All returns every test case in declaration order.
func All() []Test {
	return slices.Clone(registry)
}

func Names() []string {
	res := make([]string, len(registry))
	for i, t := range registry {
		res[i] = t.Name
	}
	return res
}

func Lookup(name string) (Test, bool) {
	i := slices.IndexFunc(registry, func(t Test) bool { return t.Name == name })
	if i == -1 {
		return Test{}, false
	}
	return registry[i], true
}

// Select returns the named test cases in the given order, or all of them if
// no names are given. Every unknown name is reported.
func Select(names []string) ([]Test, error) {
	if len(names) == 0 {
		return All(), nil
	}
	var res []Test
	var errs error
	var seen []string
	for _, name := range names {
		if slices.Contains(seen, name) {
			continue
		}
		seen = append(seen, name)
		t, ok := Lookup(name)
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("unknown test %q", name))
			continue
		}
		res = append(res, t)
	}
	if errs != nil {
		return nil, errs
	}
	return res, nil
}
