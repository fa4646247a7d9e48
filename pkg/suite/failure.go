package suite

import (
	"bytes"
	"fmt"
)

type FailureKind int

const (
	// FailureTransport means the transfer itself failed or timed out.
	FailureTransport FailureKind = iota
	// FailureMismatch means a count or payload differs from the expected one.
	FailureMismatch
	// FailureUnexpectedSuccess means a transfer that must fail succeeded.
	FailureUnexpectedSuccess
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureMismatch:
		return "mismatch"
	case FailureUnexpectedSuccess:
		return "unexpected success"
	}
	return "UNKNOWN"
}

// Failure is returned by a test case that found the device misbehaving. Check
// names the sub-check, eg. "bulk read len 64".
type Failure struct {
	Kind  FailureKind
	Check string
	Err   error
	Want  any
	Got   any
}

func (f *Failure) Error() string {
	switch f.Kind {
	case FailureTransport:
		return fmt.Sprintf("%s: %v", f.Check, f.Err)
	case FailureMismatch:
		return fmt.Sprintf("%s: expected %s, got %s", f.Check, describe(f.Want), describe(f.Got))
	}
	return f.Check
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func describe(v any) string {
	switch v := v.(type) {
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return fmt.Sprintf("[% x]", v)
	case string:
		return fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%v", v)
}

func transportFailure(check string, err error) error {
	return &Failure{Kind: FailureTransport, Check: check, Err: err}
}

// expectCount checks the result of a transfer that should have moved exactly
// want bytes.
func expectCount(check string, want, got int, err error) error {
	if err != nil {
		return transportFailure(check, err)
	}
	if want != got {
		return &Failure{Kind: FailureMismatch, Check: check + " count", Want: want, Got: got}
	}
	return nil
}

func expectBytes(check string, want, got []byte) error {
	if !bytes.Equal(want, got) {
		return &Failure{Kind: FailureMismatch, Check: check + " data", Want: want, Got: got}
	}
	return nil
}

func expectString(check, want, got string) error {
	if want != got {
		return &Failure{Kind: FailureMismatch, Check: check, Want: want, Got: got}
	}
	return nil
}
