package protocol

import (
	"bytes"
	"testing"
)

func TestRequestType(t *testing.T) {
	for _, tc := range []struct {
		dir  Direction
		typ  Type
		rcpt Recipient
		want uint8
	}{
		{DirectionOut, TypeVendor, RecipientDevice, 0x40},
		{DirectionIn, TypeVendor, RecipientDevice, 0xc0},
		{DirectionIn, TypeStandard, RecipientDevice, 0x80},
		{DirectionOut, TypeClass, RecipientInterface, 0x21},
		{DirectionIn, TypeClass, RecipientInterface, 0xa1},
	} {
		if got := RequestType(tc.dir, tc.typ, tc.rcpt); got != tc.want {
			t.Errorf("RequestType(%s, %s, %s) = 0x%02x, want 0x%02x", tc.dir, tc.typ, tc.rcpt, got, tc.want)
		}
		dir, typ, rcpt := ParseRequestType(tc.want)
		if dir != tc.dir || typ != tc.typ || rcpt != tc.rcpt {
			t.Errorf("ParseRequestType(0x%02x) = %s %s %s", tc.want, dir, typ, rcpt)
		}
	}
	if want := uint8(0x02 << 5); VendorOut != want {
		t.Errorf("VendorOut = 0x%02x, want 0x%02x", VendorOut, want)
	}
}

func TestStoredRequestHeader(t *testing.T) {
	got := StoredRequestHeader(VendorOut, RequestStoreRequest, 0x1234, 0xabcd, 15)
	want := []byte{0x40, 0x01, 0x34, 0x12, 0xcd, 0xab, 0x0f, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("wrong header: %x, want %x", got, want)
	}
}

func TestLongData(t *testing.T) {
	d := LongData()
	if len(d) != 257 {
		t.Fatalf("long data is %d bytes", len(d))
	}
	for i, b := range d {
		if b != 0x17 {
			t.Fatalf("byte %d is 0x%02x", i, b)
		}
	}
	d[0] = 0
	if LongData()[0] != 0x17 {
		t.Fatalf("LongData returned shared buffer")
	}
}
