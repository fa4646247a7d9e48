// Package protocol defines the vendor-specific test class spoken between the
// harness and the device firmware under test. Every value here must match the
// firmware byte for byte.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// Device identity of the test class firmware.
const (
	VID = 0x16c0
	PID = 0x05dc
)

type Request uint8

const (
	RequestStoreRequest    Request = 1
	RequestReadBuffer      Request = 2
	RequestWriteBuffer     Request = 3
	RequestSetBenchEnabled Request = 4
	RequestReadLongData    Request = 5
	// RequestUnknown is never assigned by the firmware and must stall.
	RequestUnknown Request = 42
)

func (r Request) String() string {
	switch r {
	case RequestStoreRequest:
		return "STORE_REQUEST"
	case RequestReadBuffer:
		return "READ_BUFFER"
	case RequestWriteBuffer:
		return "WRITE_BUFFER"
	case RequestSetBenchEnabled:
		return "SET_BENCH_ENABLED"
	case RequestReadLongData:
		return "READ_LONG_DATA"
	case RequestUnknown:
		return "UNKNOWN"
	}
	return fmt.Sprintf("REQUEST(%d)", uint8(r))
}

// Expected string descriptor contents.
const (
	Manufacturer         = "TestClass Manufacturer"
	Product              = "virkkunen.net usb-device TestClass"
	SerialNumber         = "TestClass Serial"
	CustomString         = "TestClass Custom String"
	InterfaceDescription = "TestClass Interface"
)

// String descriptor indices used by the firmware. Only CustomStringIndex is
// part of the contract, the others are discovered through descriptors.
const (
	ManufacturerIndex         = 1
	ProductIndex              = 2
	SerialNumberIndex         = 3
	CustomStringIndex         = 4
	InterfaceDescriptionIndex = 5
)

// LangIDEnglishUS is the language the strings are read in.
const LangIDEnglishUS = 0x0409

// Endpoint max packet sizes of the firmware.
const (
	BulkMaxPacketSize      = 64
	InterruptMaxPacketSize = 31
)

// LongDataLength is larger than any control max packet size, forcing a
// multi-transaction data stage.
const LongDataLength = 257

// LongData returns the payload answered to RequestReadLongData.
func LongData() []byte {
	res := make([]byte, LongDataLength)
	for i := range res {
		res[i] = 0x17
	}
	return res
}

// StoredRequestHeaderLength is the size of the record produced by
// RequestStoreRequest.
const StoredRequestHeaderLength = 8

// StoredRequestHeader builds the record the firmware must return on
// RequestReadBuffer after receiving a control request with the given fields.
func StoredRequestHeader(rType uint8, request Request, val, idx, length uint16) []byte {
	res := make([]byte, StoredRequestHeaderLength)
	res[0] = rType
	res[1] = uint8(request)
	binary.LittleEndian.PutUint16(res[2:4], val)
	binary.LittleEndian.PutUint16(res[4:6], idx)
	binary.LittleEndian.PutUint16(res[6:8], length)
	return res
}
