package protocol

import "fmt"

// Direction is bit 7 of bmRequestType.
type Direction uint8

const (
	DirectionOut Direction = 0
	DirectionIn  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "OUT"
	case DirectionIn:
		return "IN"
	}
	return "INVALID"
}

// Type is bits 6..5 of bmRequestType.
type Type uint8

const (
	TypeStandard Type = 0
	TypeClass    Type = 1
	TypeVendor   Type = 2
	TypeReserved Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeStandard:
		return "standard"
	case TypeClass:
		return "class"
	case TypeVendor:
		return "vendor"
	case TypeReserved:
		return "reserved"
	}
	return "invalid"
}

// Recipient is bits 4..0 of bmRequestType.
type Recipient uint8

const (
	RecipientDevice    Recipient = 0
	RecipientInterface Recipient = 1
	RecipientEndpoint  Recipient = 2
	RecipientOther     Recipient = 3
)

func (r Recipient) String() string {
	switch r {
	case RecipientDevice:
		return "device"
	case RecipientInterface:
		return "interface"
	case RecipientEndpoint:
		return "endpoint"
	case RecipientOther:
		return "other"
	}
	return "invalid"
}

// RequestType encodes bmRequestType.
func RequestType(dir Direction, typ Type, recipient Recipient) uint8 {
	return uint8(dir&1)<<7 | uint8(typ&0b11)<<5 | uint8(recipient&0b11111)
}

// ParseRequestType splits bmRequestType into its fields.
func ParseRequestType(rType uint8) (Direction, Type, Recipient) {
	return Direction(rType >> 7), Type((rType >> 5) & 0b11), Recipient(rType & 0b11111)
}

// Request types used by the test class.
var (
	VendorOut = RequestType(DirectionOut, TypeVendor, RecipientDevice)
	VendorIn  = RequestType(DirectionIn, TypeVendor, RecipientDevice)
)

// DescribeRequestType renders bmRequestType for logs.
func DescribeRequestType(rType uint8) string {
	dir, typ, rcpt := ParseRequestType(rType)
	return fmt.Sprintf("%s %s %s", dir, typ, rcpt)
}
