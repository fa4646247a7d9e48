package emulator

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/freemyipod/testclass/pkg/devices"
	"github.com/freemyipod/testclass/pkg/protocol"
)

const (
	// The usb-device default, small enough that LongData needs many packets.
	controlMaxPacketSize = 8

	epBulkOut      = 0x01
	epBulkIn       = 0x81
	epInterruptOut = 0x02
	epInterruptIn  = 0x82

	transferTypeBulk      = 0x02
	transferTypeInterrupt = 0x03
)

func (d *Device) getDescriptor(val uint16, data []byte) (int, error) {
	var desc []byte
	switch typ, index := uint8(val>>8), uint8(val); typ {
	case devices.DescriptorTypeDevice:
		desc = d.deviceDescriptor()
	case devices.DescriptorTypeConfig:
		if index != 0 {
			return 0, devices.UsbStallError
		}
		desc = d.configDescriptor()
	case devices.DescriptorTypeString:
		if index == 0 {
			desc = []byte{4, devices.DescriptorTypeString, 0, 0}
			binary.LittleEndian.PutUint16(desc[2:], protocol.LangIDEnglishUS)
			break
		}
		s, ok := d.strings()[int(index)]
		if !ok {
			return 0, devices.UsbStallError
		}
		desc = stringDescriptor(s)
	default:
		return 0, devices.UsbStallError
	}
	return copy(data, desc), nil
}

func (d *Device) deviceDescriptor() []byte {
	buf := bytes.NewBuffer(nil)
	binary.Write(buf, binary.LittleEndian, struct {
		BLength            uint8
		BDescriptorType    uint8
		BCDUSB             uint16
		BDeviceClass       uint8
		BDeviceSubClass    uint8
		BDeviceProtocol    uint8
		BMaxPacketSize0    uint8
		IDVendor           uint16
		IDProduct          uint16
		BCDDevice          uint16
		IManufacturer      uint8
		IProduct           uint8
		ISerialNumber      uint8
		BNumConfigurations uint8
	}{
		18, devices.DescriptorTypeDevice, 0x0200, 0, 0, 0, controlMaxPacketSize,
		protocol.VID, protocol.PID, 0x0010,
		protocol.ManufacturerIndex, protocol.ProductIndex, protocol.SerialNumberIndex, 1,
	})
	return buf.Bytes()
}

func (d *Device) configDescriptor() []byte {
	iInterface := uint8(protocol.InterfaceDescriptionIndex)
	if d.quirks.WrongInterfaceString {
		iInterface = protocol.CustomStringIndex
	}

	body := bytes.NewBuffer(nil)
	body.Write([]byte{9, devices.DescriptorTypeInterface, 0, 0, 4, 0xff, 0, 0, iInterface})
	for _, ep := range []struct {
		address, attributes uint8
		maxPacket           uint16
		interval            uint8
	}{
		{epBulkOut, transferTypeBulk, protocol.BulkMaxPacketSize, 0},
		{epBulkIn, transferTypeBulk, protocol.BulkMaxPacketSize, 0},
		{epInterruptOut, transferTypeInterrupt, protocol.InterruptMaxPacketSize, 1},
		{epInterruptIn, transferTypeInterrupt, protocol.InterruptMaxPacketSize, 1},
	} {
		body.Write([]byte{7, devices.DescriptorTypeEndpoint, ep.address, ep.attributes})
		binary.Write(body, binary.LittleEndian, ep.maxPacket)
		body.WriteByte(ep.interval)
	}

	total := 9 + body.Len()
	head := []byte{9, devices.DescriptorTypeConfig, 0, 0, 1, 1, 0, 0x80, 50}
	binary.LittleEndian.PutUint16(head[2:4], uint16(total))
	return append(head, body.Bytes()...)
}

func stringDescriptor(s string) []byte {
	units := utf16.Encode([]rune(s))
	res := make([]byte, 2+2*len(units))
	res[0] = uint8(len(res))
	res[1] = devices.DescriptorTypeString
	for i, u := range units {
		binary.LittleEndian.PutUint16(res[2+2*i:], u)
	}
	return res
}
