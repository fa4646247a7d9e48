package devices

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Only the fields needed to locate string descriptors are decoded, see USB 2.0
// section 9.6.

const (
	requestGetDescriptor = 0x06
	// IN, standard, device.
	requestTypeGetDescriptor = 0x80

	DescriptorTypeDevice    = 0x01
	DescriptorTypeConfig    = 0x02
	DescriptorTypeString    = 0x03
	DescriptorTypeInterface = 0x04
	DescriptorTypeEndpoint  = 0x05

	deviceDescLen = 18
	configDescLen = 9
	intfDescLen   = 9
)

type rawDeviceDescriptor struct {
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
}

type rawConfigDescriptor struct {
	BLength             uint8
	BDescriptorType     uint8
	WTotalLength        uint16
	BNumInterfaces      uint8
	BConfigurationValue uint8
	IConfiguration      uint8
	BmAttributes        uint8
	BMaxPower           uint8
}

type rawInterfaceDescriptor struct {
	BLength            uint8
	BDescriptorType    uint8
	BInterfaceNumber   uint8
	BAlternateSetting  uint8
	BNumEndpoints      uint8
	BInterfaceClass    uint8
	BInterfaceSubClass uint8
	BInterfaceProtocol uint8
	IInterface         uint8
}

type DeviceDescriptor struct {
	MaxControlPacketSize int
	VID, PID             uint16
	ManufacturerIndex    int
	ProductIndex         int
	SerialNumberIndex    int
	NumConfigs           int
}

type InterfaceDescriptor struct {
	Number, Alternate int
	NumEndpoints      int
	// DescriptionIndex is iInterface, 0 if the interface has no description.
	DescriptionIndex int
}

type ConfigDescriptor struct {
	Value      int
	Interfaces []InterfaceDescriptor
}

// FirstInterface returns the first alternate setting of the first interface
// in descriptor order.
func (c *ConfigDescriptor) FirstInterface() (*InterfaceDescriptor, error) {
	for i := range c.Interfaces {
		if c.Interfaces[i].Alternate == 0 {
			return &c.Interfaces[i], nil
		}
	}
	return nil, fmt.Errorf("configuration %d has no interfaces", c.Value)
}

func getDescriptor(usb Usb, typ, index uint8, length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := usb.Control(requestTypeGetDescriptor, requestGetDescriptor, uint16(typ)<<8|uint16(index), 0, buf)
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	return buf[:n], nil
}

func ReadDeviceDescriptor(usb Usb) (*DeviceDescriptor, error) {
	data, err := getDescriptor(usb, DescriptorTypeDevice, 0, deviceDescLen)
	if err != nil {
		return nil, err
	}
	return ParseDeviceDescriptor(data)
}

func ParseDeviceDescriptor(data []byte) (*DeviceDescriptor, error) {
	if len(data) < deviceDescLen {
		return nil, fmt.Errorf("device descriptor is %d bytes, want %d", len(data), deviceDescLen)
	}
	var d rawDeviceDescriptor
	if err := binary.Read(bytes.NewReader(data[:deviceDescLen]), binary.LittleEndian, &d); err != nil {
		return nil, fmt.Errorf("decoding device descriptor: %w", err)
	}
	if d.BDescriptorType != DescriptorTypeDevice {
		return nil, fmt.Errorf("descriptor type %d is not a device descriptor", d.BDescriptorType)
	}
	return &DeviceDescriptor{
		MaxControlPacketSize: int(d.BMaxPacketSize0),
		VID:                  d.IDVendor,
		PID:                  d.IDProduct,
		ManufacturerIndex:    int(d.IManufacturer),
		ProductIndex:         int(d.IProduct),
		SerialNumberIndex:    int(d.ISerialNumber),
		NumConfigs:           int(d.BNumConfigurations),
	}, nil
}

// ReadConfigDescriptor fetches configuration descriptor number index with all
// the interface and endpoint descriptors that follow it.
func ReadConfigDescriptor(usb Usb, index uint8) (*ConfigDescriptor, error) {
	head, err := getDescriptor(usb, DescriptorTypeConfig, index, configDescLen)
	if err != nil {
		return nil, err
	}
	if len(head) < configDescLen {
		return nil, fmt.Errorf("configuration descriptor header is %d bytes", len(head))
	}
	total := int(binary.LittleEndian.Uint16(head[2:4]))
	data, err := getDescriptor(usb, DescriptorTypeConfig, index, total)
	if err != nil {
		return nil, err
	}
	return ParseConfigDescriptor(data)
}

func ParseConfigDescriptor(data []byte) (*ConfigDescriptor, error) {
	if len(data) < configDescLen {
		return nil, fmt.Errorf("configuration descriptor is %d bytes, want at least %d", len(data), configDescLen)
	}
	var c rawConfigDescriptor
	if err := binary.Read(bytes.NewReader(data[:configDescLen]), binary.LittleEndian, &c); err != nil {
		return nil, fmt.Errorf("decoding configuration descriptor: %w", err)
	}
	if c.BDescriptorType != DescriptorTypeConfig {
		return nil, fmt.Errorf("descriptor type %d is not a configuration descriptor", c.BDescriptorType)
	}
	if int(c.WTotalLength) != len(data) {
		return nil, fmt.Errorf("configuration descriptor claims %d bytes, got %d", c.WTotalLength, len(data))
	}

	res := &ConfigDescriptor{
		Value: int(c.BConfigurationValue),
	}
	for off := int(c.BLength); off < len(data); {
		l := int(data[off])
		if l < 2 || off+l > len(data) {
			return nil, fmt.Errorf("invalid descriptor length %d at offset %d", l, off)
		}
		if data[off+1] == DescriptorTypeInterface {
			if l < intfDescLen {
				return nil, fmt.Errorf("interface descriptor at offset %d is %d bytes", off, l)
			}
			var i rawInterfaceDescriptor
			if err := binary.Read(bytes.NewReader(data[off:off+intfDescLen]), binary.LittleEndian, &i); err != nil {
				return nil, fmt.Errorf("decoding interface descriptor: %w", err)
			}
			res.Interfaces = append(res.Interfaces, InterfaceDescriptor{
				Number:           int(i.BInterfaceNumber),
				Alternate:        int(i.BAlternateSetting),
				NumEndpoints:     int(i.BNumEndpoints),
				DescriptionIndex: int(i.IInterface),
			})
		}
		off += l
	}
	return res, nil
}
