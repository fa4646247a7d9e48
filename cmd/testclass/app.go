package main

import (
	"fmt"

	"github.com/freemyipod/testclass/pkg/config"
	"github.com/freemyipod/testclass/pkg/devices"
	"github.com/freemyipod/testclass/pkg/emulator"
	"github.com/freemyipod/testclass/pkg/suite"
	"github.com/freemyipod/testclass/pkg/transport"
)

type app struct {
	usb    devices.Usb
	Device *suite.Device
	// Name identifies the device in reports.
	Name string
}

func (a *app) Close() error {
	return a.usb.Close()
}

func newApp(cfg *config.Config, emulate bool) (*app, error) {
	var usb devices.Usb
	var name string
	if emulate {
		usb = emulator.New(emulator.Quirks{})
		name = "emulator"
	} else {
		desc := devices.WithID(cfg.Device.VID, cfg.Device.PID)
		dev, err := transport.Open(desc)
		if err != nil {
			return nil, fmt.Errorf("device unavailable: %w", err)
		}
		usb = dev
		name = dev.Desc.String()
	}

	d, err := suite.NewDevice(usb, suite.Timeouts{
		Transfer: cfg.Timeouts.Transfer,
		Bench:    cfg.Timeouts.Bench,
	})
	if err != nil {
		usb.Close()
		return nil, fmt.Errorf("could not prepare %s: %w", name, err)
	}
	return &app{
		usb:    usb,
		Device: d,
		Name:   name,
	}, nil
}
