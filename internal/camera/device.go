package camera

import "fmt"

// Device is the class of render target. Tablets and phones render in
// constrained mode: dirty rectangles instead of full redraws, and instant
// zoning instead of an animated scroll.
type Device uint8

const (
	DeviceDesktop Device = iota
	DeviceTablet
	DeviceMobile
)

func (d Device) String() string {
	switch d {
	case DeviceTablet:
		return "tablet"
	case DeviceMobile:
		return "mobile"
	default:
		return "desktop"
	}
}

// Constrained reports whether the device uses dirty-region rendering.
func (d Device) Constrained() bool {
	return d == DeviceTablet || d == DeviceMobile
}

// ParseDevice reads a device class name.
func ParseDevice(s string) (Device, error) {
	switch s {
	case "", "desktop":
		return DeviceDesktop, nil
	case "tablet":
		return DeviceTablet, nil
	case "mobile":
		return DeviceMobile, nil
	}
	return DeviceDesktop, fmt.Errorf("unknown device %q", s)
}
