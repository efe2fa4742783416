// Package io defines the basic interfaces for working
// with a 6502 family based I/O port (generally bi-directional).
// It's intended that implementors of I/O call the input callback
// (if provided) whenever a port value is latched and properly
// account for the fact that output won't mirror input until the
// direction register says so.
package io

// Port8 defines an 8 bit I/O port.
type Port8 interface {
	// Input will return the current value being set on the given input port.
	Input() uint8
}

// PortIn8 defines an 8 bit input-only port, e.g. a keyboard matrix row/column
// strobe line.
type PortIn8 interface {
	Input() uint8
}

// PortOut8 defines an 8 bit output-only port as seen from the outside, i.e.
// the current latched output pins of a peripheral.
type PortOut8 interface {
	Output() uint8
}

// PortIn1 defines a single bit input port, e.g. a joystick direction or a
// console switch.
type PortIn1 interface {
	Input() bool
}

// PortOut1 defines a single bit output port.
type PortOut1 interface {
	Output() bool
}
