// Package cia implements the MOS 6526 Complex Interface Adapter: two 8-bit
// ports with data-direction registers, two 16-bit interval timers with
// latch/one-shot/cascade modes, and an interrupt status/mask pair. Cia1 and
// Cia2 bind the shared register and timer logic to the two CIAs' distinct
// port wiring and interrupt destinations.
package cia

import (
	"fmt"

	"github.com/retroputer/c64/irq"
)

// Status/mask bits shared by ICR reads and writes.
const (
	bitTA   = 1 << 0
	bitTB   = 1 << 1
	bitAlrm = 1 << 2
	bitSp   = 1 << 3
	bitFlg  = 1 << 4
	bitIr   = 1 << 7
	bitSc   = 1 << 7
)

// CRA/CRB control bits.
const (
	bitStart    = 1 << 0
	bitPbOn     = 1 << 1
	bitOutmode  = 1 << 2
	bitRunmode  = 1 << 3
	bitLoad     = 1 << 4
	bitInmode   = 1 << 5
	bitInmodeHi = 1 << 6
	bitTodin    = 1 << 7
)

// personality is the seam between the shared register/timer logic and each
// CIA's own port wiring and interrupt destination, the Go equivalent of the
// reference implementation's protected pure-virtual hooks.
type personality interface {
	updateIrqLine(state bool)
	readPortA() uint8
	readPortB() uint8
	writePortA(data uint8)
	writePortB(data uint8)
}

// UnimplementedError reports access to a CIA register this implementation
// never models: the time-of-day clock, the serial shift register, or a read
// of CRB. Real guest software never touches these; it is a fatal condition
// here the same way an undocumented opcode is fatal to the CPU.
type UnimplementedError struct {
	Register uint16
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("cia: unimplemented register access at $%x", e.Register&0xf)
}

// chip holds the register and timer state common to both CIAs. It is not
// exported directly; Cia1 and Cia2 embed it and supply the personality that
// drives port and IRQ behavior.
type chip struct {
	p personality

	portAOut, portADirection uint8
	portBOut, portBDirection uint8

	timerCounterA, timerLatchA uint16
	timerCounterB, timerLatchB uint16

	irqState, irqMask uint8
	cra, crb          uint8
}

func newChip(p personality) *chip {
	return &chip{p: p}
}

// Raised reports whether the chip's aggregate interrupt output is currently
// asserted, satisfying irq.Sender for callers (diagnostics, the host shell's
// debug log) that only need to poll the line rather than receive Cia1's/
// Cia2's push through updateIrqLine.
func (c *chip) Raised() bool {
	return c.irqState&bitIr != 0
}

var (
	_ irq.Sender = (*Cia1)(nil)
	_ irq.Sender = (*Cia2)(nil)
)

// Reset clears interrupt status/mask and both control registers. Timer
// counters, latches and port state survive a reset, matching the reference
// implementation.
func (c *chip) Reset() {
	c.irqState = 0
	c.irqMask = 0
	c.cra = 0
	c.crb = 0
}

// UpdateTimers advances both timers by elapsedCycles and re-evaluates the
// aggregate interrupt line.
func (c *chip) UpdateTimers(elapsedCycles int) {
	if c.cra&bitStart != 0 {
		c.updateTimerA(elapsedCycles)
	}
	if c.crb&bitStart != 0 && c.crb&bitInmodeHi == 0 {
		c.updateTimerB(elapsedCycles)
	}
	if c.irqState&c.irqMask&0x1f != 0 {
		c.irqState |= bitIr
		c.p.updateIrqLine(true)
	} else {
		c.irqState &^= bitIr
		c.p.updateIrqLine(false)
	}
}

// UpdateClock advances the time-of-day clock. The reference implementation
// never got around to this; it remains an intentional no-op here too.
func (c *chip) UpdateClock(fps int) {}

func (c *chip) updateTimerA(elapsedCycles int) {
	elapsed := uint16(elapsedCycles)
	if c.timerCounterA <= elapsed {
		c.irqState |= bitTA
		if c.cra&bitRunmode != 0 {
			c.timerCounterA = 0
		} else {
			c.timerCounterA = c.timerLatchA - (elapsed - c.timerCounterA)
		}
		if c.crb&bitStart != 0 && c.crb&bitInmodeHi != 0 {
			c.updateTimerB(1)
		}
		return
	}
	c.timerCounterA -= elapsed
}

func (c *chip) updateTimerB(elapsedCycles int) {
	elapsed := uint16(elapsedCycles)
	if c.timerCounterB <= elapsed {
		c.irqState |= bitTB
		if c.crb&bitRunmode != 0 {
			c.timerCounterB = 0
		} else {
			c.timerCounterB = c.timerLatchB - (elapsed - c.timerCounterB)
		}
		return
	}
	c.timerCounterB -= elapsed
}

// Read dispatches a register read by its low 4 address bits. It returns a
// non-nil *UnimplementedError for the TOD clock, the serial data register,
// or a CRB read, none of which are modeled.
func (c *chip) Read(addr uint16) (uint8, error) {
	switch addr & 0xf {
	case 0x0:
		return c.readPra(), nil
	case 0x1:
		return c.readPrb(), nil
	case 0x2:
		return c.portADirection, nil
	case 0x3:
		return c.portBDirection, nil
	case 0x4:
		return uint8(c.timerCounterA), nil
	case 0x5:
		return uint8(c.timerCounterA >> 8), nil
	case 0x6:
		return uint8(c.timerCounterB), nil
	case 0x7:
		return uint8(c.timerCounterB >> 8), nil
	case 0x8, 0x9, 0xa, 0xb, 0xc:
		// TOD clock (0x8-0xb) and serial data register (0xc): unimplemented.
		return 0, &UnimplementedError{Register: addr}
	case 0xd:
		return c.readIcr(), nil
	case 0xe:
		return c.cra &^ bitLoad, nil
	case 0xf:
		// CRB read: unimplemented, unlike CRB write (needed for Timer B
		// control and is fully modeled below).
		return 0, &UnimplementedError{Register: addr}
	}
	panic(fmt.Sprintf("cia: unreachable register read %#x", addr&0xf))
}

// Write dispatches a register write by its low 4 address bits. It returns a
// non-nil *UnimplementedError for the TOD clock or the serial data register,
// neither of which are modeled.
func (c *chip) Write(addr uint16, data uint8) error {
	switch addr & 0xf {
	case 0x0:
		c.writePra(data)
	case 0x1:
		c.writePrb(data)
	case 0x2:
		c.portADirection = data
	case 0x3:
		c.portBDirection = data
	case 0x4:
		c.timerLatchA = (c.timerLatchA & 0xff00) | uint16(data)
	case 0x5:
		c.timerLatchA = (c.timerLatchA & 0x00ff) | uint16(data)<<8
		if c.cra&bitStart == 0 {
			c.timerCounterA = c.timerLatchA
		}
	case 0x6:
		c.timerLatchB = (c.timerLatchB & 0xff00) | uint16(data)
	case 0x7:
		c.timerLatchB = (c.timerLatchB & 0x00ff) | uint16(data)<<8
		if c.crb&bitStart == 0 {
			c.timerCounterB = c.timerLatchB
		}
	case 0x8, 0x9, 0xa, 0xb, 0xc:
		return &UnimplementedError{Register: addr}
	case 0xd:
		c.writeIcr(data)
	case 0xe:
		c.writeCra(data)
	case 0xf:
		c.writeCrb(data)
	}
	return nil
}

func (c *chip) readPra() uint8 {
	return (c.p.readPortA() &^ c.portADirection) | (c.portAOut & c.portADirection)
}

func (c *chip) readPrb() uint8 {
	return (c.p.readPortB() &^ c.portBDirection) | (c.portBOut & c.portBDirection)
}

func (c *chip) writePra(data uint8) {
	c.portAOut = data
	c.p.writePortA(c.portADirection & c.portAOut)
}

func (c *chip) writePrb(data uint8) {
	c.portBOut = data
	c.p.writePortB(c.portBDirection & c.portBOut)
}

// readIcr returns the pending-interrupt bits and, per the chip's documented
// behavior, clears interrupt status and drops the IRQ line as a side effect
// of being read.
func (c *chip) readIcr() uint8 {
	value := c.irqState & 0x9f
	c.irqState = 0
	c.p.updateIrqLine(false)
	return value
}

// writeIcr sets (bit 7 = 1) or clears (bit 7 = 0) the named mask bits.
func (c *chip) writeIcr(data uint8) {
	if data&bitSc != 0 {
		c.irqMask |= data & 0x1f
	} else {
		c.irqMask &^= data & 0x1f
	}
}

func (c *chip) writeCra(data uint8) {
	c.cra = data &^ bitLoad
	if data&bitLoad != 0 {
		c.timerCounterA = c.timerLatchA
	}
}

func (c *chip) writeCrb(data uint8) {
	c.crb = data &^ bitLoad
	if data&bitLoad != 0 {
		c.timerCounterB = c.timerLatchB
	}
}
