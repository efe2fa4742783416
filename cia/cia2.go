package cia

import "fmt"

// Cia2Bus is the subset of the bus Cia2 drives: the edge-triggered NMI line.
type Cia2Bus interface {
	Nmi()
}

// Cia2Def defines the parameters needed to create a new Cia2.
type Cia2Def struct {
	Bus Cia2Bus
}

// Cia2 is the second CIA: its interrupt output is wired to NMI rather than
// IRQ, and its ports are left unconnected (no joystick, serial, or user-port
// peripheral is modeled).
type Cia2 struct {
	*chip
	bus Cia2Bus
	// line is the last interrupt output level seen by updateIrqLine.
	line bool
}

// InitCia2 wires a Cia2 to the bus it raises NMI on.
func InitCia2(def *Cia2Def) (*Cia2, error) {
	if def.Bus == nil {
		return nil, fmt.Errorf("cia: Cia2Def.Bus must be non-nil")
	}
	c := &Cia2{bus: def.Bus}
	c.chip = newChip(c)
	return c, nil
}

// updateIrqLine only fires on a low-to-high transition: NMI is
// edge-triggered, so there is nothing to do while the line stays asserted or
// when it is dropped.
func (c *Cia2) updateIrqLine(state bool) {
	if state && !c.line {
		c.bus.Nmi()
	}
	c.line = state
}

func (c *Cia2) readPortA() uint8      { return 0x00 }
func (c *Cia2) readPortB() uint8      { return 0x00 }
func (c *Cia2) writePortA(data uint8) {}
func (c *Cia2) writePortB(data uint8) {}
