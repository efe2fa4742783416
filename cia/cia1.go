package cia

import "fmt"

// Cia1Bus is the subset of the bus Cia1 drives: the aggregated IRQ line.
type Cia1Bus interface {
	SetIrq(state bool)
}

// Keyboard is the matrix Cia1's ports are wired to: port A selects columns
// and drives them out, port B reads back which rows are pulled low.
type Keyboard interface {
	GetColumns() uint8
	SetColumns(columns uint8)
	GetRows() uint8
	SetRows(rows uint8)
}

// Cia1Def defines the parameters needed to create a new Cia1.
type Cia1Def struct {
	Bus      Cia1Bus
	Keyboard Keyboard
}

// Cia1 is the first CIA: its port A/B pins scan the keyboard matrix and its
// aggregate interrupt output feeds the CPU's IRQ line.
type Cia1 struct {
	*chip
	bus      Cia1Bus
	keyboard Keyboard
}

// InitCia1 wires a Cia1 to the bus and keyboard it drives.
func InitCia1(def *Cia1Def) (*Cia1, error) {
	if def.Bus == nil || def.Keyboard == nil {
		return nil, fmt.Errorf("cia: Cia1Def.Bus and Cia1Def.Keyboard must both be non-nil")
	}
	c := &Cia1{bus: def.Bus, keyboard: def.Keyboard}
	c.chip = newChip(c)
	return c, nil
}

func (c *Cia1) updateIrqLine(state bool) { c.bus.SetIrq(state) }
func (c *Cia1) readPortA() uint8         { return c.keyboard.GetColumns() }
func (c *Cia1) readPortB() uint8         { return c.keyboard.GetRows() }
func (c *Cia1) writePortA(data uint8)    { c.keyboard.SetColumns(data) }
func (c *Cia1) writePortB(data uint8)    { c.keyboard.SetRows(data) }
