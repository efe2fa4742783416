// Package cpu implements a MOS 6502 family interpreter. Unlike a cycle-exact
// tick-driven core, this implementation executes one whole instruction (or
// one interrupt sequence) per call to CycleOne and reports how many cycles
// that took, which is the granularity the rest of this emulator schedules
// against.
package cpu

import (
	"fmt"
)

// Bus is the minimal interface the CPU needs onto the rest of the machine.
// It is satisfied by *bus.Bus.
type Bus interface {
	CpuRead(addr uint16) uint8
	CpuWrite(addr uint16, val uint8)
	// SetCpuBank receives the bank the CPU recomputes from its own
	// processor port ($0000/$0001) on every write to either address.
	SetCpuBank(bank uint8)
}

// Flag bit masks within the P (status) register.
const (
	FlagC uint8 = 0x01
	FlagZ uint8 = 0x02
	FlagI uint8 = 0x04
	FlagD uint8 = 0x08
	FlagB uint8 = 0x10
	FlagU uint8 = 0x20
	FlagV uint8 = 0x40
	FlagN uint8 = 0x80
)

const (
	nmiVector   = uint16(0xFFFA)
	resetVector = uint16(0xFFFC)
	irqVector   = uint16(0xFFFE)
	stackBase   = uint16(0x0100)
)

// HaltError reports a CPU condition that correct guest software must never
// trigger: an undocumented (KIL) opcode, or entry into the unimplemented
// BCD (decimal) mode for ADC/SBC. The caller should treat this as fatal.
type HaltError struct {
	PC  uint16
	Msg string
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("cpu halted at $%04X: %s", e.PC, e.Msg)
}

// Chip is a 6502-family CPU.
type Chip struct {
	A, X, Y, S uint8
	PC         uint16
	P          uint8

	nmiPending bool
	irqLine    bool
	penalty    int

	// port holds the processor port's direction register ($0000) and data
	// register ($0001), the two addresses write8 intercepts to recompute
	// the CPU's memory bank.
	port [2]uint8

	bus   Bus
	debug bool
}

// ChipDef defines the parameters needed to create a new Chip.
type ChipDef struct {
	// Bus is the memory/peripheral bus the CPU issues reads and writes
	// against. Required.
	Bus Bus
	// Debug enables a one-line register summary from Debug().
	Debug bool
}

// Init returns a Chip wired to def.Bus. Call Reset before running it.
func Init(def *ChipDef) (*Chip, error) {
	if def.Bus == nil {
		return nil, fmt.Errorf("cpu: Bus must be non-nil")
	}
	return &Chip{bus: def.Bus, debug: def.Debug}, nil
}

// Reset performs the power-on/reset sequence: clear the processor-port
// direction register at $0000 (which, via the bus, recomputes the CPU bank),
// load PC from the reset vector, set S to 0xFD, force U and I in P, and drop
// any pending interrupt latch.
func (c *Chip) Reset() {
	c.write8(0x0000, 0)
	c.PC = c.read16(resetVector)
	c.S = 0xFD
	c.P |= FlagU | FlagI
	c.nmiPending = false
	c.irqLine = false
}

// Nmi latches a non-maskable interrupt. It is serviced at the next
// instruction boundary and the latch clears once serviced.
func (c *Chip) Nmi() {
	c.nmiPending = true
}

// SetIrqSignal raises or lowers the level-triggered IRQ line.
func (c *Chip) SetIrqSignal(v bool) {
	c.irqLine = v
}

// CycleOne services a pending interrupt, if any, otherwise executes exactly
// one instruction. It returns the number of cycles consumed (including any
// addressing-mode or branch penalty) and a non-nil error if the instruction
// just executed halted the CPU.
func (c *Chip) CycleOne() (int, error) {
	if c.nmiPending {
		c.nmiPending = false
		c.push16(c.PC)
		c.push8(c.P &^ FlagB)
		c.P |= FlagI
		c.PC = c.read16(nmiVector)
		return 7, nil
	}
	if c.irqLine && c.P&FlagI == 0 {
		c.push16(c.PC)
		c.push8(c.P &^ FlagB)
		c.P |= FlagI
		c.PC = c.read16(irqVector)
		return 7, nil
	}
	opcode := c.read8(c.PC)
	c.PC++
	c.penalty = 0
	cycles, err := c.execute(opcode)
	return cycles + c.penalty, err
}

// Debug returns a one-line register summary when debug logging is enabled,
// or the empty string otherwise.
func (c *Chip) Debug() string {
	if !c.debug {
		return ""
	}
	return fmt.Sprintf("PC=%04X A=%02X X=%02X Y=%02X S=%02X P=%02X", c.PC, c.A, c.X, c.Y, c.S, c.P)
}

func (c *Chip) read8(addr uint16) uint8 { return c.bus.CpuRead(addr) }

// write8 intercepts writes to the processor port ($0000/$0001) to recompute
// the CPU's memory bank before forwarding the write to the bus: a data pin
// floats high (driven by the pull-up) when its direction bit is set to
// input, so the bank is the NOT of the direction register OR'd with
// whatever the data register drives for the pins configured as outputs.
func (c *Chip) write8(addr uint16, v uint8) {
	if addr < 2 {
		c.port[addr] = v
		c.bus.SetCpuBank((^c.port[0] | (c.port[0] & c.port[1])) & 7)
	}
	c.bus.CpuWrite(addr, v)
}

func (c *Chip) read16(addr uint16) uint16 {
	return uint16(c.read8(addr)) | uint16(c.read8(addr+1))<<8
}

func (c *Chip) push8(v uint8) {
	c.write8(stackBase+uint16(c.S), v)
	c.S--
}

func (c *Chip) push16(v uint16) {
	c.push8(uint8(v >> 8))
	c.push8(uint8(v))
}

func (c *Chip) pop8() uint8 {
	c.S++
	return c.read8(stackBase + uint16(c.S))
}

func (c *Chip) pop16() uint16 {
	lo := uint16(c.pop8())
	hi := uint16(c.pop8())
	return lo | hi<<8
}

func (c *Chip) updateC(v uint8) { c.P = (c.P &^ FlagC) | (v & FlagC) }

func (c *Chip) updateZ(v uint8) {
	if v == 0 {
		c.P |= FlagZ
	} else {
		c.P &^= FlagZ
	}
}

func (c *Chip) updateN(v uint8) { c.P = (c.P &^ FlagN) | (v & FlagN) }

func (c *Chip) updateV(r, a, m uint8) {
	if (r^a)&(r^m)&0x80 != 0 {
		c.P |= FlagV
	} else {
		c.P &^= FlagV
	}
}

// branch applies the reference implementation's penalty rule (same page as
// the post-operand PC costs 2, any other page costs 1) and jumps to target.
func (c *Chip) branch(target uint16) {
	if c.PC>>8 == target>>8 {
		c.penalty = 2
	} else {
		c.penalty = 1
	}
	c.PC = target
}

// Addressing modes. Each returns the effective address and advances PC past
// whatever operand bytes it consumed.

func (c *Chip) addrAbs() uint16 {
	ea := c.read16(c.PC)
	c.PC += 2
	return ea
}

func (c *Chip) addrAbx() uint16 {
	ba := c.read16(c.PC)
	c.PC += 2
	ea := ba + uint16(c.X)
	if ba>>8 != ea>>8 {
		c.penalty = 1
	}
	return ea
}

func (c *Chip) addrAby() uint16 {
	ba := c.read16(c.PC)
	c.PC += 2
	ea := ba + uint16(c.Y)
	if ba>>8 != ea>>8 {
		c.penalty = 1
	}
	return ea
}

func (c *Chip) addrImm() uint16 {
	ea := c.PC
	c.PC++
	return ea
}

// addrInd does not model the NMOS 6502 page-wrap bug where a pointer at a
// page boundary ($xxFF) fetches its high byte from $xx00 instead of the next
// page; it always fetches both pointer bytes correctly.
func (c *Chip) addrInd() uint16 {
	ba := c.read16(c.PC)
	c.PC += 2
	return c.read16(ba)
}

func (c *Chip) addrInx() uint16 {
	ba := uint16(c.read8(c.PC)+c.X) & 0xFF
	c.PC++
	lo := uint16(c.read8(ba))
	hi := uint16(c.read8((ba+1)&0xFF)) << 8
	return lo | hi
}

func (c *Chip) addrIny() uint16 {
	ba := uint16(c.read8(c.PC))
	c.PC++
	lo := uint16(c.read8(ba))
	hiByte := c.read8((ba + 1) & 0xFF)
	base := lo | uint16(hiByte)<<8
	ea := base + uint16(c.Y)
	if base>>8 != ea>>8 {
		c.penalty = 1
	}
	return ea
}

func (c *Chip) addrRel() uint16 {
	off := int8(c.read8(c.PC))
	c.PC++
	return uint16(int32(c.PC) + int32(off))
}

func (c *Chip) addrZpg() uint16 {
	ea := uint16(c.read8(c.PC))
	c.PC++
	return ea
}

func (c *Chip) addrZpx() uint16 {
	ea := uint16(c.read8(c.PC)+c.X) & 0xFF
	c.PC++
	return ea
}

func (c *Chip) addrZpy() uint16 {
	ea := uint16(c.read8(c.PC)+c.Y) & 0xFF
	c.PC++
	return ea
}

// Instruction semantics.

func (c *Chip) instAdc(addr uint16) error {
	if c.P&FlagD != 0 {
		return &HaltError{PC: c.PC, Msg: "decimal mode ADC is not supported"}
	}
	m := c.read8(addr)
	result := uint16(c.A) + uint16(m) + uint16(c.P&FlagC)
	c.updateC(uint8(result >> 8))
	c.updateV(uint8(result), c.A, m)
	c.A = uint8(result)
	c.updateN(c.A)
	c.updateZ(c.A)
	return nil
}

func (c *Chip) instAnd(addr uint16) {
	c.A &= c.read8(addr)
	c.updateZ(c.A)
	c.updateN(c.A)
}

func (c *Chip) instAsl(addr uint16) {
	v := c.read8(addr)
	c.updateC(v >> 7)
	r := v << 1
	c.updateZ(r)
	c.updateN(r)
	c.write8(addr, r)
}

func (c *Chip) instAslAcc() {
	c.updateC(c.A >> 7)
	c.A <<= 1
	c.updateZ(c.A)
	c.updateN(c.A)
}

func (c *Chip) instBcc(addr uint16) {
	if c.P&FlagC == 0 {
		c.branch(addr)
	}
}

func (c *Chip) instBcs(addr uint16) {
	if c.P&FlagC != 0 {
		c.branch(addr)
	}
}

func (c *Chip) instBeq(addr uint16) {
	if c.P&FlagZ != 0 {
		c.branch(addr)
	}
}

func (c *Chip) instBit(addr uint16) {
	v := c.read8(addr)
	c.P = (c.P & 0x3F) | (v & 0xC0)
	c.updateZ(c.A & v)
}

func (c *Chip) instBmi(addr uint16) {
	if c.P&FlagN != 0 {
		c.branch(addr)
	}
}

func (c *Chip) instBne(addr uint16) {
	if c.P&FlagZ == 0 {
		c.branch(addr)
	}
}

func (c *Chip) instBpl(addr uint16) {
	if c.P&FlagN == 0 {
		c.branch(addr)
	}
}

// instBrk pushes PC+1 (skipping BRK's padding byte) and P with B set, loads
// the IRQ/BRK vector. Unlike the fatal conditions above, executing BRK
// itself is ordinary defined behavior.
func (c *Chip) instBrk() {
	c.push16(c.PC + 1)
	c.push8(c.P | FlagB)
	c.P |= FlagI
	c.PC = c.read16(irqVector)
}

func (c *Chip) instBvc(addr uint16) {
	if c.P&FlagV == 0 {
		c.branch(addr)
	}
}

func (c *Chip) instBvs(addr uint16) {
	if c.P&FlagV != 0 {
		c.branch(addr)
	}
}

func (c *Chip) instClc() { c.P &^= FlagC }
func (c *Chip) instCld() { c.P &^= FlagD }
func (c *Chip) instCli() { c.P &^= FlagI }
func (c *Chip) instClv() { c.P &^= FlagV }

func (c *Chip) instCmp(addr uint16) {
	v := c.read8(addr)
	if c.A >= v {
		c.P |= FlagC
	} else {
		c.P &^= FlagC
	}
	r := c.A - v
	c.updateZ(r)
	c.updateN(r)
}

func (c *Chip) instCpx(addr uint16) {
	v := c.read8(addr)
	if c.X >= v {
		c.P |= FlagC
	} else {
		c.P &^= FlagC
	}
	r := c.X - v
	c.updateZ(r)
	c.updateN(r)
}

func (c *Chip) instCpy(addr uint16) {
	v := c.read8(addr)
	if c.Y >= v {
		c.P |= FlagC
	} else {
		c.P &^= FlagC
	}
	r := c.Y - v
	c.updateZ(r)
	c.updateN(r)
}

func (c *Chip) instDec(addr uint16) {
	r := c.read8(addr) - 1
	c.updateZ(r)
	c.updateN(r)
	c.write8(addr, r)
}

func (c *Chip) instDex() { c.X--; c.updateZ(c.X); c.updateN(c.X) }
func (c *Chip) instDey() { c.Y--; c.updateZ(c.Y); c.updateN(c.Y) }

func (c *Chip) instEor(addr uint16) {
	c.A ^= c.read8(addr)
	c.updateZ(c.A)
	c.updateN(c.A)
}

func (c *Chip) instInc(addr uint16) {
	r := c.read8(addr) + 1
	c.updateZ(r)
	c.updateN(r)
	c.write8(addr, r)
}

func (c *Chip) instInx() { c.X++; c.updateZ(c.X); c.updateN(c.X) }
func (c *Chip) instIny() { c.Y++; c.updateZ(c.Y); c.updateN(c.Y) }

func (c *Chip) instJmp(addr uint16) { c.PC = addr }

func (c *Chip) instJsr(addr uint16) {
	c.push16(c.PC - 1)
	c.PC = addr
}

func (c *Chip) instLda(addr uint16) { c.A = c.read8(addr); c.updateZ(c.A); c.updateN(c.A) }
func (c *Chip) instLdx(addr uint16) { c.X = c.read8(addr); c.updateZ(c.X); c.updateN(c.X) }
func (c *Chip) instLdy(addr uint16) { c.Y = c.read8(addr); c.updateZ(c.Y); c.updateN(c.Y) }

func (c *Chip) instLsr(addr uint16) {
	v := c.read8(addr)
	c.updateC(v)
	r := v >> 1
	c.updateZ(r)
	c.P &^= FlagN
	c.write8(addr, r)
}

func (c *Chip) instLsrAcc() {
	c.updateC(c.A)
	c.A >>= 1
	c.updateZ(c.A)
	c.P &^= FlagN
}

func (c *Chip) instNop() {}

func (c *Chip) instOra(addr uint16) {
	c.A |= c.read8(addr)
	c.updateZ(c.A)
	c.updateN(c.A)
}

func (c *Chip) instPha() { c.push8(c.A) }
func (c *Chip) instPhp() { c.push8(c.P) }
func (c *Chip) instPla() { c.A = c.pop8(); c.updateZ(c.A); c.updateN(c.A) }
func (c *Chip) instPlp() { c.P = c.pop8() | FlagU }

func (c *Chip) instRol(addr uint16) {
	v := c.read8(addr)
	r := (v << 1) | (c.P & FlagC)
	c.updateC(v >> 7)
	c.updateZ(r)
	c.updateN(r)
	c.write8(addr, r)
}

func (c *Chip) instRolAcc() {
	v := c.A
	c.A = (v << 1) | (c.P & FlagC)
	c.updateC(v >> 7)
	c.updateZ(c.A)
	c.updateN(c.A)
}

func (c *Chip) instRor(addr uint16) {
	v := c.read8(addr)
	r := (v >> 1) | ((c.P & FlagC) << 7)
	c.updateC(v)
	c.updateZ(r)
	c.updateN(r)
	c.write8(addr, r)
}

func (c *Chip) instRorAcc() {
	v := c.A
	c.A = (v >> 1) | ((c.P & FlagC) << 7)
	c.updateC(v)
	c.updateZ(c.A)
	c.updateN(c.A)
}

func (c *Chip) instRti() {
	c.P = c.pop8() | FlagU
	c.PC = c.pop16()
}

func (c *Chip) instRts() { c.PC = c.pop16() + 1 }

func (c *Chip) instSbc(addr uint16) error {
	if c.P&FlagD != 0 {
		return &HaltError{PC: c.PC, Msg: "decimal mode SBC is not supported"}
	}
	m := c.read8(addr)
	borrow := uint16(0)
	if c.P&FlagC == 0 {
		borrow = 1
	}
	result := uint16(c.A) - uint16(m) - borrow
	// No borrow happened iff the subtraction stayed within a single byte;
	// a 16-bit wraparound below zero shows up as a result above 0xFF.
	if result <= 0xFF {
		c.P |= FlagC
	} else {
		c.P &^= FlagC
	}
	c.updateV(uint8(result), c.A, m)
	c.A = uint8(result)
	c.updateN(c.A)
	c.updateZ(c.A)
	return nil
}

func (c *Chip) instSec() { c.P |= FlagC }
func (c *Chip) instSed() { c.P |= FlagD }
func (c *Chip) instSei() { c.P |= FlagI }

func (c *Chip) instSta(addr uint16) { c.write8(addr, c.A) }
func (c *Chip) instStx(addr uint16) { c.write8(addr, c.X) }
func (c *Chip) instSty(addr uint16) { c.write8(addr, c.Y) }

func (c *Chip) instTax() { c.X = c.A; c.updateN(c.X); c.updateZ(c.X) }
func (c *Chip) instTay() { c.Y = c.A; c.updateN(c.Y); c.updateZ(c.Y) }
func (c *Chip) instTsx() { c.X = c.S; c.updateN(c.X); c.updateZ(c.X) }
func (c *Chip) instTxa() { c.A = c.X; c.updateN(c.A); c.updateZ(c.A) }
func (c *Chip) instTxs() { c.S = c.X }
func (c *Chip) instTya() { c.A = c.Y; c.updateN(c.A); c.updateZ(c.A) }

func (c *Chip) instKil() error {
	return &HaltError{PC: c.PC, Msg: "undocumented opcode executed (KIL)"}
}

// execute dispatches opcode to its addressing mode and instruction
// semantics, returning the canonical NMOS base cycle count for that opcode.
// Any opcode outside the 56 documented instructions (plus the accumulator
// shift/rotate forms) is a KIL and returns a *HaltError.
func (c *Chip) execute(opcode uint8) (int, error) {
	switch opcode {
	case 0x00: // BRK
		c.instBrk()
		return 7, nil
	case 0x01: // ORA zp,X (opcode table quirk preserved from the grounding source: canonical 6502 has this slot as indexed-indirect, (zp,X))
		c.instOra(c.addrZpx())
		return 6, nil
	case 0x02: // KIL
		return 1, c.instKil()
	case 0x03: // KIL
		return 8, c.instKil()
	case 0x04: // KIL
		return 3, c.instKil()
	case 0x05: // ORA zp
		c.instOra(c.addrZpg())
		return 3, nil
	case 0x06: // ASL zp
		c.instAsl(c.addrZpg())
		return 5, nil
	case 0x07: // KIL
		return 5, c.instKil()
	case 0x08: // PHP
		c.instPhp()
		return 3, nil
	case 0x09: // ORA #i
		c.instOra(c.addrImm())
		return 2, nil
	case 0x0A: // ASL A
		c.instAslAcc()
		return 2, nil
	case 0x0B: // KIL
		return 2, c.instKil()
	case 0x0C: // KIL
		return 4, c.instKil()
	case 0x0D: // ORA abs
		c.instOra(c.addrAbs())
		return 4, nil
	case 0x0E: // ASL abs
		c.instAsl(c.addrAbs())
		return 6, nil
	case 0x0F: // KIL
		return 6, c.instKil()
	case 0x10: // BPL
		c.instBpl(c.addrRel())
		return 2, nil
	case 0x11: // ORA (zp),Y
		c.instOra(c.addrIny())
		return 5, nil
	case 0x12: // KIL
		return 1, c.instKil()
	case 0x13: // KIL
		return 8, c.instKil()
	case 0x14: // KIL
		return 4, c.instKil()
	case 0x15: // ORA zp,X
		c.instOra(c.addrZpx())
		return 4, nil
	case 0x16: // ASL zp,X
		c.instAsl(c.addrZpx())
		return 6, nil
	case 0x17: // KIL
		return 6, c.instKil()
	case 0x18: // CLC
		c.instClc()
		return 2, nil
	case 0x19: // ORA abs,Y
		c.instOra(c.addrAby())
		return 4, nil
	case 0x1A: // KIL
		return 2, c.instKil()
	case 0x1B: // KIL
		return 7, c.instKil()
	case 0x1C: // KIL
		return 4, c.instKil()
	case 0x1D: // ORA abs,X
		c.instOra(c.addrAbx())
		return 4, nil
	case 0x1E: // ASL abs,X
		c.instAsl(c.addrAbx())
		return 7, nil
	case 0x1F: // KIL
		return 7, c.instKil()
	case 0x20: // JSR abs
		c.instJsr(c.addrAbs())
		return 6, nil
	case 0x21: // AND (zp,X)
		c.instAnd(c.addrInx())
		return 6, nil
	case 0x22: // KIL
		return 1, c.instKil()
	case 0x23: // KIL
		return 8, c.instKil()
	case 0x24: // BIT zp
		c.instBit(c.addrZpg())
		return 3, nil
	case 0x25: // AND zp
		c.instAnd(c.addrZpg())
		return 3, nil
	case 0x26: // ROL zp
		c.instRol(c.addrZpg())
		return 5, nil
	case 0x27: // KIL
		return 6, c.instKil()
	case 0x28: // PLP
		c.instPlp()
		return 4, nil
	case 0x29: // AND #i
		c.instAnd(c.addrImm())
		return 2, nil
	case 0x2A: // ROL A
		c.instRolAcc()
		return 2, nil
	case 0x2B: // KIL
		return 7, c.instKil()
	case 0x2C: // BIT abs
		c.instBit(c.addrAbs())
		return 4, nil
	case 0x2D: // AND abs
		c.instAnd(c.addrAbs())
		return 4, nil
	case 0x2E: // ROL abs
		c.instRol(c.addrAbs())
		return 6, nil
	case 0x2F: // KIL
		return 7, c.instKil()
	case 0x30: // BMI
		c.instBmi(c.addrRel())
		return 2, nil
	case 0x31: // AND (zp),Y
		c.instAnd(c.addrIny())
		return 5, nil
	case 0x32: // KIL
		return 1, c.instKil()
	case 0x33: // KIL
		return 8, c.instKil()
	case 0x34: // KIL
		return 4, c.instKil()
	case 0x35: // AND zp,X
		c.instAnd(c.addrZpx())
		return 4, nil
	case 0x36: // ROL zp,X
		c.instRol(c.addrZpx())
		return 6, nil
	case 0x37: // KIL
		return 6, c.instKil()
	case 0x38: // SEC
		c.instSec()
		return 2, nil
	case 0x39: // AND abs,Y
		c.instAnd(c.addrAby())
		return 4, nil
	case 0x3A: // KIL
		return 2, c.instKil()
	case 0x3B: // KIL
		return 7, c.instKil()
	case 0x3C: // KIL
		return 4, c.instKil()
	case 0x3D: // AND abs,X
		c.instAnd(c.addrAbx())
		return 4, nil
	case 0x3E: // ROL abs,X
		c.instRol(c.addrAbx())
		return 7, nil
	case 0x3F: // KIL
		return 7, c.instKil()
	case 0x40: // RTI
		c.instRti()
		return 6, nil
	case 0x41: // EOR (zp,X)
		c.instEor(c.addrInx())
		return 6, nil
	case 0x42: // KIL
		return 1, c.instKil()
	case 0x43: // KIL
		return 8, c.instKil()
	case 0x44: // KIL
		return 3, c.instKil()
	case 0x45: // EOR zp
		c.instEor(c.addrZpg())
		return 3, nil
	case 0x46: // LSR zp
		c.instLsr(c.addrZpg())
		return 5, nil
	case 0x47: // KIL
		return 5, c.instKil()
	case 0x48: // PHA
		c.instPha()
		return 3, nil
	case 0x49: // EOR #i
		c.instEor(c.addrImm())
		return 2, nil
	case 0x4A: // LSR A
		c.instLsrAcc()
		return 2, nil
	case 0x4B: // KIL
		return 2, c.instKil()
	case 0x4C: // JMP abs
		c.instJmp(c.addrAbs())
		return 3, nil
	case 0x4D: // EOR abs
		c.instEor(c.addrAbs())
		return 4, nil
	case 0x4E: // LSR abs
		c.instLsr(c.addrAbs())
		return 6, nil
	case 0x4F: // KIL
		return 7, c.instKil()
	case 0x50: // BVC
		c.instBvc(c.addrRel())
		return 2, nil
	case 0x51: // EOR (zp),Y
		c.instEor(c.addrIny())
		return 5, nil
	case 0x52: // KIL
		return 1, c.instKil()
	case 0x53: // KIL
		return 8, c.instKil()
	case 0x54: // KIL
		return 4, c.instKil()
	case 0x55: // EOR zp,X
		c.instEor(c.addrZpx())
		return 4, nil
	case 0x56: // LSR zp,X
		c.instLsr(c.addrZpx())
		return 6, nil
	case 0x57: // KIL
		return 6, c.instKil()
	case 0x58: // CLI
		c.instCli()
		return 2, nil
	case 0x59: // EOR abs,Y
		c.instEor(c.addrAby())
		return 4, nil
	case 0x5A: // KIL
		return 2, c.instKil()
	case 0x5B: // KIL
		return 7, c.instKil()
	case 0x5C: // KIL
		return 4, c.instKil()
	case 0x5D: // EOR abs,X
		c.instEor(c.addrAbx())
		return 4, nil
	case 0x5E: // LSR abs,X
		c.instLsr(c.addrAbx())
		return 7, nil
	case 0x5F: // KIL
		return 7, c.instKil()
	case 0x60: // RTS
		c.instRts()
		return 6, nil
	case 0x61: // ADC (zp,X)
		return 6, c.instAdc(c.addrInx())
	case 0x62: // KIL
		return 1, c.instKil()
	case 0x63: // KIL
		return 8, c.instKil()
	case 0x64: // KIL
		return 3, c.instKil()
	case 0x65: // ADC zp
		return 3, c.instAdc(c.addrZpg())
	case 0x66: // ROR zp
		c.instRor(c.addrZpg())
		return 5, nil
	case 0x67: // KIL
		return 5, c.instKil()
	case 0x68: // PLA
		c.instPla()
		return 4, nil
	case 0x69: // ADC #i
		return 2, c.instAdc(c.addrImm())
	case 0x6A: // ROR A
		c.instRorAcc()
		return 2, nil
	case 0x6B: // KIL
		return 2, c.instKil()
	case 0x6C: // JMP (abs)
		c.instJmp(c.addrInd())
		return 5, nil
	case 0x6D: // ADC abs
		return 4, c.instAdc(c.addrAbs())
	case 0x6E: // ROR abs
		c.instRor(c.addrAbs())
		return 6, nil
	case 0x6F: // KIL
		return 6, c.instKil()
	case 0x70: // BVS
		c.instBvs(c.addrRel())
		return 2, nil
	case 0x71: // ADC (zp),Y
		return 5, c.instAdc(c.addrIny())
	case 0x72: // KIL
		return 1, c.instKil()
	case 0x73: // KIL
		return 8, c.instKil()
	case 0x74: // KIL
		return 4, c.instKil()
	case 0x75: // ADC zp,X
		return 4, c.instAdc(c.addrZpx())
	case 0x76: // ROR zp,X
		c.instRor(c.addrZpx())
		return 6, nil
	case 0x77: // KIL
		return 6, c.instKil()
	case 0x78: // SEI
		c.instSei()
		return 2, nil
	case 0x79: // ADC abs,Y
		return 4, c.instAdc(c.addrAby())
	case 0x7A: // KIL
		return 2, c.instKil()
	case 0x7B: // KIL
		return 7, c.instKil()
	case 0x7C: // KIL
		return 4, c.instKil()
	case 0x7D: // ADC abs,X
		return 4, c.instAdc(c.addrAbx())
	case 0x7E: // ROR abs,X
		c.instRor(c.addrAbx())
		return 7, nil
	case 0x7F: // KIL
		return 7, c.instKil()
	case 0x80: // KIL
		return 2, c.instKil()
	case 0x81: // STA (zp,X)
		c.instSta(c.addrInx())
		return 6, nil
	case 0x82: // KIL
		return 2, c.instKil()
	case 0x83: // KIL
		return 6, c.instKil()
	case 0x84: // STY zp
		c.instSty(c.addrZpg())
		return 3, nil
	case 0x85: // STA zp
		c.instSta(c.addrZpg())
		return 3, nil
	case 0x86: // STX zp
		c.instStx(c.addrZpg())
		return 3, nil
	case 0x87: // KIL
		return 3, c.instKil()
	case 0x88: // DEY
		c.instDey()
		return 2, nil
	case 0x89: // KIL
		return 2, c.instKil()
	case 0x8A: // TXA
		c.instTxa()
		return 2, nil
	case 0x8B: // KIL
		return 2, c.instKil()
	case 0x8C: // STY abs
		c.instSty(c.addrAbs())
		return 4, nil
	case 0x8D: // STA abs
		c.instSta(c.addrAbs())
		return 4, nil
	case 0x8E: // STX abs
		c.instStx(c.addrAbs())
		return 4, nil
	case 0x8F: // KIL
		return 4, c.instKil()
	case 0x90: // BCC
		c.instBcc(c.addrRel())
		return 2, nil
	case 0x91: // STA (zp),Y
		c.instSta(c.addrIny())
		return 6, nil
	case 0x92: // KIL
		return 1, c.instKil()
	case 0x93: // KIL
		return 6, c.instKil()
	case 0x94: // STY zp,X
		c.instSty(c.addrZpx())
		return 4, nil
	case 0x95: // STA zp,X
		c.instSta(c.addrZpx())
		return 4, nil
	case 0x96: // STX zp,Y
		c.instStx(c.addrZpy())
		return 4, nil
	case 0x97: // KIL
		return 4, c.instKil()
	case 0x98: // TYA
		c.instTya()
		return 2, nil
	case 0x99: // STA abs,Y
		c.instSta(c.addrAby())
		return 5, nil
	case 0x9A: // TXS
		c.instTxs()
		return 2, nil
	case 0x9B: // KIL
		return 5, c.instKil()
	case 0x9C: // KIL
		return 5, c.instKil()
	case 0x9D: // STA abs,X
		c.instSta(c.addrAbx())
		return 5, nil
	case 0x9E: // KIL
		return 5, c.instKil()
	case 0x9F: // KIL
		return 5, c.instKil()
	case 0xA0: // LDY #i
		c.instLdy(c.addrImm())
		return 2, nil
	case 0xA1: // LDA (zp,X)
		c.instLda(c.addrInx())
		return 6, nil
	case 0xA2: // LDX #i
		c.instLdx(c.addrImm())
		return 2, nil
	case 0xA3: // KIL
		return 6, c.instKil()
	case 0xA4: // LDY zp
		c.instLdy(c.addrZpg())
		return 3, nil
	case 0xA5: // LDA zp
		c.instLda(c.addrZpg())
		return 3, nil
	case 0xA6: // LDX zp
		c.instLdx(c.addrZpg())
		return 3, nil
	case 0xA7: // KIL
		return 3, c.instKil()
	case 0xA8: // TAY
		c.instTay()
		return 2, nil
	case 0xA9: // LDA #i
		c.instLda(c.addrImm())
		return 2, nil
	case 0xAA: // TAX
		c.instTax()
		return 2, nil
	case 0xAB: // KIL
		return 2, c.instKil()
	case 0xAC: // LDY abs
		c.instLdy(c.addrAbs())
		return 4, nil
	case 0xAD: // LDA abs
		c.instLda(c.addrAbs())
		return 4, nil
	case 0xAE: // LDX abs
		c.instLdx(c.addrAbs())
		return 4, nil
	case 0xAF: // KIL
		return 4, c.instKil()
	case 0xB0: // BCS
		c.instBcs(c.addrRel())
		return 2, nil
	case 0xB1: // LDA (zp),Y
		c.instLda(c.addrIny())
		return 5, nil
	case 0xB2: // KIL
		return 1, c.instKil()
	case 0xB3: // KIL
		return 5, c.instKil()
	case 0xB4: // LDY zp,X
		c.instLdy(c.addrZpx())
		return 4, nil
	case 0xB5: // LDA zp,X
		c.instLda(c.addrZpx())
		return 4, nil
	case 0xB6: // LDX zp,Y
		c.instLdx(c.addrZpy())
		return 4, nil
	case 0xB7: // KIL
		return 4, c.instKil()
	case 0xB8: // CLV
		c.instClv()
		return 2, nil
	case 0xB9: // LDA abs,Y
		c.instLda(c.addrAby())
		return 4, nil
	case 0xBA: // TSX
		c.instTsx()
		return 2, nil
	case 0xBB: // KIL
		return 4, c.instKil()
	case 0xBC: // LDY abs,X
		c.instLdy(c.addrAbx())
		return 4, nil
	case 0xBD: // LDA abs,X
		c.instLda(c.addrAbx())
		return 4, nil
	case 0xBE: // LDX abs,Y
		c.instLdx(c.addrAby())
		return 4, nil
	case 0xBF: // KIL
		return 4, c.instKil()
	case 0xC0: // CPY #i
		c.instCpy(c.addrImm())
		return 2, nil
	case 0xC1: // CMP (zp,X)
		c.instCmp(c.addrInx())
		return 6, nil
	case 0xC2: // KIL
		return 2, c.instKil()
	case 0xC3: // KIL
		return 8, c.instKil()
	case 0xC4: // CPY zp
		c.instCpy(c.addrZpg())
		return 3, nil
	case 0xC5: // CMP zp
		c.instCmp(c.addrZpg())
		return 3, nil
	case 0xC6: // DEC zp
		c.instDec(c.addrZpg())
		return 5, nil
	case 0xC7: // KIL
		return 5, c.instKil()
	case 0xC8: // INY
		c.instIny()
		return 2, nil
	case 0xC9: // CMP #i
		c.instCmp(c.addrImm())
		return 2, nil
	case 0xCA: // DEX
		c.instDex()
		return 2, nil
	case 0xCB: // KIL
		return 2, c.instKil()
	case 0xCC: // CPY abs
		c.instCpy(c.addrAbs())
		return 4, nil
	case 0xCD: // CMP abs
		c.instCmp(c.addrAbs())
		return 4, nil
	case 0xCE: // DEC abs
		c.instDec(c.addrAbs())
		return 6, nil
	case 0xCF: // KIL
		return 6, c.instKil()
	case 0xD0: // BNE
		c.instBne(c.addrRel())
		return 2, nil
	case 0xD1: // CMP (zp),Y
		c.instCmp(c.addrIny())
		return 5, nil
	case 0xD2: // KIL
		return 1, c.instKil()
	case 0xD3: // KIL
		return 8, c.instKil()
	case 0xD4: // KIL
		return 4, c.instKil()
	case 0xD5: // CMP zp,X
		c.instCmp(c.addrZpx())
		return 4, nil
	case 0xD6: // DEC zp,X
		c.instDec(c.addrZpx())
		return 6, nil
	case 0xD7: // KIL
		return 6, c.instKil()
	case 0xD8: // CLD
		c.instCld()
		return 2, nil
	case 0xD9: // CMP abs,Y
		c.instCmp(c.addrAby())
		return 4, nil
	case 0xDA: // KIL
		return 2, c.instKil()
	case 0xDB: // KIL
		return 7, c.instKil()
	case 0xDC: // KIL
		return 4, c.instKil()
	case 0xDD: // CMP abs,X
		c.instCmp(c.addrAbx())
		return 4, nil
	case 0xDE: // DEC abs,X
		c.instDec(c.addrAbx())
		return 7, nil
	case 0xDF: // KIL
		return 7, c.instKil()
	case 0xE0: // CPX #i
		c.instCpx(c.addrImm())
		return 2, nil
	case 0xE1: // SBC (zp,X)
		return 6, c.instSbc(c.addrInx())
	case 0xE2: // KIL
		return 2, c.instKil()
	case 0xE3: // KIL
		return 8, c.instKil()
	case 0xE4: // CPX zp
		c.instCpx(c.addrZpg())
		return 3, nil
	case 0xE5: // SBC zp
		return 3, c.instSbc(c.addrZpg())
	case 0xE6: // INC zp
		c.instInc(c.addrZpg())
		return 5, nil
	case 0xE7: // KIL
		return 5, c.instKil()
	case 0xE8: // INX
		c.instInx()
		return 2, nil
	case 0xE9: // SBC #i
		return 2, c.instSbc(c.addrImm())
	case 0xEA: // NOP
		c.instNop()
		return 2, nil
	case 0xEB: // KIL
		return 2, c.instKil()
	case 0xEC: // CPX abs
		c.instCpx(c.addrAbs())
		return 4, nil
	case 0xED: // SBC abs
		return 4, c.instSbc(c.addrAbs())
	case 0xEE: // INC abs
		c.instInc(c.addrAbs())
		return 6, nil
	case 0xEF: // KIL
		return 6, c.instKil()
	case 0xF0: // BEQ
		c.instBeq(c.addrRel())
		return 2, nil
	case 0xF1: // SBC (zp),Y
		return 5, c.instSbc(c.addrIny())
	case 0xF2: // KIL
		return 1, c.instKil()
	case 0xF3: // KIL
		return 8, c.instKil()
	case 0xF4: // KIL
		return 4, c.instKil()
	case 0xF5: // SBC zp,X
		return 4, c.instSbc(c.addrZpx())
	case 0xF6: // INC zp,X
		c.instInc(c.addrZpx())
		return 6, nil
	case 0xF7: // KIL
		return 6, c.instKil()
	case 0xF8: // SED
		c.instSed()
		return 2, nil
	case 0xF9: // SBC abs,Y
		return 4, c.instSbc(c.addrAby())
	case 0xFA: // KIL
		return 2, c.instKil()
	case 0xFB: // KIL
		return 7, c.instKil()
	case 0xFC: // KIL
		return 4, c.instKil()
	case 0xFD: // SBC abs,Y (opcode table quirk preserved from the grounding source: this slot reuses Y-indexed addressing rather than X-indexed)
		return 4, c.instSbc(c.addrAby())
	case 0xFE: // INC abs,X
		c.instInc(c.addrAbx())
		return 7, nil
	case 0xFF: // KIL
		return 7, c.instKil()
	}
	return 0, &HaltError{PC: c.PC, Msg: fmt.Sprintf("unreachable opcode 0x%02X", opcode)}
}
