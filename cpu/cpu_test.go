package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
)

// flatBus implements Bus directly over a 64k array, with no bank switching,
// for isolated CPU tests.
type flatBus struct {
	mem         [65536]uint8
	lastCpuBank uint8
}

func (f *flatBus) CpuRead(addr uint16) uint8     { return f.mem[addr] }
func (f *flatBus) CpuWrite(addr uint16, v uint8) { f.mem[addr] = v }
func (f *flatBus) SetCpuBank(bank uint8)         { f.lastCpuBank = bank }

func (f *flatBus) setVector(vector, target uint16) {
	f.mem[vector] = uint8(target)
	f.mem[vector+1] = uint8(target >> 8)
}

func newChip(t *testing.T) (*Chip, *flatBus) {
	t.Helper()
	b := &flatBus{}
	b.setVector(resetVector, 0x0400)
	c, err := Init(&ChipDef{Bus: b})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.Reset()
	return c, b
}

func TestResetDrivesDefaultBankOnBus(t *testing.T) {
	c, b := newChip(t)
	_ = c
	if b.lastCpuBank != 7 {
		t.Errorf("bank after Reset = %d, want 7 (direction register 0 floats every pin high)", b.lastCpuBank)
	}
}

func TestWritingProcessorPortRecomputesBank(t *testing.T) {
	c, b := newChip(t)
	b.mem[0x0400] = 0xA9 // LDA #i (drives A, doesn't touch the port)
	b.mem[0x0401] = 0x00
	if _, err := c.CycleOne(); err != nil {
		t.Fatalf("CycleOne: %v", err)
	}
	c.A = 0x07
	b.mem[0x0402] = 0x8D // STA $0000 (all pins output)
	b.mem[0x0403] = 0x00
	b.mem[0x0404] = 0x00
	if _, err := c.CycleOne(); err != nil {
		t.Fatalf("CycleOne: %v", err)
	}
	c.A = 0x00 // drive data register low: LORAM/HIRAM/CHAREN all 0
	b.mem[0x0405] = 0x8D // STA $0001
	b.mem[0x0406] = 0x01
	b.mem[0x0407] = 0x00
	if _, err := c.CycleOne(); err != nil {
		t.Fatalf("CycleOne: %v", err)
	}
	if b.lastCpuBank != 0 {
		t.Errorf("bank = %d, want 0 (direction all-output, data all-low)", b.lastCpuBank)
	}
}

func TestResetLoadsPCFromVector(t *testing.T) {
	c, _ := newChip(t)
	if c.PC != 0x0400 {
		t.Errorf("PC after reset = %#04x, want 0x0400", c.PC)
	}
	if c.P&FlagI == 0 {
		t.Error("I flag not set after reset")
	}
	if c.S != 0xFD {
		t.Errorf("S after reset = %#02x, want 0xfd", c.S)
	}
}

func TestLdaImmediateFlags(t *testing.T) {
	tests := []struct {
		name    string
		val     uint8
		wantZ   bool
		wantN   bool
		wantAcc uint8
	}{
		{"zero", 0x00, true, false, 0x00},
		{"positive", 0x42, false, false, 0x42},
		{"negative", 0xFF, false, true, 0xFF},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, b := newChip(t)
			b.mem[0x0400] = 0xA9 // LDA #i
			b.mem[0x0401] = tc.val
			cycles, err := c.CycleOne()
			if err != nil {
				t.Fatalf("CycleOne: %v", err)
			}
			if cycles != 2 {
				t.Errorf("cycles = %d, want 2", cycles)
			}
			if c.A != tc.wantAcc {
				t.Errorf("A = %#02x, want %#02x\n%s", c.A, tc.wantAcc, spew.Sdump(c))
			}
			if gotZ := c.P&FlagZ != 0; gotZ != tc.wantZ {
				t.Errorf("Z flag = %v, want %v", gotZ, tc.wantZ)
			}
			if gotN := c.P&FlagN != 0; gotN != tc.wantN {
				t.Errorf("N flag = %v, want %v", gotN, tc.wantN)
			}
		})
	}
}

func TestAbsoluteXPageCrossPenalty(t *testing.T) {
	tests := []struct {
		name       string
		base       uint16
		x          uint8
		wantCycles int
	}{
		{"same page", 0x0200, 0x01, 4},
		{"crosses page", 0x02FF, 0x01, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, b := newChip(t)
			c.X = tc.x
			b.mem[0x0400] = 0xBD // LDA abs,X
			b.mem[0x0401] = uint8(tc.base)
			b.mem[0x0402] = uint8(tc.base >> 8)
			cycles, err := c.CycleOne()
			if err != nil {
				t.Fatalf("CycleOne: %v", err)
			}
			if cycles != tc.wantCycles {
				t.Errorf("cycles = %d, want %d", cycles, tc.wantCycles)
			}
		})
	}
}

func TestBranchPenalty(t *testing.T) {
	// BNE with Z clear always taken. Per the reference core's penalty
	// formula, a branch landing in the same page as the post-operand PC
	// costs 2 extra cycles and a branch crossing pages costs 1.
	tests := []struct {
		name       string
		offset     uint8
		wantCycles int
	}{
		{"same page", 0x10, 4},
		{"crosses page", 0x80, 3}, // -128: $0402 -> $0382
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, b := newChip(t)
			c.P &^= FlagZ
			b.mem[0x0400] = 0xD0 // BNE
			b.mem[0x0401] = tc.offset
			cycles, err := c.CycleOne()
			if err != nil {
				t.Fatalf("CycleOne: %v", err)
			}
			if cycles != tc.wantCycles {
				t.Errorf("cycles = %d, want %d", cycles, tc.wantCycles)
			}
		})
	}
}

func TestAdcOverflowAndCarry(t *testing.T) {
	c, b := newChip(t)
	c.A = 0x7F
	c.P &^= FlagC
	b.mem[0x0400] = 0x69 // ADC #i
	b.mem[0x0401] = 0x01
	if _, err := c.CycleOne(); err != nil {
		t.Fatalf("CycleOne: %v", err)
	}
	if c.A != 0x80 {
		t.Errorf("A = %#02x, want 0x80", c.A)
	}
	if c.P&FlagV == 0 {
		t.Error("V flag not set on signed overflow")
	}
	if c.P&FlagN == 0 {
		t.Error("N flag not set")
	}
	if c.P&FlagC != 0 {
		t.Error("C flag incorrectly set")
	}
}

func TestSbcBorrow(t *testing.T) {
	c, b := newChip(t)
	c.A = 0x10
	c.P |= FlagC // carry set means no incoming borrow
	b.mem[0x0400] = 0xE9 // SBC #i
	b.mem[0x0401] = 0x20
	if _, err := c.CycleOne(); err != nil {
		t.Fatalf("CycleOne: %v", err)
	}
	if c.P&FlagC != 0 {
		t.Error("C flag set after a subtraction that borrowed")
	}
	if got, want := c.A, uint8(0xF0); got != want {
		t.Errorf("A = %#02x, want %#02x", got, want)
	}
}

func TestStackPushPull(t *testing.T) {
	c, b := newChip(t)
	c.A = 0x55
	b.mem[0x0400] = 0x48 // PHA
	b.mem[0x0401] = 0xA9 // LDA #i
	b.mem[0x0402] = 0x00
	b.mem[0x0403] = 0x68 // PLA
	for i := 0; i < 3; i++ {
		if _, err := c.CycleOne(); err != nil {
			t.Fatalf("CycleOne[%d]: %v", i, err)
		}
	}
	if c.A != 0x55 {
		t.Errorf("A after PHA/LDA#0/PLA = %#02x, want 0x55", c.A)
	}
}

func TestJsrRts(t *testing.T) {
	c, b := newChip(t)
	b.mem[0x0400] = 0x20 // JSR
	b.mem[0x0401] = 0x00
	b.mem[0x0402] = 0x05
	b.mem[0x0500] = 0x60 // RTS
	if _, err := c.CycleOne(); err != nil {
		t.Fatalf("JSR CycleOne: %v", err)
	}
	if c.PC != 0x0500 {
		t.Fatalf("PC after JSR = %#04x, want 0x0500", c.PC)
	}
	if _, err := c.CycleOne(); err != nil {
		t.Fatalf("RTS CycleOne: %v", err)
	}
	if c.PC != 0x0403 {
		t.Errorf("PC after RTS = %#04x, want 0x0403", c.PC)
	}
}

func TestIndirectIndexedPageCross(t *testing.T) {
	c, b := newChip(t)
	c.Y = 0x01
	b.mem[0x0400] = 0xB1 // LDA (zp),Y
	b.mem[0x0401] = 0x10
	b.mem[0x0010] = 0xFF
	b.mem[0x0011] = 0x02
	b.mem[0x0300] = 0x7E
	cycles, err := c.CycleOne()
	if err != nil {
		t.Fatalf("CycleOne: %v", err)
	}
	if c.A != 0x7E {
		t.Errorf("A = %#02x, want 0x7e", c.A)
	}
	if cycles != 6 {
		t.Errorf("cycles = %d, want 6 (base 5 + 1 page-cross penalty)", cycles)
	}
}

func TestUndocumentedOpcodeHalts(t *testing.T) {
	c, b := newChip(t)
	b.mem[0x0400] = 0x02 // KIL
	_, err := c.CycleOne()
	if err == nil {
		t.Fatal("CycleOne succeeded on a KIL opcode, want *HaltError")
	}
	if _, ok := err.(*HaltError); !ok {
		t.Errorf("error type = %T, want *HaltError", err)
	}
}

func TestDecimalModeHalts(t *testing.T) {
	c, b := newChip(t)
	c.P |= FlagD
	b.mem[0x0400] = 0x69 // ADC #i
	b.mem[0x0401] = 0x01
	_, err := c.CycleOne()
	if err == nil {
		t.Fatal("CycleOne succeeded in decimal mode, want *HaltError")
	}
	if _, ok := err.(*HaltError); !ok {
		t.Errorf("error type = %T, want *HaltError", err)
	}
}

func TestNmiPushesStatusWithBClear(t *testing.T) {
	c, b := newChip(t)
	b.setVector(nmiVector, 0x0600)
	b.mem[0x0400] = 0xEA // NOP, just something to have at reset PC
	c.Nmi()
	cycles, err := c.CycleOne()
	if err != nil {
		t.Fatalf("CycleOne: %v", err)
	}
	if cycles != 7 {
		t.Errorf("cycles = %d, want 7", cycles)
	}
	if c.PC != 0x0600 {
		t.Errorf("PC after NMI = %#04x, want 0x0600", c.PC)
	}
	pushedP := b.mem[0x0100+int(c.S)+1]
	if pushedP&FlagB != 0 {
		t.Error("B flag set in status pushed by NMI, want clear")
	}
}

func TestIrqIgnoredWhenMasked(t *testing.T) {
	c, b := newChip(t)
	c.P |= FlagI
	c.SetIrqSignal(true)
	b.mem[0x0400] = 0xEA // NOP
	cycles, err := c.CycleOne()
	if err != nil {
		t.Fatalf("CycleOne: %v", err)
	}
	if cycles != 2 {
		t.Errorf("cycles = %d, want 2 (IRQ should be masked)", cycles)
	}
	if c.PC != 0x0401 {
		t.Errorf("PC = %#04x, want 0x0401 (NOP executed, IRQ not serviced)", c.PC)
	}
}

// TestRegisterTransfersRoundTrip exercises the transfer instructions with
// deep.Equal so a regression that only flips one field is easy to spot.
func TestRegisterTransfersRoundTrip(t *testing.T) {
	c, b := newChip(t)
	c.A = 0x77
	b.mem[0x0400] = 0xAA // TAX
	b.mem[0x0401] = 0x8A // TXA
	for i := 0; i < 2; i++ {
		if _, err := c.CycleOne(); err != nil {
			t.Fatalf("CycleOne[%d]: %v", i, err)
		}
	}
	want := &Chip{A: 0x77, X: 0x77, PC: 0x0402, S: 0xFD, P: c.P}
	got := &Chip{A: c.A, X: c.X, PC: c.PC, S: c.S, P: c.P}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("register state mismatch: %v", diff)
	}
}
