package machine

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/retroputer/c64/cia"
	"github.com/retroputer/c64/framebuffer"
)

func testConfig() Config {
	c := DefaultConfig()
	c.BasicROM = make([]uint8, 8192)
	c.KernalROM = make([]uint8, 8192)
	c.CharROM = make([]uint8, 4096)
	// Reset vector $FFFC/$FFFD -> $C000, plain RAM in every bank, so the
	// CPU starts executing out of a region the test can preload.
	c.KernalROM[0x1ffc] = 0x00
	c.KernalROM[0x1ffd] = 0xc0
	return c
}

func TestInitWiresAllChips(t *testing.T) {
	m, err := Init(testConfig())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	m.Reset()
	if m.PC() != 0xc000 {
		t.Errorf("PC after Reset = %#04x, want 0xc000 (from the KERNAL reset vector)", m.PC())
	}
}

func TestRunFrameCompletesWithoutError(t *testing.T) {
	m, err := Init(testConfig())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	m.Reset()
	// Fill the startup region with NOPs so the frame runs real instructions
	// instead of looping on BRK (which is valid but uninteresting).
	for addr := 0xc000; addr < 0xc100; addr++ {
		m.bus.RAM()[addr] = 0xea
	}
	fb := framebuffer.New()
	fb.Reset(m.config.VisiblePixels, m.config.VisibleLines)
	if err := m.RunFrame(fb); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
}

func TestRunFramePropagatesCpuHalt(t *testing.T) {
	m, err := Init(testConfig())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	m.Reset()
	m.bus.RAM()[0xc000] = 0x02 // KIL
	fb := framebuffer.New()
	fb.Reset(m.config.VisiblePixels, m.config.VisibleLines)
	if err := m.RunFrame(fb); err == nil {
		t.Fatal("RunFrame succeeded despite a KIL opcode, want a halt error")
	}
}

func TestRunFramePropagatesCiaUnimplementedError(t *testing.T) {
	m, err := Init(testConfig())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	m.Reset()
	// LDA $DC08 (CIA1 TOD tenths-of-seconds register, never modeled).
	ram := m.bus.RAM()
	ram[0xc000] = 0xad
	ram[0xc001] = 0x08
	ram[0xc002] = 0xdc

	fb := framebuffer.New()
	fb.Reset(m.config.VisiblePixels, m.config.VisibleLines)
	err = m.RunFrame(fb)
	if err == nil {
		t.Fatal("RunFrame succeeded despite reading an unimplemented CIA register, want an error")
	}
	if _, ok := err.(*cia.UnimplementedError); !ok {
		t.Errorf("RunFrame error = %T, want *cia.UnimplementedError", err)
	}
}

func TestCiaIrqLinesReflectTimerAUnderflow(t *testing.T) {
	m, err := Init(testConfig())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	m.Reset()
	if m.Cia1Irq().Raised() {
		t.Fatal("Cia1Irq().Raised() = true before any timer activity, want false")
	}
	// STA $DC0D,STA $DC04,STA $DC05,STA $DC0E to unmask and start CIA1
	// timer A (continuous mode) with a 1-cycle latch, then run a frame to
	// force underflow.
	ram := m.bus.RAM()
	prog := []uint8{
		0xa9, 0x81, 0x8d, 0x0d, 0xdc, // LDA #$81 ; STA $DC0D (unmask TA)
		0xa9, 0x01, 0x8d, 0x04, 0xdc, // LDA #$01 ; STA $DC04 (latch lo)
		0xa9, 0x00, 0x8d, 0x05, 0xdc, // LDA #$00 ; STA $DC05 (latch hi)
		0xa9, 0x01, 0x8d, 0x0e, 0xdc, // LDA #$01 ; STA $DC0E (start, continuous)
		0xea,
	}
	copy(ram[0xc000:], prog)
	for addr := 0xc000 + len(prog); addr < 0xc100; addr++ {
		ram[addr] = 0xea
	}
	fb := framebuffer.New()
	fb.Reset(m.config.VisiblePixels, m.config.VisibleLines)
	if err := m.RunFrame(fb); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if !m.Cia1Irq().Raised() {
		t.Error("Cia1Irq().Raised() = false after timer A underflow with IRQ unmasked, want true")
	}
}

func TestLoadPRGCopiesDataAtEmbeddedAddress(t *testing.T) {
	m, err := Init(testConfig())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	m.Reset()

	f, err := ioutil.TempFile("", "test*.prg")
	if err != nil {
		t.Fatalf("TempFile: %v", err)
	}
	defer os.Remove(f.Name())
	// Load address $0801, followed by two data bytes.
	if _, err := f.Write([]byte{0x01, 0x08, 0xaa, 0xbb}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	if err := m.LoadPRG(f.Name()); err != nil {
		t.Fatalf("LoadPRG: %v", err)
	}
	ram := m.bus.RAM()
	if ram[0x0801] != 0xaa || ram[0x0802] != 0xbb {
		t.Errorf("RAM[0x0801:0x0803] = %#02x %#02x, want 0xaa 0xbb", ram[0x0801], ram[0x0802])
	}
}

func TestKeyboardIsAccessible(t *testing.T) {
	m, err := Init(testConfig())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if m.Keyboard() == nil {
		t.Fatal("Keyboard() returned nil")
	}
}
