package bus

import (
	"errors"
	"testing"

	"github.com/retroputer/c64/memory"
)

type fakeChip struct {
	lastRead  uint16
	lastWrite uint16
	lastData  uint8
	readVal   uint8
	readErr   error
	writeErr  error
}

func (f *fakeChip) Read(addr uint16) (uint8, error) {
	f.lastRead = addr
	return f.readVal, f.readErr
}

func (f *fakeChip) Write(addr uint16, val uint8) error {
	f.lastWrite = addr
	f.lastData = val
	return f.writeErr
}

type fakeCpu struct {
	nmiCount int
	irq      bool
}

func (f *fakeCpu) Nmi()                { f.nmiCount++ }
func (f *fakeCpu) SetIrqSignal(v bool) { f.irq = v }

func newTestBus(t *testing.T) (*Bus, *fakeChip, *fakeChip, *fakeChip, *fakeChip, *fakeCpu) {
	t.Helper()
	vic := &fakeChip{}
	sid := &fakeChip{}
	cia1 := &fakeChip{}
	cia2 := &fakeChip{}
	cpu := &fakeCpu{}

	basicImg := make([]uint8, 8192)
	basicImg[0] = 0xB0
	kernalImg := make([]uint8, 8192)
	kernalImg[0] = 0xE0
	charImg := make([]uint8, 4096)
	charImg[0] = 0xC0

	basic, err := memory.NewROMBank(basicImg, nil)
	if err != nil {
		t.Fatalf("NewROMBank(basic): %v", err)
	}
	kernal, err := memory.NewROMBank(kernalImg, nil)
	if err != nil {
		t.Fatalf("NewROMBank(kernal): %v", err)
	}
	char, err := memory.NewROMBank(charImg, nil)
	if err != nil {
		t.Fatalf("NewROMBank(char): %v", err)
	}

	b, err := Init(&Def{
		Cia1: cia1, Cia2: cia2, Cpu: cpu, Sid: sid, Vic: vic,
		BasicROM: basic, KernalROM: kernal, CharROM: char,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return b, vic, sid, cia1, cia2, cpu
}

func TestCpuReadRAMBank(t *testing.T) {
	b, _, _, _, _, _ := newTestBus(t)
	b.SetCpuBank(7) // all ROMs mapped in
	b.CpuWrite(0x0002, 0x42)
	if got := b.CpuRead(0x0002); got != 0x42 {
		t.Errorf("CpuRead($0002) = %#02x, want 0x42 (zero page is always RAM)", got)
	}
}

func TestCpuReadBankedROMs(t *testing.T) {
	b, _, _, _, _, _ := newTestBus(t)
	b.SetCpuBank(7) // LORAM/HIRAM/CHAREN all set: BASIC+KERNAL+IO visible
	if got := b.CpuRead(0xA000); got != 0xB0 {
		t.Errorf("CpuRead($A000) bank 7 = %#02x, want BASIC ROM byte 0xb0", got)
	}
	if got := b.CpuRead(0xE000); got != 0xE0 {
		t.Errorf("CpuRead($E000) bank 7 = %#02x, want KERNAL ROM byte 0xe0", got)
	}
}

func TestCpuReadAllRAMBank(t *testing.T) {
	b, _, _, _, _, _ := newTestBus(t)
	b.SetCpuBank(0) // everything swapped out, plain RAM underneath
	b.CpuWrite(0xA000, 0x11)
	if got := b.CpuRead(0xA000); got != 0x11 {
		t.Errorf("CpuRead($A000) bank 0 = %#02x, want 0x11 (RAM, ROM banked out)", got)
	}
}

func TestCpuWriteThroughROMWindow(t *testing.T) {
	b, _, _, _, _, _ := newTestBus(t)
	b.SetCpuBank(7)
	b.CpuWrite(0xA000, 0x99)
	b.SetCpuBank(0)
	if got := b.CpuRead(0xA000); got != 0x99 {
		t.Errorf("CpuRead($A000) after write-through bank 0 = %#02x, want 0x99", got)
	}
}

func TestIoDispatch(t *testing.T) {
	b, vic, sid, cia1, cia2, _ := newTestBus(t)
	b.SetCpuBank(7)
	b.CpuWrite(0xD000, 0x01) // VIC window
	if vic.lastWrite != 0xD000 || vic.lastData != 0x01 {
		t.Errorf("VIC write not dispatched: %+v", vic)
	}
	b.CpuWrite(0xD400, 0x02) // SID window
	if sid.lastWrite != 0xD400 || sid.lastData != 0x02 {
		t.Errorf("SID write not dispatched: %+v", sid)
	}
	b.CpuWrite(0xDC00, 0x03) // CIA1 window
	if cia1.lastWrite != 0xDC00 || cia1.lastData != 0x03 {
		t.Errorf("CIA1 write not dispatched: %+v", cia1)
	}
	b.CpuWrite(0xDD00, 0x04) // CIA2 window
	if cia2.lastWrite != 0xDD00 || cia2.lastData != 0x04 {
		t.Errorf("CIA2 write not dispatched: %+v", cia2)
	}
}

func TestColorRamMaskedToNibble(t *testing.T) {
	b, _, _, _, _, _ := newTestBus(t)
	b.SetCpuBank(7)
	b.CpuWrite(0xD800, 0xFF)
	if got := b.CpuRead(0xD800); got != 0x0f {
		t.Errorf("color RAM readback = %#02x, want masked to low nibble 0x0f", got)
	}
}

func TestVicSeesCharRomMirrorInBankZero(t *testing.T) {
	b, _, _, _, _, _ := newTestBus(t)
	if got := b.VicRead(0x1000); got != 0xC0 {
		t.Errorf("VicRead($1000) bank 0 = %#02x, want char ROM byte 0xc0", got)
	}
}

func TestErrLatchesFirstPeripheralErrorAndClearsOnRead(t *testing.T) {
	b, _, _, cia1, _, _ := newTestBus(t)
	b.SetCpuBank(7)
	wantErr := errors.New("unimplemented register")
	cia1.readErr = wantErr
	b.CpuRead(0xDC00) // CIA1 window
	if err := b.Err(); err != wantErr {
		t.Errorf("Err() = %v, want %v", err, wantErr)
	}
	if err := b.Err(); err != nil {
		t.Errorf("Err() after first call = %v, want nil (should be cleared)", err)
	}
}

func TestErrLatchesFromWriteToo(t *testing.T) {
	b, _, _, _, cia2, _ := newTestBus(t)
	b.SetCpuBank(7)
	wantErr := errors.New("unimplemented register")
	cia2.writeErr = wantErr
	b.CpuWrite(0xDD00, 0x00) // CIA2 window
	if err := b.Err(); err != wantErr {
		t.Errorf("Err() = %v, want %v", err, wantErr)
	}
}

func TestNmiAndIrqForwarding(t *testing.T) {
	b, _, _, _, _, cpu := newTestBus(t)
	b.Nmi()
	if cpu.nmiCount != 1 {
		t.Errorf("Nmi() forwarded count = %d, want 1", cpu.nmiCount)
	}
	b.SetIrq(true)
	if !cpu.irq {
		t.Error("SetIrq(true) not forwarded to cpu")
	}
}
