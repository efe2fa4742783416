// Package bus implements the memory-mapped address decoding that ties the
// CPU, VIC-II, both CIAs, SID and the masked ROMs together into a single
// 64KiB address space with PLA-style bank switching.
package bus

import (
	"fmt"

	"github.com/retroputer/c64/memory"
)

// Cpu is the subset of *cpu.Chip the bus drives directly: the two interrupt
// inputs.
type Cpu interface {
	Nmi()
	SetIrqSignal(bool)
}

// Chip is a readable/writable peripheral register file: CIA1, CIA2, SID and
// the VIC-II all satisfy this from the bus's point of view. The error return
// surfaces a fatal, unimplemented-register access (e.g. *cia.UnimplementedError);
// SID and the VIC-II never produce one.
type Chip interface {
	Read(addr uint16) (uint8, error)
	Write(addr uint16, val uint8) error
}

// region identifies which backing store a $0000-$FFFF nibble maps to for a
// given CPU bank, mirroring the reference decode tables.
type region int

const (
	regionRAM region = iota
	regionBasicROM
	regionKernalROM
	regionCharROM
	regionIO
)

// cpuReadRegion[addr>>12][cpuBank] selects the CPU-visible backing store.
// Banks are the 8 combinations of LORAM/HIRAM/CHAREN decoded from the
// processor port at $0000/$0001.
var cpuReadRegion = [16][8]region{
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $0xxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $1xxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $2xxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $3xxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $4xxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $5xxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $6xxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $7xxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $8xxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM}, // $9xxx
	{regionRAM, regionRAM, regionRAM, regionBasicROM, regionRAM, regionRAM, regionRAM, regionBasicROM},  // $Axxx
	{regionRAM, regionRAM, regionRAM, regionBasicROM, regionRAM, regionRAM, regionRAM, regionBasicROM},  // $Bxxx
	{regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM, regionRAM},             // $Cxxx
	{regionRAM, regionCharROM, regionCharROM, regionCharROM, regionRAM, regionIO, regionIO, regionIO},    // $Dxxx
	{regionRAM, regionRAM, regionKernalROM, regionKernalROM, regionRAM, regionRAM, regionKernalROM, regionKernalROM}, // $Exxx
	{regionRAM, regionRAM, regionKernalROM, regionKernalROM, regionRAM, regionRAM, regionKernalROM, regionKernalROM}, // $Fxxx
}

// cpuWriteIsIO[addr>>12][cpuBank] is true where writes are diverted to I/O
// instead of RAM. ROM-mapped reads are always write-through to RAM.
var cpuWriteIsIO = [16][8]bool{
	13: {false, false, false, false, false, true, true, true}, // $Dxxx
}

// Def defines the parameters needed to create a new Bus.
type Def struct {
	Cia1 Chip
	Cia2 Chip
	Cpu  Cpu
	Sid  Chip
	Vic  Chip

	BasicROM  memory.Bank
	KernalROM memory.Bank
	CharROM   memory.Bank
}

// Bus is the C64 address decoder: 64KiB of RAM, 1KiB of color RAM, the three
// masked ROMs, and the CPU-bank/VIC-bank windows over them.
type Bus struct {
	cia1 Chip
	cia2 Chip
	cpu  Cpu
	sid  Chip
	vic  Chip

	basicROM  memory.Bank
	kernalROM memory.Bank
	charROM   memory.Bank

	cpuBank uint8
	vicBank uint8

	ram      [65536]uint8
	colorRAM [1024]uint8

	// pendingErr latches the first fatal peripheral error (e.g. a CIA
	// *UnimplementedError) seen since the last Err call. The CPU's
	// CpuRead/CpuWrite are called from deep inside cpu.Chip.CycleOne's
	// addressing-mode helpers with no error return of their own, so this is
	// the bus's side channel back to Machine.RunFrame, which checks Err
	// after every CycleOne alongside *cpu.HaltError.
	pendingErr error
}

// New returns an unwired Bus. Its peripheral-facing methods (CpuRead,
// VicRead, Nmi, ...) are not safe to call until Wire has been called; it
// exists so peripherals that need a *Bus at construction time (their own
// Init calls happen before the Bus they point back to is fully wired) have
// something concrete to hold a reference to.
func New() *Bus {
	return &Bus{}
}

// Wire attaches def's peripherals and ROM images to an existing Bus. All
// fields of def are required.
func (b *Bus) Wire(def *Def) error {
	if def.Cia1 == nil || def.Cia2 == nil || def.Cpu == nil || def.Sid == nil || def.Vic == nil {
		return fmt.Errorf("bus: Cia1, Cia2, Cpu, Sid and Vic must all be non-nil")
	}
	if def.BasicROM == nil || def.KernalROM == nil || def.CharROM == nil {
		return fmt.Errorf("bus: BasicROM, KernalROM and CharROM must all be non-nil")
	}
	b.cia1 = def.Cia1
	b.cia2 = def.Cia2
	b.cpu = def.Cpu
	b.sid = def.Sid
	b.vic = def.Vic
	b.basicROM = def.BasicROM
	b.kernalROM = def.KernalROM
	b.charROM = def.CharROM
	return nil
}

// Init is a one-shot convenience combining New and Wire, for callers (tests,
// mainly) that have every peripheral in hand up front.
func Init(def *Def) (*Bus, error) {
	b := New()
	if err := b.Wire(def); err != nil {
		return nil, err
	}
	return b, nil
}

// SetCpuBank sets the CPU's current memory bank, as recomputed by the CPU
// from the processor port ($0000/$0001) on every write to either address.
func (b *Bus) SetCpuBank(bank uint8) {
	b.cpuBank = bank & 0x07
}

// Nmi forwards a latched NMI to the CPU, used by CIA2 when its aggregate
// interrupt output rises.
func (b *Bus) Nmi() {
	b.cpu.Nmi()
}

// SetIrq forwards the aggregated CIA1 IRQ line level to the CPU.
func (b *Bus) SetIrq(value bool) {
	b.cpu.SetIrqSignal(value)
}

// CpuRead reads a byte as seen by the CPU through the current bank window.
func (b *Bus) CpuRead(address uint16) uint8 {
	switch cpuReadRegion[address>>12][b.cpuBank] {
	case regionBasicROM:
		return b.basicROM.Read(address)
	case regionKernalROM:
		return b.kernalROM.Read(address)
	case regionCharROM:
		return b.charROM.Read(address)
	case regionIO:
		return b.readIO(address)
	default:
		return b.ram[address]
	}
}

// CpuWrite writes a byte as seen by the CPU. ROM windows are write-through
// to the underlying RAM; only the I/O window diverts writes to peripherals.
func (b *Bus) CpuWrite(address uint16, data uint8) {
	if cpuWriteIsIO[address>>12][b.cpuBank] {
		b.writeIO(address, data)
		return
	}
	b.ram[address] = data
}

// VicRead reads a byte as seen by the VIC-II, which has its own 14-bit
// address space windowed into one of four 16KiB banks and never sees I/O or
// color RAM, only RAM and a char ROM mirror.
func (b *Bus) VicRead(address uint16) uint8 {
	ea := (uint16(b.vicBank) << 14) | (address & 0x3fff)
	switch vicReadRegion[ea>>12][b.vicBank] {
	case regionCharROM:
		return b.charROM.Read(ea)
	default:
		return b.ram[ea]
	}
}

// VicReadColor reads a nibble from color RAM, always visible to the VIC
// regardless of bank.
func (b *Bus) VicReadColor(address uint16) uint8 {
	return b.colorRAM[address&0x03ff] & 0x0f
}

// vicReadRegion[ea>>12][vicBank] selects RAM vs. the char ROM mirror that
// appears at $1000-$1FFF of bank 0 and $9000-$9FFF of bank 2.
var vicReadRegion = [16][4]region{
	1: {regionCharROM, regionRAM, regionRAM, regionRAM},
	9: {regionRAM, regionRAM, regionCharROM, regionRAM},
}

func (b *Bus) readIO(address uint16) uint8 {
	switch (address >> 8) & 0xf {
	case 0, 1, 2, 3:
		v, err := b.vic.Read(address)
		b.setErr(err)
		return v
	case 4, 5, 6, 7:
		v, err := b.sid.Read(address)
		b.setErr(err)
		return v
	case 8, 9, 10, 11:
		return b.colorRAM[address&0x03ff] & 0x0f
	case 12:
		v, err := b.cia1.Read(address)
		b.setErr(err)
		return v
	case 13:
		v, err := b.cia2.Read(address)
		b.setErr(err)
		return v
	default:
		return 0 // cartridge I/O windows, unimplemented
	}
}

func (b *Bus) writeIO(address uint16, data uint8) {
	switch (address >> 8) & 0xf {
	case 0, 1, 2, 3:
		b.setErr(b.vic.Write(address, data))
	case 4, 5, 6, 7:
		b.setErr(b.sid.Write(address, data))
	case 8, 9, 10, 11:
		b.colorRAM[address&0x03ff] = data & 0x0f
	case 12:
		b.setErr(b.cia1.Write(address, data))
	case 13:
		b.setErr(b.cia2.Write(address, data))
	default:
		// cartridge I/O windows, unimplemented
	}
}

// setErr latches err if it is the first error seen since the last Err call.
func (b *Bus) setErr(err error) {
	if err != nil && b.pendingErr == nil {
		b.pendingErr = err
	}
}

// Err returns and clears the first fatal peripheral error raised by a
// register access since the last call to Err, if any.
func (b *Bus) Err() error {
	err := b.pendingErr
	b.pendingErr = nil
	return err
}

// RAM gives the machine package direct access for PRG loading (and its
// tests direct access for preloading programs); it bypasses bank switching
// entirely.
func (b *Bus) RAM() []uint8 {
	return b.ram[:]
}
