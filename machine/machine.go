// Package machine wires a CPU, the VIC-II, both CIAs, the SID stub and the
// three masked ROMs into a complete, runnable C64, and drives the
// cycle-interleaved scheduler that ties the CPU and VIC-II together one
// scanline at a time.
package machine

import (
	"fmt"
	"io/ioutil"

	"github.com/retroputer/c64/bus"
	"github.com/retroputer/c64/cia"
	"github.com/retroputer/c64/cpu"
	"github.com/retroputer/c64/framebuffer"
	"github.com/retroputer/c64/irq"
	"github.com/retroputer/c64/keyboard"
	"github.com/retroputer/c64/memory"
	"github.com/retroputer/c64/sid"
	"github.com/retroputer/c64/vicii"
)

// Config holds the timing and ROM-image parameters a Machine needs. The
// numeric defaults below match the reference PAL timing: 312 raster lines
// at 63 CPU cycles each, 403 visible pixels across 284 visible lines, a
// ~985kHz CPU clock and the resulting ~50Hz frame rate.
type Config struct {
	BasicROM  []uint8
	KernalROM []uint8
	CharROM   []uint8

	TotalLines    int
	VisibleLines  int
	CyclesPerLine int
	VisiblePixels int

	ScreenMagnification int
	CpuClock             int
	Fps                  float64
}

// DefaultConfig returns the reference PAL timing Config with no ROM images
// loaded; callers fill those in via LoadROMs or by setting the fields
// directly.
func DefaultConfig() Config {
	const (
		totalLines    = 312
		cyclesPerLine = 63
		cpuClock      = 985248
	)
	return Config{
		TotalLines:           totalLines,
		VisibleLines:         284,
		CyclesPerLine:        cyclesPerLine,
		VisiblePixels:        403,
		ScreenMagnification:  2,
		CpuClock:             cpuClock,
		Fps:                  float64(cpuClock) / float64(totalLines*cyclesPerLine),
	}
}

// LoadROMs reads the three masked ROM images from basicPath/kernalPath/
// charPath, validating their sizes (8KiB BASIC and KERNAL, 4KiB CHAR).
func (c *Config) LoadROMs(basicPath, kernalPath, charPath string) error {
	var err error
	if c.BasicROM, err = loadImage(basicPath, 8192); err != nil {
		return err
	}
	if c.KernalROM, err = loadImage(kernalPath, 8192); err != nil {
		return err
	}
	if c.CharROM, err = loadImage(charPath, 4096); err != nil {
		return err
	}
	return nil
}

func loadImage(path string, size int) ([]uint8, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("machine: can't open %s: %w", path, err)
	}
	if len(b) != size {
		return nil, fmt.Errorf("machine: %s is %d bytes, want %d", path, len(b), size)
	}
	return b, nil
}

// Machine is a complete, runnable Commodore 64.
type Machine struct {
	config Config

	bus      *bus.Bus
	cia1     *cia.Cia1
	cia2     *cia.Cia2
	cpu      *cpu.Chip
	sid      *sid.Chip
	vic      *vicii.Chip
	keyboard *keyboard.Keyboard

	overflowCycles int
}

// Init constructs a Machine from config. BasicROM, KernalROM and CharROM
// must already be populated (see LoadROMs).
func Init(config Config) (*Machine, error) {
	basicROM, err := memory.NewROMBank(config.BasicROM, nil)
	if err != nil {
		return nil, fmt.Errorf("machine: BasicROM: %w", err)
	}
	kernalROM, err := memory.NewROMBank(config.KernalROM, nil)
	if err != nil {
		return nil, fmt.Errorf("machine: KernalROM: %w", err)
	}
	charROM, err := memory.NewROMBank(config.CharROM, nil)
	if err != nil {
		return nil, fmt.Errorf("machine: CharROM: %w", err)
	}

	b := bus.New()
	kb := keyboard.New()

	cia1, err := cia.InitCia1(&cia.Cia1Def{Bus: b, Keyboard: kb})
	if err != nil {
		return nil, fmt.Errorf("machine: Cia1: %w", err)
	}
	cia2, err := cia.InitCia2(&cia.Cia2Def{Bus: b})
	if err != nil {
		return nil, fmt.Errorf("machine: Cia2: %w", err)
	}
	cpuChip, err := cpu.Init(&cpu.ChipDef{Bus: b})
	if err != nil {
		return nil, fmt.Errorf("machine: Cpu: %w", err)
	}
	sidChip := sid.Init()
	vicChip, err := vicii.Init(&vicii.ChipDef{
		Bus:           b,
		VisiblePixels: config.VisiblePixels,
		VisibleLines:  config.VisibleLines,
	})
	if err != nil {
		return nil, fmt.Errorf("machine: VicII: %w", err)
	}

	if err := b.Wire(&bus.Def{
		Cia1: cia1, Cia2: cia2, Cpu: cpuChip, Sid: sidChip, Vic: vicChip,
		BasicROM: basicROM, KernalROM: kernalROM, CharROM: charROM,
	}); err != nil {
		return nil, fmt.Errorf("machine: %w", err)
	}

	return &Machine{
		config:   config,
		bus:      b,
		cia1:     cia1,
		cia2:     cia2,
		cpu:      cpuChip,
		sid:      sidChip,
		vic:      vicChip,
		keyboard: kb,
	}, nil
}

// Reset brings every chip back to its power-on state.
func (m *Machine) Reset() {
	m.overflowCycles = 0
	m.cia1.Reset()
	m.cia2.Reset()
	m.cpu.Reset()
	m.sid.Reset()
	m.vic.Reset()
	m.keyboard.Reset()
}

// Keyboard returns the keyboard matrix for host input wiring.
func (m *Machine) Keyboard() *keyboard.Keyboard {
	return m.keyboard
}

// PC returns the CPU's current program counter, for diagnostics and the
// debug HUD.
func (m *Machine) PC() uint16 {
	return m.cpu.PC
}

// Cia1Irq and Cia2Irq expose each CIA's aggregate interrupt line as an
// irq.Sender, for diagnostics that only need to poll current line state
// rather than receive CIA1's/CIA2's push through the bus.
func (m *Machine) Cia1Irq() irq.Sender { return m.cia1 }
func (m *Machine) Cia2Irq() irq.Sender { return m.cia2 }

// LoadPRG loads a .prg file's first two bytes as its little-endian load
// address and copies the remaining bytes into RAM starting there, the same
// format disassembler.go already parses for standalone disassembly.
func (m *Machine) LoadPRG(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("machine: can't open %s: %w", path, err)
	}
	if len(data) < 2 {
		return fmt.Errorf("machine: %s is too short to contain a load address", path)
	}
	loadAddr := uint16(data[0]) | uint16(data[1])<<8
	ram := m.bus.RAM()
	for i, v := range data[2:] {
		addr := int(loadAddr) + i
		if addr >= len(ram) {
			break
		}
		ram[addr] = v
	}
	return nil
}

// RunFrame renders exactly one frame into frameBuffer, interleaving CPU and
// VIC-II execution one scanline at a time: the VIC-II begins each line,
// then the two chips run cycle for cycle (VIC in 1-cycle steps, the CPU in
// whole-instruction bursts) until the line's cycle budget is spent, with
// any cycle overrun carried into the next line. It returns the first fatal
// error encountered, if any: a CPU halt, or an error the bus latched from an
// unimplemented peripheral register access.
func (m *Machine) RunFrame(frameBuffer *framebuffer.FrameBuffer) error {
	cyclesPerLine := m.config.CyclesPerLine
	for line := 0; line < m.config.TotalLines; line++ {
		lineBuffer := frameBuffer.Line(line)
		m.vic.BeginLine(line, lineBuffer)

		cpuCycle := m.overflowCycles
		vicCycle := 0
		for cpuCycle < cyclesPerLine {
			startCycles := cpuCycle
			for vicCycle <= cpuCycle {
				m.vic.CycleOne()
				vicCycle++
			}
			cycles, err := m.cpu.CycleOne()
			if err != nil {
				return err
			}
			if err := m.bus.Err(); err != nil {
				return err
			}
			cpuCycle += cycles
			elapsed := cpuCycle - startCycles
			m.cia1.UpdateTimers(elapsed)
			m.cia2.UpdateTimers(elapsed)
		}
		m.overflowCycles = cpuCycle - cyclesPerLine
	}
	return nil
}
