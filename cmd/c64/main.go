// Binary c64 is the host shell: it wires three ROM images and an optional
// autoloaded .prg into a machine.Machine, pumps SDL keyboard events into it,
// throttles to the PAL frame rate, and blits each finished frame to a
// window.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"path/filepath"
	"sync"

	"github.com/retroputer/c64/framebuffer"
	"github.com/retroputer/c64/machine"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	romDir   = flag.String("roms", "c64_roms", "Directory holding basic.rom, kernal.rom and char.rom")
	prg      = flag.String("prg", "", "Optional .prg file to load into RAM at its embedded load address after Reset")
	debug    = flag.Bool("debug", false, "If true logs a one-line summary every frame")
	debugHUD = flag.Bool("debug_hud", false, "If true overlays the current CPU PC on the window")
	frames   = flag.Int("frames", 0, "If > 0, run exactly this many frames headless (no window) and exit; for scripted smoke tests")
)

// palette is the VIC-II's 16-entry RGB palette, indexed by the low nibble of
// each frame buffer pixel.
var palette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xff}, {0xff, 0xff, 0xff, 0xff}, {0x68, 0x37, 0x2b, 0xff}, {0x70, 0xa4, 0xb2, 0xff},
	{0x6f, 0x3d, 0x86, 0xff}, {0x58, 0x8d, 0x43, 0xff}, {0x35, 0x28, 0x79, 0xff}, {0xb8, 0xc7, 0x6f, 0xff},
	{0x6f, 0x4f, 0x25, 0xff}, {0x43, 0x39, 0x00, 0xff}, {0x9a, 0x67, 0x59, 0xff}, {0x44, 0x44, 0x44, 0xff},
	{0x6c, 0x6c, 0x6c, 0xff}, {0x9a, 0xd2, 0x84, 0xff}, {0x6c, 0x5e, 0xb5, 0xff}, {0x95, 0x95, 0x95, 0xff},
}

func main() {
	flag.Parse()

	config := machine.DefaultConfig()
	if err := config.LoadROMs(
		filepath.Join(*romDir, "basic.rom"),
		filepath.Join(*romDir, "kernal.rom"),
		filepath.Join(*romDir, "char.rom"),
	); err != nil {
		log.Fatalf("Can't load ROMs: %v", err)
	}

	m, err := machine.Init(config)
	if err != nil {
		log.Fatalf("Can't init machine: %v", err)
	}
	m.Reset()
	if *prg != "" {
		if err := m.LoadPRG(*prg); err != nil {
			log.Fatalf("Can't load %s: %v", *prg, err)
		}
	}

	fb := framebuffer.New()
	fb.Reset(config.VisiblePixels, config.VisibleLines)

	if *frames > 0 {
		runHeadless(m, fb, *frames)
		return
	}
	runWindowed(m, fb, config)
}

// runHeadless drives exactly n frames with no window, for scripted smoke
// tests that shouldn't depend on a display being available.
func runHeadless(m *machine.Machine, fb *framebuffer.FrameBuffer, n int) {
	for i := 0; i < n; i++ {
		if err := m.RunFrame(fb); err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
		if *debug {
			log.Printf("frame %d: PC=%#04x IRQ=%v NMI=%v", i, m.PC(), m.Cia1Irq().Raised(), m.Cia2Irq().Raised())
		}
	}
}

func runWindowed(m *machine.Machine, fb *framebuffer.FrameBuffer, config machine.Config) {
	width := config.VisiblePixels
	height := config.VisibleLines
	magnification := config.ScreenMagnification
	ticksPerFrame := uint32(1000.0 / config.Fps)

	var window *sdl.Window
	var renderer *sdl.Renderer
	var texture *sdl.Texture

	sdl.Main(func() {
		var wg sync.WaitGroup
		wg.Add(1)
		sdl.Do(func() {
			if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
				log.Fatalf("Can't init SDL: %v", err)
			}
			var err error
			window, err = sdl.CreateWindow("c64",
				sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
				int32(width*magnification), int32(height*magnification),
				sdl.WINDOW_SHOWN)
			if err != nil {
				log.Fatalf("Can't create window: %v", err)
			}
			renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
			if err != nil {
				log.Fatalf("Can't create renderer: %v", err)
			}
			texture, err = renderer.CreateTexture(sdl.PIXELFORMAT_RGBA32, sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
			if err != nil {
				log.Fatalf("Can't create texture: %v", err)
			}
			wg.Done()
		})
		wg.Wait()
		defer func() {
			texture.Destroy()
			renderer.Destroy()
			window.Destroy()
			sdl.Quit()
		}()

		startTick := sdl.GetTicks()
		frame := 0
		for pumpMessages(m) {
			if err := m.RunFrame(fb); err != nil {
				log.Fatalf("Tick error: %v", err)
			}
			displayFrame(renderer, texture, fb, width, height, m, frame)
			if *debug {
				log.Printf("frame %d: PC=%#04x IRQ=%v NMI=%v", frame, m.PC(), m.Cia1Irq().Raised(), m.Cia2Irq().Raised())
			}
			frame++

			elapsed := sdl.GetTicks() - startTick
			if delay := ticksPerFrame - elapsed; delay > 0 && delay < ticksPerFrame {
				sdl.Delay(delay)
			}
			startTick = sdl.GetTicks()
		}
	})
}

func pumpMessages(m *machine.Machine) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			switch e.Type {
			case sdl.KEYDOWN:
				m.Keyboard().OnKeyDown(e.Keysym.Scancode)
			case sdl.KEYUP:
				m.Keyboard().OnKeyUp(e.Keysym.Scancode)
			}
		}
	}
	return true
}

func displayFrame(renderer *sdl.Renderer, texture *sdl.Texture, fb *framebuffer.FrameBuffer, width, height int, m *machine.Machine, frame int) {
	pixels, pitch, err := texture.Lock(nil)
	if err != nil {
		log.Fatalf("Can't lock texture: %v", err)
	}
	for line := 0; line < height; line++ {
		src := fb.Line(line)
		dest := pixels[line*pitch : line*pitch+width*4]
		for x := 0; x < width; x++ {
			c := palette[src[x]&0x0f]
			dest[x*4+0] = c.R
			dest[x*4+1] = c.G
			dest[x*4+2] = c.B
			dest[x*4+3] = c.A
		}
	}
	if *debugHUD {
		drawDebugHUD(pixels, pitch, width, height, m.PC(), frame)
	}
	texture.Unlock()
	renderer.Copy(texture, nil, nil)
	renderer.Present()
}

// drawDebugHUD overlays the current CPU PC (from Machine) and the host's own
// frame count in the top-left corner of the still-locked texture.
func drawDebugHUD(pixels []byte, pitch, width, height int, pc uint16, frame int) {
	img := &image.RGBA{Pix: pixels, Stride: pitch, Rect: image.Rect(0, 0, width, height)}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0xff, 0xff, 0x00, 0xff}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, 12),
	}
	d.DrawString(fmt.Sprintf("PC=%#04x F=%d", pc, frame))
}
