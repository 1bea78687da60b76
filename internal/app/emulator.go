package app

import (
	"time"

	"github.com/nespocket/nespocket/internal/bus"
	"github.com/nespocket/nespocket/internal/cartridge"
	"github.com/nespocket/nespocket/internal/ppu"
)

// Emulator owns the system bus and drives it one frame at a time on behalf
// of the host loop in Application.
type Emulator struct {
	bus    *bus.Bus
	config *Config

	frameCount    uint64
	lastResetTime time.Time
}

// NewEmulator creates an Emulator wired to a freshly loaded cartridge.
func NewEmulator(cart *cartridge.Cartridge, config *Config) *Emulator {
	e := &Emulator{
		bus:    bus.New(cart),
		config: config,
	}
	e.Reset()
	return e
}

// Reset brings the CPU and PPU back to their post-power state. Safe to call
// between frames (spec §5).
func (e *Emulator) Reset() {
	e.bus.Reset()
	e.frameCount = 0
	e.lastResetTime = time.Now()
}

// StepFrame runs the system until the PPU reports a completed framebuffer,
// as spec §2's "host-driven outer loop" describes.
func (e *Emulator) StepFrame() *ppu.Framebuffer {
	fb := e.bus.StepFrame()
	e.frameCount++
	return fb
}

// SetController1 forwards the host's 8-bit button snapshot to the bus.
func (e *Emulator) SetController1(status uint8) {
	e.bus.SetController1(status)
}

// FrameCount reports the number of frames rendered since the last Reset.
func (e *Emulator) FrameCount() uint64 { return e.frameCount }
