// Package bus wires the CPU, PPU, cartridge and controller into the single
// system clock: it implements the CPU's memory decode, runs the PPU at
// three ticks per CPU tick, forwards NMI edges, and drives the OAM-DMA
// stall protocol.
package bus

import (
	"github.com/nespocket/nespocket/internal/cartridge"
	"github.com/nespocket/nespocket/internal/controller"
	"github.com/nespocket/nespocket/internal/cpu"
	"github.com/nespocket/nespocket/internal/ppu"
)

// Bus binds the NES components and satisfies cpu.Bus.
type Bus struct {
	CPU        *cpu.CPU
	PPU        *ppu.PPU
	Cart       *cartridge.Cartridge
	Controller *controller.Controller

	ram [0x0800]uint8

	dma dmaState
}

// dmaState tracks the in-flight OAM-DMA transfer: total is 513 or 514
// ticks, elapsed counts ticks consumed so far, and latch holds the byte
// read on an even tick until the following odd tick writes it to OAM.
type dmaState struct {
	active    bool
	page      uint8
	startAddr uint8
	total     int
	elapsed   int
	latch     uint8
}

// New creates a bus wired to cart. Call Reset before stepping.
func New(cart *cartridge.Cartridge) *Bus {
	b := &Bus{Cart: cart, Controller: controller.New()}
	b.PPU = ppu.New(cart)
	b.CPU = cpu.New(b)
	return b
}

// Reset brings the CPU and PPU to their post-power state.
func (b *Bus) Reset() {
	b.PPU.Reset()
	b.CPU.Reset()
	b.Controller.Reset()
	b.dma = dmaState{}
}

// Read implements cpu.Bus.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x07FF]
	case addr < 0x4000:
		return b.PPU.RegRead(int(addr & 7))
	case addr == 0x4016:
		return b.Controller.Read()
	case addr == 0x4017:
		return 0
	case addr >= 0x8000:
		if v, ok := b.Cart.CPURead(addr); ok {
			return v
		}
		return 0
	default:
		return 0
	}
}

// Write implements cpu.Bus.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = value
	case addr < 0x4000:
		b.PPU.RegWrite(int(addr&7), value)
	case addr == 0x4014:
		b.startOAMDMA(value)
	case addr == 0x4016:
		b.Controller.Write(value)
	case addr >= 0x8000:
		b.Cart.CPUWrite(addr, value)
	}
}

func (b *Bus) startOAMDMA(page uint8) {
	total := 513
	if b.CPU.TotalCycles()%2 == 1 {
		total = 514
	}
	b.dma = dmaState{active: true, page: page, startAddr: b.PPU.OAMAddr(), total: total}
}

// Step advances global time by one CPU tick: three PPU ticks, NMI
// servicing, then either an OAM-DMA transfer tick or a CPU tick.
func (b *Bus) Step() {
	for i := 0; i < 3; i++ {
		b.PPU.Step()
	}
	if b.PPU.TakeNMI() {
		b.CPU.NMI()
	}

	if b.dma.active {
		b.stepOAMDMA()
		return
	}
	b.CPU.Step()
}

// stepOAMDMA runs one tick of the 513/514-tick OAM-DMA protocol: a leading
// dummy/align tick (two when total is 514, for the odd-parity alignment
// wait), then exactly 256 read/write pairs alternating a page read on even
// ticks and an OAM write on odd ticks -- nothing left over.
func (b *Bus) stepOAMDMA() {
	alignOffset := 1
	if b.dma.total == 514 {
		alignOffset = 2
	}

	if b.dma.elapsed >= alignOffset {
		pairIndex := b.dma.elapsed - alignOffset
		i := uint8(pairIndex / 2)
		if pairIndex%2 == 0 {
			b.dma.latch = b.Read(uint16(b.dma.page)<<8 | uint16(i))
		} else {
			b.PPU.OAMWrite(b.dma.startAddr+i, b.dma.latch)
		}
	}

	b.CPU.Stall(1)
	b.dma.elapsed++
	if b.dma.elapsed >= b.dma.total {
		b.dma.active = false
	}
}

// StepFrame runs CPU ticks until the PPU reports a completed framebuffer.
func (b *Bus) StepFrame() *ppu.Framebuffer {
	for {
		b.Step()
		if fb, ok := b.PPU.FrameReady(); ok {
			return fb
		}
	}
}

// SetController1 forwards an 8-bit button status snapshot to controller 1.
func (b *Bus) SetController1(status uint8) {
	b.Controller.SetStatus(status)
}
