package bus

import (
	"testing"

	"github.com/nespocket/nespocket/internal/cartridge"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	prg := make([]uint8, 0x8000) // two 16 KiB banks, directly mapped
	chr := make([]uint8, 0x2000)
	prg[0x7FFC] = 0x00 // reset vector low, at cartridge-mapped $FFFC
	prg[0x7FFD] = 0x80 // reset vector high -> PC = 0x8000
	cart := cartridge.NewRaw(prg, chr, false)
	b := New(cart)
	b.Reset()
	return b
}

func TestResetLoadsVectorFromCartridge(t *testing.T) {
	b := newTestBus(t)
	if b.CPU.PC != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000", b.CPU.PC)
	}
}

func TestStepAdvancesPPUByExactlyThreeTicksPerCall(t *testing.T) {
	b := newTestBus(t)
	for i := 0; i < 50; i++ {
		before := b.PPU.Scanline()*341 + b.PPU.Pixel()
		b.Step()
		after := b.PPU.Scanline()*341 + b.PPU.Pixel()
		delta := after - before
		if delta < 0 {
			delta += 341 * 262
		}
		if delta != 3 {
			t.Fatalf("iteration %d: PPU advanced by %d ticks, want 3", i, delta)
		}
	}
}

func TestOAMDMATransfersPageIntoOAM(t *testing.T) {
	b := newTestBus(t)
	for i := 0; i < 256; i++ {
		b.ram[0x0200+i] = uint8(i)
	}

	b.Write(0x4014, 0x02)
	for b.dma.active {
		b.Step()
	}

	for i := 0; i < 256; i++ {
		b.Write(0x2003, uint8(i))
		got := b.Read(0x2004)
		if got != uint8(i) {
			t.Fatalf("oam[%d] = %#02x, want %#02x", i, got, i)
		}
	}
}

func TestOAMDMAStartsAtOAMAddrAndWraps(t *testing.T) {
	b := newTestBus(t)
	for i := 0; i < 256; i++ {
		b.ram[0x0200+i] = uint8(i)
	}
	b.Write(0x2003, 0xFE) // OAMADDR = 0xFE, so the transfer wraps after 2 bytes

	b.Write(0x4014, 0x02)
	for b.dma.active {
		b.Step()
	}

	for i := 0; i < 256; i++ {
		want := uint8(i)
		addr := uint8(0xFE) + uint8(i)
		b.Write(0x2003, addr)
		got := b.Read(0x2004)
		if got != want {
			t.Fatalf("oam[%#02x] = %#02x, want %#02x", addr, got, want)
		}
	}
}

func TestOAMDMAStallsCPUFor513Or514Ticks(t *testing.T) {
	b := newTestBus(t)
	before := b.CPU.TotalCycles()
	b.Write(0x4014, 0x00)

	ticks := 0
	for b.dma.active {
		b.Step()
		ticks++
	}

	if ticks != 513 && ticks != 514 {
		t.Fatalf("OAM-DMA ran for %d ticks, want 513 or 514", ticks)
	}
	after := b.CPU.TotalCycles()
	if after-before != uint64(ticks) {
		t.Fatalf("CPU total cycles advanced by %d, want %d", after-before, ticks)
	}
}

func TestControllerShiftRegisterRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.SetController1(0b10110001) // A, Up, Down, Right pressed (spec scenario 5 layout)

	b.Write(0x4016, 0x01)
	b.Write(0x4016, 0x00)

	want := []uint8{1, 0, 0, 0, 1, 1, 0, 1}
	for i, w := range want {
		got := b.Read(0x4016) & 1
		if got != w {
			t.Fatalf("bit %d = %d, want %d", i, got, w)
		}
	}
}
