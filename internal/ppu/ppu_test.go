package ppu

import "testing"

// fakeCart is a minimal CartridgeBus: CHR space backed by a flat array, no
// mirroring configured explicitly (defaults to horizontal).
type fakeCart struct {
	chr      [0x2000]uint8
	vertical bool
}

func (c *fakeCart) PPURead(addr uint16) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	return c.chr[addr], true
}
func (c *fakeCart) PPUWrite(addr uint16, value uint8) bool { return false }
func (c *fakeCart) VerticalMirroring() bool                { return c.vertical }

func newTestPPU() (*PPU, *fakeCart) {
	cart := &fakeCart{}
	p := New(cart)
	p.Reset()
	return p, cart
}

func TestPaletteMirroring(t *testing.T) {
	p, _ := newTestPPU()
	pairs := [4][2]uint16{{0x10, 0x00}, {0x14, 0x04}, {0x18, 0x08}, {0x1C, 0x0C}}
	for _, pr := range pairs {
		p.busWrite(0x3F00+pr[1], 0x2A)
		got := p.busRead(0x3F00 + pr[0])
		if got != 0x2A {
			t.Fatalf("palette mirror $3F%02X = %#02x, want 0x2A (mirrors $3F%02X)", pr[0], got, pr[1])
		}
	}
}

func TestAddrRegisterRoundTrip(t *testing.T) {
	p, cart := newTestPPU()
	cart.chr[0x0000] = 0xAB // unused here, just to show CHR reachable

	p.RegWrite(6, 0x21) // high byte of $2108
	p.RegWrite(6, 0x08) // low byte

	if p.v.data != 0x2108 {
		t.Fatalf("v = %#04x, want 0x2108", p.v.data)
	}
	if p.toggle {
		t.Fatal("write toggle must be clear after the second $2006 write")
	}
}

func TestStatusReadClearsVBlankAndToggle(t *testing.T) {
	p, _ := newTestPPU()
	p.status |= statusVBlank
	p.toggle = true

	status := p.RegRead(2)

	if status&statusVBlank == 0 {
		t.Fatal("RegRead(2) should return vblank=1 from the pre-clear snapshot")
	}
	if p.status&statusVBlank != 0 {
		t.Fatal("reading $2002 must clear vblank")
	}
	if p.toggle {
		t.Fatal("reading $2002 must clear the write toggle")
	}
}

func TestVBlankLatchAndNMIEdge(t *testing.T) {
	p, _ := newTestPPU()
	p.RegWrite(0, ctrlNMIEnable)

	// Step() evaluates the (scanline, pixel) state that precedes the tick's
	// own increment, so reaching state (241, 1) takes one more call than
	// the raw tick index for that state.
	ticks := 241*341 + 1 + 1
	for i := 0; i < ticks; i++ {
		p.Step()
	}

	if p.status&statusVBlank == 0 {
		t.Fatal("PPUSTATUS vblank bit should be set at scanline 241 pixel 1")
	}
	if !p.TakeNMI() {
		t.Fatal("expected a pending NMI edge at vblank start with NMI enabled")
	}
	if p.TakeNMI() {
		t.Fatal("TakeNMI must consume the edge; a second call should return false")
	}
}

func TestThreeTicksPerCPUTickInvariantHoldsAcrossAFrame(t *testing.T) {
	p, _ := newTestPPU()
	const cpuTicks = 1000
	for i := 0; i < cpuTicks; i++ {
		p.Step()
		p.Step()
		p.Step()
	}
	total := p.scanline*341 + p.pixel
	if total != (cpuTicks*3)%(341*262) {
		t.Fatalf("tick accounting drifted: scanline=%d pixel=%d", p.scanline, p.pixel)
	}
}

func TestVRegisterStaysWithin15Bits(t *testing.T) {
	p, _ := newTestPPU()
	p.v.data = 0x7FFF
	p.v.incrementCoarseX()
	if p.v.data&0x8000 != 0 {
		t.Fatalf("v = %#04x, bit 15 must stay clear", p.v.data)
	}
}

func TestBackgroundPipelineFetchesNametableByte(t *testing.T) {
	p, cart := newTestPPU()
	cart.chr[0x0010] = 0x55 // pattern low byte for tile $01, row 0
	cart.chr[0x0018] = 0xAA // pattern high byte

	p.busWrite(0x2001, 0x01) // nametable byte at coarse X 1 -> tile index 1
	p.mask = maskShowBG
	p.RegWrite(0, 0) // background pattern table 0

	// The fetch window starts at pixel 2, so phase 0 ((pixel-1)%8==0) first
	// falls at pixel 9, after phase 7 at pixel 8 has already advanced v's
	// coarse X from 0 to 1; that first fetch therefore reads $2001. Step()
	// inspects the pixel that precedes its own increment, so the 10th call
	// is the one that observes pixel==9.
	p.scanline = 0
	p.pixel = 0
	for i := 0; i < 10; i++ {
		p.Step()
	}

	if p.ntByte != 0x01 {
		t.Fatalf("ntByte = %#02x, want 0x01", p.ntByte)
	}
}
