package cpu

import "testing"

// testBus is a flat 64 KiB memory used to exercise the CPU in isolation.
type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) Read(addr uint16) uint8     { return b.mem[addr] }
func (b *testBus) Write(addr uint16, v uint8) { b.mem[addr] = v }

func newTestCPU() (*CPU, *testBus) {
	bus := &testBus{}
	return New(bus), bus
}

func runUntilIdle(c *CPU) {
	// Runs exactly one instruction to completion, assuming cycles==0 on entry.
	c.clock()
	for c.cycles > 0 {
		c.cycles--
	}
}

func TestResetVector(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xFFFC] = 0x34
	bus.mem[0xFFFD] = 0x12

	c.Reset()

	if c.PC != 0x1234 {
		t.Fatalf("PC = %#04x, want 0x1234", c.PC)
	}
	if c.P != 0x24 {
		t.Fatalf("P = %#02x, want 0x24", c.P)
	}
	if c.S != 0xFD {
		t.Fatalf("S = %#02x, want 0xFD", c.S)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xFFFC] = 0x00
	bus.mem[0xFFFD] = 0x80

	c.Reset()
	first := *c
	c.Reset()

	if c.PC != first.PC || c.P != first.P || c.S != first.S || c.A != first.A {
		t.Fatal("second Reset() did not reach the same state as the first")
	}
}

func TestIndirectJMPPageWrapBug(t *testing.T) {
	c, bus := newTestCPU()
	c.PC = 0x0000
	bus.mem[0x0000] = 0x6C // JMP (Indirect)
	bus.mem[0x0001] = 0xFF
	bus.mem[0x0002] = 0x30
	bus.mem[0x30FF] = 0x80
	bus.mem[0x3000] = 0x40 // NOT 0x3100 -- the page-wrap bug

	runUntilIdle(c)

	if c.PC != 0x4080 {
		t.Fatalf("PC = %#04x, want 0x4080", c.PC)
	}
}

func TestADCOverflow(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x7F
	c.P = 0 // C=0
	bus.mem[0x0000] = 0x69 // ADC #imm
	bus.mem[0x0001] = 0x01
	c.PC = 0x0000

	runUntilIdle(c)

	if c.A != 0x80 {
		t.Fatalf("A = %#02x, want 0x80", c.A)
	}
	if !c.getFlag(flagN) || !c.getFlag(flagV) || c.getFlag(flagC) || c.getFlag(flagZ) {
		t.Fatalf("flags = %#02x, want N=1 V=1 C=0 Z=0", c.P)
	}
}

func TestSBCBorrow(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x50
	c.P = flagC // C=1 (no borrow going in)
	bus.mem[0x0000] = 0xE9 // SBC #imm
	bus.mem[0x0001] = 0xF0
	c.PC = 0x0000

	runUntilIdle(c)

	if c.A != 0x60 {
		t.Fatalf("A = %#02x, want 0x60", c.A)
	}
	if c.getFlag(flagN) || c.getFlag(flagV) || c.getFlag(flagC) || c.getFlag(flagZ) {
		t.Fatalf("flags = %#02x, want N=0 V=0 C=0 Z=0", c.P)
	}
}

func TestZeroPageIndirectXWrap(t *testing.T) {
	c, bus := newTestCPU()
	c.X = 0
	c.PC = 0x0010 // keep the opcode clear of zero-page address $00
	bus.mem[0x0010] = 0xA1 // LDA (zp,X)
	bus.mem[0x0011] = 0xFF // zero-page pointer base

	// Pointer low comes from $FF, pointer high must wrap around to $00
	// rather than reading $100.
	bus.mem[0x00FF] = 0x00
	bus.mem[0x0000] = 0x10
	bus.mem[0x1000] = 0x42

	runUntilIdle(c)

	if c.A != 0x42 {
		t.Fatalf("A = %#02x, want 0x42 (pointer hi must wrap to zero page)", c.A)
	}
}

func TestStackWrapsModulo256(t *testing.T) {
	c, _ := newTestCPU()
	c.S = 0x00
	c.push(0xAB)
	if c.S != 0xFF {
		t.Fatalf("S = %#02x, want 0xFF after push from 0x00", c.S)
	}
}

func TestNMIPushesPCAndStatus(t *testing.T) {
	c, bus := newTestCPU()
	c.PC = 0x1234
	c.P = flagC | flagZ
	c.S = 0xFD
	bus.mem[0xFFFA] = 0x00
	bus.mem[0xFFFB] = 0x90

	c.NMI()

	if c.PC != 0x9000 {
		t.Fatalf("PC = %#04x, want 0x9000", c.PC)
	}
	if !c.getFlag(flagI) {
		t.Fatal("NMI must set the I flag")
	}
	pushedP := bus.mem[stackBase+uint16(c.S)+1]
	if pushedP&flagB != 0 {
		t.Fatal("pushed status must have B cleared")
	}
	if pushedP&flagU == 0 {
		t.Fatal("pushed status must have U set")
	}
}

func TestBranchPageCrossPenalty(t *testing.T) {
	c, bus := newTestCPU()
	c.PC = 0x00F0
	c.P = 0 // Z=0 so BNE taken
	bus.mem[0x00F0] = 0xD0 // BNE
	bus.mem[0x00F1] = 0x20 // +0x20 crosses to next page

	c.clock()

	if c.cycles != 4 { // 2 base + 1 taken + 1 page cross
		t.Fatalf("cycles = %d, want 4", c.cycles)
	}
}
