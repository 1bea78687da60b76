// Package cpu implements a cycle-stepped interpreter for the NES's 6502-family
// CPU: 151 legal opcode/addressing-mode combinations, exact cycle counts, and
// the reset/NMI/IRQ interrupt vectors.
package cpu

// Bus is the CPU-visible memory interface. The bus glue package implements
// this to decode $0000-$FFFF into RAM, PPU registers, cartridge space, and
// the controller ports (spec §4.3).
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// Status register bit masks, LSB first: C Z I D B U V N.
const (
	flagC uint8 = 1 << 0
	flagZ uint8 = 1 << 1
	flagI uint8 = 1 << 2
	flagD uint8 = 1 << 3
	flagB uint8 = 1 << 4
	flagU uint8 = 1 << 5
	flagV uint8 = 1 << 6
	flagN uint8 = 1 << 7
)

const stackBase uint16 = 0x0100

const (
	resetVector uint16 = 0xFFFC
	nmiVector   uint16 = 0xFFFA
	irqVector   uint16 = 0xFFFE
)

// CPU holds all 6502 register and scratch state. Step() advances exactly one
// tick of global time; the bulk of an instruction's bus activity happens the
// moment its cycle budget is exhausted and the next opcode is fetched, with
// the remaining-cycle counter simply ticking down in between (spec §4.3).
type CPU struct {
	A, X, Y uint8
	PC      uint16
	S       uint8
	P       uint8

	bus Bus

	fetched     uint8
	absAddr     uint16
	relAddr     uint16
	opcode      uint8
	pageCrossed bool
	cycles      uint8 // remaining cycles for the in-flight instruction

	totalCycles uint64
}

// New creates a CPU wired to bus. Call Reset before first use.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// TotalCycles reports the number of ticks this CPU has advanced; used by the
// bus glue to decide OAM-DMA's align-cycle parity.
func (c *CPU) TotalCycles() uint64 { return c.totalCycles }

func (c *CPU) getFlag(mask uint8) bool { return c.P&mask != 0 }

func (c *CPU) setFlag(mask uint8, set bool) {
	if set {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}

func (c *CPU) read(addr uint16) uint8       { return c.bus.Read(addr) }
func (c *CPU) write(addr uint16, v uint8)   { c.bus.Write(addr, v) }

func (c *CPU) push(v uint8) {
	c.write(stackBase+uint16(c.S), v)
	c.S--
}

func (c *CPU) pull() uint8 {
	c.S++
	return c.read(stackBase + uint16(c.S))
}

func (c *CPU) push16(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) pull16() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return hi<<8 | lo
}

// Reset reads the 16-bit reset vector into PC and charges the fixed 8-cycle
// reset cost. Idempotent: calling it twice in a row reaches the same state.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0xFD
	c.P = flagU | flagI

	lo := uint16(c.read(resetVector))
	hi := uint16(c.read(resetVector + 1))
	c.PC = hi<<8 | lo

	c.absAddr, c.relAddr, c.fetched, c.opcode, c.pageCrossed = 0, 0, 0, 0, false
	c.cycles = 8
}

// NMI pushes PC and P (B=0, U=1), sets I, and loads PC from the NMI vector.
func (c *CPU) NMI() {
	c.push16(c.PC)
	c.push((c.P | flagU) &^ flagB)
	c.setFlag(flagI, true)

	lo := uint16(c.read(nmiVector))
	hi := uint16(c.read(nmiVector + 1))
	c.PC = hi<<8 | lo
	c.cycles = 7
}

// IRQ behaves like NMI but uses the IRQ/BRK vector and is suppressed while
// the I flag is set.
func (c *CPU) IRQ() {
	if c.getFlag(flagI) {
		return
	}
	c.push16(c.PC)
	c.push((c.P | flagU) &^ flagB)
	c.setFlag(flagI, true)

	lo := uint16(c.read(irqVector))
	hi := uint16(c.read(irqVector + 1))
	c.PC = hi<<8 | lo
	c.cycles = 7
}

// Step advances exactly one CPU tick of global time. When the previous
// instruction's cycle budget is exhausted, it fetches and fully dispatches
// the next one before charging its cost.
func (c *CPU) Step() {
	if c.cycles == 0 {
		c.clock()
	}
	c.cycles--
	c.totalCycles++
}

// Stall burns n ticks without fetching — used while OAM-DMA owns the bus.
func (c *CPU) Stall(n int) {
	for i := 0; i < n; i++ {
		c.totalCycles++
	}
}

func (c *CPU) clock() {
	c.opcode = c.read(c.PC)
	c.PC++

	entry := opcodeTable[c.opcode]
	c.pageCrossed = false
	c.resolveAddr(entry.mode)

	extra := c.execute(entry.op, entry.mode)

	cycles := entry.cycles
	if entry.pagePenalty && c.pageCrossed {
		cycles++
	}
	cycles += extra
	c.cycles = cycles
}
