package cpu

// AddrMode identifies one of the 6502's addressing modes (spec §4.3).
type AddrMode uint8

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX
	IndirectY
)

// resolveAddr consumes the operand bytes for mode, setting c.absAddr (or
// c.relAddr for Relative) and c.pageCrossed where the mode can cross a page.
func (c *CPU) resolveAddr(mode AddrMode) {
	switch mode {
	case Implied:
		// No operand.
	case Accumulator:
		c.fetched = c.A
	case Immediate:
		c.absAddr = c.PC
		c.PC++
	case ZeroPage:
		c.absAddr = uint16(c.read(c.PC))
		c.PC++
	case ZeroPageX:
		c.absAddr = uint16(c.read(c.PC)+c.X) & 0x00FF
		c.PC++
	case ZeroPageY:
		c.absAddr = uint16(c.read(c.PC)+c.Y) & 0x00FF
		c.PC++
	case Relative:
		offset := uint16(c.read(c.PC))
		c.PC++
		if offset&0x80 != 0 {
			offset |= 0xFF00
		}
		c.relAddr = offset
	case Absolute:
		lo := uint16(c.read(c.PC))
		c.PC++
		hi := uint16(c.read(c.PC))
		c.PC++
		c.absAddr = hi<<8 | lo
	case AbsoluteX:
		lo := uint16(c.read(c.PC))
		c.PC++
		hi := uint16(c.read(c.PC))
		c.PC++
		base := hi<<8 | lo
		c.absAddr = base + uint16(c.X)
		c.pageCrossed = (c.absAddr & 0xFF00) != (base & 0xFF00)
	case AbsoluteY:
		lo := uint16(c.read(c.PC))
		c.PC++
		hi := uint16(c.read(c.PC))
		c.PC++
		base := hi<<8 | lo
		c.absAddr = base + uint16(c.Y)
		c.pageCrossed = (c.absAddr & 0xFF00) != (base & 0xFF00)
	case Indirect:
		ptrLo := uint16(c.read(c.PC))
		c.PC++
		ptrHi := uint16(c.read(c.PC))
		c.PC++
		ptr := ptrHi<<8 | ptrLo

		var hiAddr uint16
		if ptrLo == 0x00FF {
			// 6502 page-wrap bug: the high byte comes from the same page.
			hiAddr = ptr & 0xFF00
		} else {
			hiAddr = ptr + 1
		}
		lo := uint16(c.read(ptr))
		hi := uint16(c.read(hiAddr))
		c.absAddr = hi<<8 | lo
	case IndirectX:
		zp := c.read(c.PC)
		c.PC++
		lo := uint16(c.read(uint16(zp+c.X) & 0x00FF))
		hi := uint16(c.read(uint16(zp+c.X+1) & 0x00FF))
		c.absAddr = hi<<8 | lo
	case IndirectY:
		zp := c.read(c.PC)
		c.PC++
		lo := uint16(c.read(uint16(zp)))
		hi := uint16(c.read(uint16(zp+1) & 0x00FF))
		base := hi<<8 | lo
		c.absAddr = base + uint16(c.Y)
		c.pageCrossed = (c.absAddr & 0xFF00) != (base & 0xFF00)
	}
}

// operand returns the byte an instruction operates on: A in Accumulator
// mode, otherwise the byte at absAddr (not meaningful for Implied).
func (c *CPU) operand() uint8 {
	if c.opcodeMode() == Accumulator {
		return c.A
	}
	return c.read(c.absAddr)
}

func (c *CPU) opcodeMode() AddrMode { return opcodeTable[c.opcode].mode }
