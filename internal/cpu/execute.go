package cpu

import "log"

func (c *CPU) setZN(v uint8) {
	c.setFlag(flagZ, v == 0)
	c.setFlag(flagN, v&0x80 != 0)
}

func (c *CPU) writeResult(mode AddrMode, v uint8) {
	if mode == Accumulator {
		c.A = v
		return
	}
	c.write(c.absAddr, v)
}

// execute performs op against the address/operand resolveAddr prepared, and
// returns any cycles the operation itself adds (branch taken / page-cross,
// since those can't be known from the static opcode table alone).
func (c *CPU) execute(op Op, mode AddrMode) uint8 {
	switch op {
	case opADC:
		m := c.operand()
		sum := uint16(c.A) + uint16(m) + uint16(b2u8(c.getFlag(flagC)))
		result := uint8(sum)
		c.setFlag(flagC, sum > 0xFF)
		c.setFlag(flagV, (c.A^m)&0x80 == 0 && (c.A^result)&0x80 != 0)
		c.A = result
		c.setZN(c.A)

	case opSBC:
		m := c.operand() ^ 0xFF
		sum := uint16(c.A) + uint16(m) + uint16(b2u8(c.getFlag(flagC)))
		result := uint8(sum)
		c.setFlag(flagC, sum > 0xFF)
		c.setFlag(flagV, (c.A^m)&0x80 == 0 && (c.A^result)&0x80 != 0)
		c.A = result
		c.setZN(c.A)

	case opAND:
		c.A &= c.operand()
		c.setZN(c.A)
	case opORA:
		c.A |= c.operand()
		c.setZN(c.A)
	case opEOR:
		c.A ^= c.operand()
		c.setZN(c.A)

	case opASL:
		m := c.operand()
		c.setFlag(flagC, m&0x80 != 0)
		m <<= 1
		c.setZN(m)
		c.writeResult(mode, m)
	case opLSR:
		m := c.operand()
		c.setFlag(flagC, m&0x01 != 0)
		m >>= 1
		c.setZN(m)
		c.writeResult(mode, m)
	case opROL:
		m := c.operand()
		carryIn := b2u8(c.getFlag(flagC))
		c.setFlag(flagC, m&0x80 != 0)
		m = (m << 1) | carryIn
		c.setZN(m)
		c.writeResult(mode, m)
	case opROR:
		m := c.operand()
		carryIn := b2u8(c.getFlag(flagC))
		c.setFlag(flagC, m&0x01 != 0)
		m = (m >> 1) | (carryIn << 7)
		c.setZN(m)
		c.writeResult(mode, m)

	case opBIT:
		m := c.operand()
		c.setFlag(flagN, m&0x80 != 0)
		c.setFlag(flagV, m&0x40 != 0)
		c.setFlag(flagZ, c.A&m == 0)

	case opCMP:
		return c.compare(c.A, c.operand())
	case opCPX:
		return c.compare(c.X, c.operand())
	case opCPY:
		return c.compare(c.Y, c.operand())

	case opDEC:
		m := c.operand() - 1
		c.setZN(m)
		c.write(c.absAddr, m)
	case opINC:
		m := c.operand() + 1
		c.setZN(m)
		c.write(c.absAddr, m)
	case opDEX:
		c.X--
		c.setZN(c.X)
	case opDEY:
		c.Y--
		c.setZN(c.Y)
	case opINX:
		c.X++
		c.setZN(c.X)
	case opINY:
		c.Y++
		c.setZN(c.Y)

	case opJMP:
		c.PC = c.absAddr
	case opJSR:
		c.push16(c.PC - 1)
		c.PC = c.absAddr
	case opRTS:
		c.PC = c.pull16() + 1
	case opRTI:
		c.P = (c.pull() | flagU) &^ flagB
		c.PC = c.pull16()

	case opLDA:
		c.A = c.operand()
		c.setZN(c.A)
	case opLDX:
		c.X = c.operand()
		c.setZN(c.X)
	case opLDY:
		c.Y = c.operand()
		c.setZN(c.Y)
	case opSTA:
		c.write(c.absAddr, c.A)
	case opSTX:
		c.write(c.absAddr, c.X)
	case opSTY:
		c.write(c.absAddr, c.Y)

	case opTAX:
		c.X = c.A
		c.setZN(c.X)
	case opTAY:
		c.Y = c.A
		c.setZN(c.Y)
	case opTXA:
		c.A = c.X
		c.setZN(c.A)
	case opTYA:
		c.A = c.Y
		c.setZN(c.A)
	case opTSX:
		c.X = c.S
		c.setZN(c.X)
	case opTXS:
		c.S = c.X

	case opPHA:
		c.push(c.A)
	case opPHP:
		c.push(c.P | flagB | flagU)
	case opPLA:
		c.A = c.pull()
		c.setZN(c.A)
	case opPLP:
		c.P = (c.pull() &^ flagB) | flagU

	case opCLC:
		c.setFlag(flagC, false)
	case opSEC:
		c.setFlag(flagC, true)
	case opCLD:
		c.setFlag(flagD, false)
	case opSED:
		c.setFlag(flagD, true)
	case opCLI:
		c.setFlag(flagI, false)
	case opSEI:
		c.setFlag(flagI, true)
	case opCLV:
		c.setFlag(flagV, false)

	case opBRK:
		c.PC++
		c.setFlag(flagI, true)
		c.push16(c.PC)
		c.push(c.P | flagB | flagU)
		lo := uint16(c.read(irqVector))
		hi := uint16(c.read(irqVector + 1))
		c.PC = hi<<8 | lo

	case opBCC:
		return c.branch(!c.getFlag(flagC))
	case opBCS:
		return c.branch(c.getFlag(flagC))
	case opBEQ:
		return c.branch(c.getFlag(flagZ))
	case opBNE:
		return c.branch(!c.getFlag(flagZ))
	case opBMI:
		return c.branch(c.getFlag(flagN))
	case opBPL:
		return c.branch(!c.getFlag(flagN))
	case opBVC:
		return c.branch(!c.getFlag(flagV))
	case opBVS:
		return c.branch(c.getFlag(flagV))

	case opNOP, opXXX:
		// No-op; illegal opcodes fall through here (out of scope, §1).
		if op == opXXX {
			log.Printf("illegal opcode $%02X at $%04X treated as NOP", c.opcode, c.PC-1)
		}
	}
	return 0
}

func (c *CPU) compare(reg, m uint8) uint8 {
	c.setFlag(flagC, reg >= m)
	c.setZN(reg - m)
	return 0
}

// branch computes the relative target, charging +1 cycle when taken and a
// further +1 when the target crosses a page boundary (spec §4.3).
func (c *CPU) branch(taken bool) uint8 {
	if !taken {
		return 0
	}
	target := c.PC + c.relAddr
	extra := uint8(1)
	if target&0xFF00 != c.PC&0xFF00 {
		extra++
	}
	c.PC = target
	return extra
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
