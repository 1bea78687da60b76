package cpu

// Op identifies one of the 56 legal 6502 instructions; combined with an
// addressing mode they make up the table's 151 legal opcodes.
type Op uint8

const (
	opXXX Op = iota // illegal opcode fallthrough: 2-cycle NOP, diagnostic only
	opADC
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opJMP
	opJSR
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opROL
	opROR
	opRTI
	opRTS
	opSBC
	opSEC
	opSED
	opSEI
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA
)

type opcodeEntry struct {
	op          Op
	mode        AddrMode
	cycles      uint8
	pagePenalty bool
}

var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]opcodeEntry {
	var t [256]opcodeEntry
	for i := range t {
		t[i] = opcodeEntry{op: opXXX, mode: Implied, cycles: 2}
	}

	set := func(b byte, op Op, mode AddrMode, cycles uint8, pagePenalty bool) {
		t[b] = opcodeEntry{op: op, mode: mode, cycles: cycles, pagePenalty: pagePenalty}
	}

	set(0x69, opADC, Immediate, 2, false)
	set(0x65, opADC, ZeroPage, 3, false)
	set(0x75, opADC, ZeroPageX, 4, false)
	set(0x6D, opADC, Absolute, 4, false)
	set(0x7D, opADC, AbsoluteX, 4, true)
	set(0x79, opADC, AbsoluteY, 4, true)
	set(0x61, opADC, IndirectX, 6, false)
	set(0x71, opADC, IndirectY, 5, true)

	set(0x29, opAND, Immediate, 2, false)
	set(0x25, opAND, ZeroPage, 3, false)
	set(0x35, opAND, ZeroPageX, 4, false)
	set(0x2D, opAND, Absolute, 4, false)
	set(0x3D, opAND, AbsoluteX, 4, true)
	set(0x39, opAND, AbsoluteY, 4, true)
	set(0x21, opAND, IndirectX, 6, false)
	set(0x31, opAND, IndirectY, 5, true)

	set(0x0A, opASL, Accumulator, 2, false)
	set(0x06, opASL, ZeroPage, 5, false)
	set(0x16, opASL, ZeroPageX, 6, false)
	set(0x0E, opASL, Absolute, 6, false)
	set(0x1E, opASL, AbsoluteX, 7, false)

	set(0x90, opBCC, Relative, 2, false)
	set(0xB0, opBCS, Relative, 2, false)
	set(0xF0, opBEQ, Relative, 2, false)
	set(0x30, opBMI, Relative, 2, false)
	set(0xD0, opBNE, Relative, 2, false)
	set(0x10, opBPL, Relative, 2, false)
	set(0x50, opBVC, Relative, 2, false)
	set(0x70, opBVS, Relative, 2, false)

	set(0x24, opBIT, ZeroPage, 3, false)
	set(0x2C, opBIT, Absolute, 4, false)

	set(0x00, opBRK, Implied, 7, false)

	set(0x18, opCLC, Implied, 2, false)
	set(0xD8, opCLD, Implied, 2, false)
	set(0x58, opCLI, Implied, 2, false)
	set(0xB8, opCLV, Implied, 2, false)

	set(0xC9, opCMP, Immediate, 2, false)
	set(0xC5, opCMP, ZeroPage, 3, false)
	set(0xD5, opCMP, ZeroPageX, 4, false)
	set(0xCD, opCMP, Absolute, 4, false)
	set(0xDD, opCMP, AbsoluteX, 4, true)
	set(0xD9, opCMP, AbsoluteY, 4, true)
	set(0xC1, opCMP, IndirectX, 6, false)
	set(0xD1, opCMP, IndirectY, 5, true)

	set(0xE0, opCPX, Immediate, 2, false)
	set(0xE4, opCPX, ZeroPage, 3, false)
	set(0xEC, opCPX, Absolute, 4, false)

	set(0xC0, opCPY, Immediate, 2, false)
	set(0xC4, opCPY, ZeroPage, 3, false)
	set(0xCC, opCPY, Absolute, 4, false)

	set(0xC6, opDEC, ZeroPage, 5, false)
	set(0xD6, opDEC, ZeroPageX, 6, false)
	set(0xCE, opDEC, Absolute, 6, false)
	set(0xDE, opDEC, AbsoluteX, 7, false)

	set(0xCA, opDEX, Implied, 2, false)
	set(0x88, opDEY, Implied, 2, false)

	set(0x49, opEOR, Immediate, 2, false)
	set(0x45, opEOR, ZeroPage, 3, false)
	set(0x55, opEOR, ZeroPageX, 4, false)
	set(0x4D, opEOR, Absolute, 4, false)
	set(0x5D, opEOR, AbsoluteX, 4, true)
	set(0x59, opEOR, AbsoluteY, 4, true)
	set(0x41, opEOR, IndirectX, 6, false)
	set(0x51, opEOR, IndirectY, 5, true)

	set(0xE6, opINC, ZeroPage, 5, false)
	set(0xF6, opINC, ZeroPageX, 6, false)
	set(0xEE, opINC, Absolute, 6, false)
	set(0xFE, opINC, AbsoluteX, 7, false)

	set(0xE8, opINX, Implied, 2, false)
	set(0xC8, opINY, Implied, 2, false)

	set(0x4C, opJMP, Absolute, 3, false)
	set(0x6C, opJMP, Indirect, 5, false)
	set(0x20, opJSR, Absolute, 6, false)

	set(0xA9, opLDA, Immediate, 2, false)
	set(0xA5, opLDA, ZeroPage, 3, false)
	set(0xB5, opLDA, ZeroPageX, 4, false)
	set(0xAD, opLDA, Absolute, 4, false)
	set(0xBD, opLDA, AbsoluteX, 4, true)
	set(0xB9, opLDA, AbsoluteY, 4, true)
	set(0xA1, opLDA, IndirectX, 6, false)
	set(0xB1, opLDA, IndirectY, 5, true)

	set(0xA2, opLDX, Immediate, 2, false)
	set(0xA6, opLDX, ZeroPage, 3, false)
	set(0xB6, opLDX, ZeroPageY, 4, false)
	set(0xAE, opLDX, Absolute, 4, false)
	set(0xBE, opLDX, AbsoluteY, 4, true)

	set(0xA0, opLDY, Immediate, 2, false)
	set(0xA4, opLDY, ZeroPage, 3, false)
	set(0xB4, opLDY, ZeroPageX, 4, false)
	set(0xAC, opLDY, Absolute, 4, false)
	set(0xBC, opLDY, AbsoluteX, 4, true)

	set(0x4A, opLSR, Accumulator, 2, false)
	set(0x46, opLSR, ZeroPage, 5, false)
	set(0x56, opLSR, ZeroPageX, 6, false)
	set(0x4E, opLSR, Absolute, 6, false)
	set(0x5E, opLSR, AbsoluteX, 7, false)

	set(0xEA, opNOP, Implied, 2, false)

	set(0x09, opORA, Immediate, 2, false)
	set(0x05, opORA, ZeroPage, 3, false)
	set(0x15, opORA, ZeroPageX, 4, false)
	set(0x0D, opORA, Absolute, 4, false)
	set(0x1D, opORA, AbsoluteX, 4, true)
	set(0x19, opORA, AbsoluteY, 4, true)
	set(0x01, opORA, IndirectX, 6, false)
	set(0x11, opORA, IndirectY, 5, true)

	set(0x48, opPHA, Implied, 3, false)
	set(0x08, opPHP, Implied, 3, false)
	set(0x68, opPLA, Implied, 4, false)
	set(0x28, opPLP, Implied, 4, false)

	set(0x2A, opROL, Accumulator, 2, false)
	set(0x26, opROL, ZeroPage, 5, false)
	set(0x36, opROL, ZeroPageX, 6, false)
	set(0x2E, opROL, Absolute, 6, false)
	set(0x3E, opROL, AbsoluteX, 7, false)

	set(0x6A, opROR, Accumulator, 2, false)
	set(0x66, opROR, ZeroPage, 5, false)
	set(0x76, opROR, ZeroPageX, 6, false)
	set(0x6E, opROR, Absolute, 6, false)
	set(0x7E, opROR, AbsoluteX, 7, false)

	set(0x40, opRTI, Implied, 6, false)
	set(0x60, opRTS, Implied, 6, false)

	set(0xE9, opSBC, Immediate, 2, false)
	set(0xE5, opSBC, ZeroPage, 3, false)
	set(0xF5, opSBC, ZeroPageX, 4, false)
	set(0xED, opSBC, Absolute, 4, false)
	set(0xFD, opSBC, AbsoluteX, 4, true)
	set(0xF9, opSBC, AbsoluteY, 4, true)
	set(0xE1, opSBC, IndirectX, 6, false)
	set(0xF1, opSBC, IndirectY, 5, true)

	set(0x38, opSEC, Implied, 2, false)
	set(0xF8, opSED, Implied, 2, false)
	set(0x78, opSEI, Implied, 2, false)

	set(0x85, opSTA, ZeroPage, 3, false)
	set(0x95, opSTA, ZeroPageX, 4, false)
	set(0x8D, opSTA, Absolute, 4, false)
	set(0x9D, opSTA, AbsoluteX, 5, false)
	set(0x99, opSTA, AbsoluteY, 5, false)
	set(0x81, opSTA, IndirectX, 6, false)
	set(0x91, opSTA, IndirectY, 6, false)

	set(0x86, opSTX, ZeroPage, 3, false)
	set(0x96, opSTX, ZeroPageY, 4, false)
	set(0x8E, opSTX, Absolute, 4, false)

	set(0x84, opSTY, ZeroPage, 3, false)
	set(0x94, opSTY, ZeroPageX, 4, false)
	set(0x8C, opSTY, Absolute, 4, false)

	set(0xAA, opTAX, Implied, 2, false)
	set(0xA8, opTAY, Implied, 2, false)
	set(0xBA, opTSX, Implied, 2, false)
	set(0x8A, opTXA, Implied, 2, false)
	set(0x9A, opTXS, Implied, 2, false)
	set(0x98, opTYA, Implied, 2, false)

	return t
}
