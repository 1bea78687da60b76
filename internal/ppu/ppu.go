// Package ppu implements the 2C02 Picture Processing Unit: the
// scanline/pixel timing state machine, the background fetch pipeline and
// its shift registers, the loopy v/t/x scroll address model, and the
// memory-mapped register file the CPU bus exposes at $2000-$2007.
package ppu

// CartridgeBus is the PPU's view of the cartridge: CHR reads/writes routed
// through the mapper, plus the nametable mirroring mode the board wires.
type CartridgeBus interface {
	PPURead(addr uint16) (uint8, bool)
	PPUWrite(addr uint16, value uint8) bool
	VerticalMirroring() bool
}

const (
	ctrlNametableMask uint8 = 0x03
	ctrlIncrement32   uint8 = 1 << 2
	ctrlSpriteTable   uint8 = 1 << 3
	ctrlBGTable       uint8 = 1 << 4
	ctrlSpriteSize    uint8 = 1 << 5
	ctrlMasterSlave   uint8 = 1 << 6
	ctrlNMIEnable     uint8 = 1 << 7

	maskShowBGLeft uint8 = 1 << 1
	maskShowSprLeft uint8 = 1 << 2
	maskShowBG     uint8 = 1 << 3
	maskShowSprites uint8 = 1 << 4

	statusOverflow uint8 = 1 << 5
	statusSprite0  uint8 = 1 << 6
	statusVBlank   uint8 = 1 << 7
)

// Framebuffer is the 256x240 ARGB image the PPU renders into.
type Framebuffer = [256 * 240]uint32

// PPU holds all 2C02 state: registers, OAM, nametable/palette RAM, the
// scanline/pixel counters, and the background shift-register pipeline.
type PPU struct {
	ctrl   uint8
	mask   uint8
	status uint8

	oamAddr uint8
	oam     [256]uint8

	v, t  loopy
	fineX uint8
	toggle bool

	vram       [2048]uint8
	paletteRAM [32]uint8
	readBuffer uint8

	scanline int
	pixel    int
	frame    uint64
	frameReady bool
	nmiPending bool

	ntByte   uint8
	atByte   uint8
	ptLo     uint8
	ptHi     uint8
	bgPatLo  uint16
	bgPatHi  uint16
	bgAttrLo uint16
	bgAttrHi uint16

	fb Framebuffer

	cart CartridgeBus
}

// New creates a PPU wired to the cartridge's CHR/mirroring. Call Reset
// before first use.
func New(cart CartridgeBus) *PPU {
	return &PPU{cart: cart}
}

// Reset returns the PPU to its post-power state. Idempotent.
func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status = 0, 0, 0
	p.oamAddr = 0
	p.v, p.t = loopy{}, loopy{}
	p.fineX = 0
	p.toggle = false
	p.readBuffer = 0
	p.scanline, p.pixel = 0, 0
	p.frameReady = false
	p.nmiPending = false
	p.ntByte, p.atByte, p.ptLo, p.ptHi = 0, 0, 0, 0
	p.bgPatLo, p.bgPatHi, p.bgAttrLo, p.bgAttrHi = 0, 0, 0, 0
}

// TakeNMI reports and clears a pending NMI edge.
func (p *PPU) TakeNMI() bool {
	pending := p.nmiPending
	p.nmiPending = false
	return pending
}

// FrameReady reports and clears the "new framebuffer available" edge. The
// returned pointer is valid only for the caller's immediate use; the PPU
// keeps writing to the same backing array on subsequent frames.
func (p *PPU) FrameReady() (*Framebuffer, bool) {
	if !p.frameReady {
		return nil, false
	}
	p.frameReady = false
	return &p.fb, true
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskShowBG|maskShowSprites) != 0
}

// Scanline reports the current scanline (0-261).
func (p *PPU) Scanline() int { return p.scanline }

// Pixel reports the current pixel within the scanline (0-340).
func (p *PPU) Pixel() int { return p.pixel }

// Step advances the PPU by exactly one tick.
func (p *PPU) Step() {
	switch {
	case p.scanline == 241 && p.pixel == 1:
		p.status |= statusVBlank
		if p.ctrl&ctrlNMIEnable != 0 {
			p.nmiPending = true
		}
	case p.scanline == 261 && p.pixel == 1:
		p.status &^= statusVBlank | statusSprite0 | statusOverflow
	}

	if p.scanline <= 239 || p.scanline == 261 {
		p.renderTick()
	}

	p.pixel++
	if p.pixel > 340 {
		p.pixel = 0
		p.scanline++
		if p.scanline > 261 {
			p.scanline = 0
			p.frame++
			p.frameReady = true
		}
	}
}

func (p *PPU) renderTick() {
	pixel := p.pixel

	inFetchWindow := (pixel >= 2 && pixel <= 257) || (pixel >= 321 && pixel <= 337)
	if inFetchWindow {
		p.shiftBackgroundRegisters()
		switch (pixel - 1) % 8 {
		case 0:
			p.reloadShiftRegisters()
			addr := 0x2000 | (p.v.data & 0x0FFF)
			p.ntByte = p.busRead(addr)
		case 2:
			addr := 0x23C0 | (p.v.data & 0x0C00) | ((p.v.data >> 4) & 0x38) | ((p.v.data >> 2) & 0x07)
			at := p.busRead(addr)
			if p.v.coarseY()&2 != 0 {
				at >>= 4
			}
			if p.v.coarseX()&2 != 0 {
				at >>= 2
			}
			p.atByte = at & 0x03
		case 4:
			p.ptLo = p.busRead(p.bgPatternAddr(p.v.fineY()))
		case 6:
			p.ptHi = p.busRead(p.bgPatternAddr(p.v.fineY()) + 8)
		case 7:
			if p.renderingEnabled() {
				p.v.incrementCoarseX()
			}
		}
	}

	if pixel == 256 && p.renderingEnabled() {
		p.v.incrementFineY()
	}
	if pixel == 257 && p.renderingEnabled() {
		p.v.copyHorizontalFrom(p.t)
	}
	if p.scanline == 261 && pixel >= 280 && pixel <= 304 && p.renderingEnabled() {
		p.v.copyVerticalFrom(p.t)
	}

	if p.scanline < 240 && pixel >= 0 && pixel <= 255 {
		p.emitPixel(pixel)
	}
}

func (p *PPU) bgPatternAddr(fineY uint16) uint16 {
	table := uint16(0)
	if p.ctrl&ctrlBGTable != 0 {
		table = 1
	}
	return (table << 12) + uint16(p.ntByte)<<4 + fineY
}

func (p *PPU) shiftBackgroundRegisters() {
	p.bgPatLo <<= 1
	p.bgPatHi <<= 1
	p.bgAttrLo <<= 1
	p.bgAttrHi <<= 1
}

func (p *PPU) reloadShiftRegisters() {
	p.bgPatLo = (p.bgPatLo & 0xFF00) | uint16(p.ptLo)
	p.bgPatHi = (p.bgPatHi & 0xFF00) | uint16(p.ptHi)
	if p.atByte&0x01 != 0 {
		p.bgAttrLo |= 0x00FF
	} else {
		p.bgAttrLo &= 0xFF00
	}
	if p.atByte&0x02 != 0 {
		p.bgAttrHi |= 0x00FF
	} else {
		p.bgAttrHi &= 0xFF00
	}
}

func (p *PPU) emitPixel(pixel int) {
	sel := uint(15 - p.fineX)
	bit0 := (p.bgPatLo >> sel) & 1
	bit1 := (p.bgPatHi >> sel) & 1
	pix := uint8(bit1<<1 | bit0)

	var colorIdx uint8
	if p.mask&maskShowBG == 0 {
		colorIdx = p.paletteRAM[0] & 0x3F
	} else {
		palBit0 := (p.bgAttrLo >> sel) & 1
		palBit1 := (p.bgAttrHi >> sel) & 1
		pal := uint8(palBit1<<1 | palBit0)
		colorIdx = p.readPalette(uint16(pal)<<2|uint16(pix)) & 0x3F
	}
	p.fb[p.scanline*256+pixel] = rgbPalette[colorIdx]
}

// RegRead implements reads of CPU-visible $2000-$2007 (reg is addr&7).
func (p *PPU) RegRead(reg int) uint8 {
	switch reg {
	case 2:
		status := p.status
		p.status &^= statusVBlank
		p.toggle = false
		return status
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readData()
	default:
		return 0
	}
}

// RegWrite implements writes of CPU-visible $2000-$2007 (reg is addr&7).
func (p *PPU) RegWrite(reg int, value uint8) {
	switch reg {
	case 0:
		prevEnable := p.ctrl & ctrlNMIEnable
		p.ctrl = value
		p.t.setNametableX(uint16(value) & 1)
		p.t.setNametableY(uint16(value>>1) & 1)
		if p.status&statusVBlank != 0 && prevEnable == 0 && p.ctrl&ctrlNMIEnable != 0 {
			p.nmiPending = true
		}
	case 1:
		p.mask = value
	case 3:
		p.oamAddr = value
	case 4:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5:
		if !p.toggle {
			p.fineX = value & 0x07
			p.t.setCoarseX(uint16(value) >> 3)
		} else {
			p.t.setFineY(uint16(value) & 0x07)
			p.t.setCoarseY(uint16(value) >> 3)
		}
		p.toggle = !p.toggle
	case 6:
		if !p.toggle {
			p.t.data = (p.t.data & 0x00FF) | (uint16(value&0x3F) << 8)
		} else {
			p.t.data = (p.t.data & 0xFF00) | uint16(value)
			p.v = p.t
		}
		p.toggle = !p.toggle
	case 7:
		p.writeData(value)
	}
}

// OAMAddr reports the current OAMADDR value, the byte offset OAM-DMA
// transfers begin writing at (spec §4.5).
func (p *PPU) OAMAddr() uint8 { return p.oamAddr }

// OAMWrite writes a byte at an explicit OAM index, wrapping modulo 256;
// used by the bus's OAM-DMA transfer, which writes starting at OAMADDR
// rather than index 0.
func (p *PPU) OAMWrite(index uint8, value uint8) {
	p.oam[index] = value
}

func (p *PPU) vramIncrement() uint16 {
	if p.ctrl&ctrlIncrement32 != 0 {
		return 32
	}
	return 1
}

func (p *PPU) readData() uint8 {
	var data uint8
	if p.v.data >= 0x3F00 {
		data = p.readPalette(p.v.data)
		p.readBuffer = p.busRead(p.v.data & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.busRead(p.v.data)
	}
	p.v.data = (p.v.data + p.vramIncrement()) & 0x7FFF
	return data
}

func (p *PPU) writeData(value uint8) {
	p.busWrite(p.v.data, value)
	p.v.data = (p.v.data + p.vramIncrement()) & 0x7FFF
}

// busRead decodes a PPU-visible address into cartridge CHR, nametable VRAM,
// or palette RAM.
func (p *PPU) busRead(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if v, ok := p.cart.PPURead(addr); ok {
			return v
		}
		return 0
	case addr < 0x3F00:
		return p.vram[p.mirrorNametable(addr)]
	default:
		return p.readPalette(addr)
	}
}

func (p *PPU) busWrite(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.cart.PPUWrite(addr, value)
	case addr < 0x3F00:
		p.vram[p.mirrorNametable(addr)] = value
	default:
		p.paletteRAM[p.mirrorPalette(addr)] = value
	}
}

func (p *PPU) readPalette(addr uint16) uint8 {
	return p.paletteRAM[p.mirrorPalette(addr)]
}

func (p *PPU) mirrorNametable(addr uint16) uint16 {
	addr &= 0x0FFF
	if p.cart.VerticalMirroring() {
		return addr & 0x07FF
	}
	return (addr & 0x03FF) | ((addr & 0x0800) >> 1)
}

func (p *PPU) mirrorPalette(addr uint16) uint16 {
	a := addr & 0x1F
	switch a {
	case 0x10, 0x14, 0x18, 0x1C:
		a &^= 0x10
	}
	return a
}
