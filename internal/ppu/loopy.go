package ppu

// loopy is the PPU's 15-bit scroll/address register layout, shared by v and
// t (spec's "loopy" model):
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll
//	||| || +++++-------- coarse Y scroll
//	||| ++-------------- nametable select (X, Y)
//	+++----------------- fine Y scroll
type loopy struct {
	data uint16 // only the low 15 bits are meaningful
}

func (l *loopy) coarseX() uint16      { return l.data & 0x001F }
func (l *loopy) setCoarseX(n uint16)  { l.data = (l.data &^ 0x001F) | (n & 0x001F) }
func (l *loopy) coarseY() uint16      { return (l.data & 0x03E0) >> 5 }
func (l *loopy) setCoarseY(n uint16)  { l.data = (l.data &^ 0x03E0) | ((n & 0x001F) << 5) }
func (l *loopy) nametableX() uint16   { return (l.data & 0x0400) >> 10 }
func (l *loopy) setNametableX(n uint16) {
	l.data = (l.data &^ 0x0400) | ((n & 1) << 10)
}
func (l *loopy) nametableY() uint16 { return (l.data & 0x0800) >> 11 }
func (l *loopy) setNametableY(n uint16) {
	l.data = (l.data &^ 0x0800) | ((n & 1) << 11)
}
func (l *loopy) toggleNametableX() { l.data ^= 0x0400 }
func (l *loopy) toggleNametableY() { l.data ^= 0x0800 }
func (l *loopy) fineY() uint16     { return (l.data & 0x7000) >> 12 }
func (l *loopy) setFineY(n uint16) { l.data = (l.data &^ 0x7000) | ((n & 0x0007) << 12) }

// incrementCoarseX implements the tile-grid advance at the end of each
// 8-tick background fetch: wrapping past column 31 flips the horizontal
// nametable instead of carrying into coarse Y.
func (l *loopy) incrementCoarseX() {
	if l.coarseX() == 31 {
		l.setCoarseX(0)
		l.toggleNametableX()
	} else {
		l.setCoarseX(l.coarseX() + 1)
	}
}

// incrementFineY implements the once-per-scanline vertical advance at pixel
// 256: fine Y carries into coarse Y, with coarse Y 29 flipping the vertical
// nametable and coarse Y 31 wrapping silently (attribute data past the
// visible 30 rows, left alone by real hardware).
func (l *loopy) incrementFineY() {
	if l.fineY() != 7 {
		l.setFineY(l.fineY() + 1)
		return
	}
	l.setFineY(0)
	switch l.coarseY() {
	case 29:
		l.setCoarseY(0)
		l.toggleNametableY()
	case 31:
		l.setCoarseY(0)
	default:
		l.setCoarseY(l.coarseY() + 1)
	}
}

const (
	loopyHorizontalBits uint16 = 0x041F // nametable X + coarse X
	loopyVerticalBits   uint16 = 0x7BE0 // fine Y + nametable Y + coarse Y
)

func (v *loopy) copyHorizontalFrom(t loopy) {
	v.data = (v.data &^ loopyHorizontalBits) | (t.data & loopyHorizontalBits)
}

func (v *loopy) copyVerticalFrom(t loopy) {
	v.data = (v.data &^ loopyVerticalBits) | (t.data & loopyVerticalBits)
}
