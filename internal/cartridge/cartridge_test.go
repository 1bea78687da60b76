package cartridge

import (
	"bytes"
	"errors"
	"testing"
)

func buildINES(prgBanks, chrBanks int, flags6 byte, trainer bool) []byte {
	var buf bytes.Buffer
	buf.WriteString(headerMagic)
	buf.WriteByte(byte(prgBanks))
	buf.WriteByte(byte(chrBanks))
	f6 := flags6
	if trainer {
		f6 |= 0x04
	}
	buf.WriteByte(f6)
	buf.WriteByte(0) // flags7 -> mapper 0
	buf.Write(make([]byte, 8))
	if trainer {
		buf.Write(make([]byte, trainerSize))
	}
	buf.Write(make([]byte, prgBanks*prgBankSize))
	buf.Write(make([]byte, chrBanks*chrBankSize))
	return buf.Bytes()
}

func TestLoadReaderValidRom(t *testing.T) {
	data := buildINES(1, 1, 0x01 /* vertical mirroring */, false)
	cart, err := LoadReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if !cart.VerticalMirroring() {
		t.Fatal("expected vertical mirroring")
	}
	if _, ok := cart.CPURead(0x8000); !ok {
		t.Fatal("expected CPURead(0x8000) to be served by cartridge")
	}
}

func TestLoadReaderBadMagic(t *testing.T) {
	data := buildINES(1, 1, 0, false)
	data[0] = 'X'
	_, err := LoadReader(bytes.NewReader(data))
	var le *LoadError
	if !errors.As(err, &le) || le.Kind != KindBadMagic {
		t.Fatalf("expected KindBadMagic, got %v", err)
	}
}

func TestLoadReaderTruncated(t *testing.T) {
	data := buildINES(2, 1, 0, false)
	truncated := data[:len(data)-100]
	_, err := LoadReader(bytes.NewReader(truncated))
	var le *LoadError
	if !errors.As(err, &le) || le.Kind != KindTruncated {
		t.Fatalf("expected KindTruncated, got %v", err)
	}
}

func TestLoadReaderUnsupportedMapper(t *testing.T) {
	data := buildINES(1, 1, 0, false)
	data[7] = 0x10 // flags7 high nibble 1 -> mapper number 16
	_, err := LoadReader(bytes.NewReader(data))
	var le *LoadError
	if !errors.As(err, &le) || le.Kind != KindUnsupportedMapper {
		t.Fatalf("expected KindUnsupportedMapper, got %v", err)
	}
}

func TestLoadReaderSkipsTrainer(t *testing.T) {
	data := buildINES(1, 1, 0, true)
	cart, err := LoadReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadReader with trainer: %v", err)
	}
	if len(cart.prgROM) != prgBankSize {
		t.Fatalf("prgROM size = %d, want %d", len(cart.prgROM), prgBankSize)
	}
}

func TestCPUWriteRejected(t *testing.T) {
	cart := NewRaw(make([]uint8, prgBankSize), nil, false)
	if cart.CPUWrite(0x8000, 0xFF) {
		t.Fatal("Mapper 0 must reject all CPU writes")
	}
}

func TestPPUReadIdentity(t *testing.T) {
	chr := make([]uint8, chrBankSize)
	chr[0x0042] = 0x7E
	cart := NewRaw(make([]uint8, prgBankSize), chr, false)
	v, ok := cart.PPURead(0x0042)
	if !ok || v != 0x7E {
		t.Fatalf("PPURead(0x0042) = %d, %v; want 0x7E, true", v, ok)
	}
}
