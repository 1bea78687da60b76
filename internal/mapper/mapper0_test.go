package mapper

import "testing"

func TestMapper0CPUReadSingleBankMirrors(t *testing.T) {
	m := NewMapper0(1)

	idx1, ok := m.CPUMapRead(0x8000)
	if !ok || idx1 != 0x0000 {
		t.Fatalf("CPUMapRead(0x8000) = %d, %v; want 0, true", idx1, ok)
	}
	idx2, ok := m.CPUMapRead(0xC000)
	if !ok || idx2 != 0x0000 {
		t.Fatalf("CPUMapRead(0xC000) = %d, %v; want 0, true (mirrors 0x8000)", idx2, ok)
	}
	idx3, ok := m.CPUMapRead(0xFFFF)
	if !ok || idx3 != 0x3FFF {
		t.Fatalf("CPUMapRead(0xFFFF) = %d, %v; want 0x3FFF, true", idx3, ok)
	}
}

func TestMapper0CPUReadTwoBanksDirectMapped(t *testing.T) {
	m := NewMapper0(2)

	idx, ok := m.CPUMapRead(0xC000)
	if !ok || idx != 0x4000 {
		t.Fatalf("CPUMapRead(0xC000) = %d, %v; want 0x4000, true", idx, ok)
	}
}

func TestMapper0RejectsBelowCartridgeSpace(t *testing.T) {
	m := NewMapper0(1)
	if _, ok := m.CPUMapRead(0x4000); ok {
		t.Fatal("CPUMapRead(0x4000) should be rejected")
	}
}

func TestMapper0RejectsAllWrites(t *testing.T) {
	m := NewMapper0(2)
	if _, ok := m.CPUMapWrite(0x8000); ok {
		t.Fatal("CPUMapWrite should always be rejected for Mapper 0")
	}
	if _, ok := m.PPUMapWrite(0x0100); ok {
		t.Fatal("PPUMapWrite should always be rejected for Mapper 0")
	}
}

func TestMapper0PPUReadIdentity(t *testing.T) {
	m := NewMapper0(1)
	idx, ok := m.PPUMapRead(0x0ABC)
	if !ok || idx != 0x0ABC {
		t.Fatalf("PPUMapRead(0x0ABC) = %d, %v; want 0x0ABC, true", idx, ok)
	}
	if _, ok := m.PPUMapRead(0x2000); ok {
		t.Fatal("PPUMapRead(0x2000) should be rejected (outside pattern tables)")
	}
}
