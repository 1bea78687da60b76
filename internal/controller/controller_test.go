package controller

import "testing"

func TestShiftOutMatchesSpecScenario(t *testing.T) {
	c := New()
	c.SetStatus(0b10110001)
	c.Write(0x01)
	c.Write(0x00)

	want := []uint8{1, 0, 0, 0, 1, 1, 0, 1}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Fatalf("read %d = %d, want %d", i, got, w)
		}
	}
}

func TestStrobeHighAlwaysReturnsA(t *testing.T) {
	c := New()
	c.SetStatus(uint8(A) | uint8(Start))
	c.Write(0x01)
	if got := c.Read(); got != 1 {
		t.Fatalf("Read() under strobe = %d, want 1", got)
	}
	if got := c.Read(); got != 1 {
		t.Fatalf("Read() under strobe (again) = %d, want 1", got)
	}
}

func TestNoButtonsPressedReadsZero(t *testing.T) {
	c := New()
	c.Write(0x01)
	c.Write(0x00)
	for i := 0; i < 8; i++ {
		if got := c.Read(); got != 0 {
			t.Fatalf("read %d = %d, want 0", i, got)
		}
	}
}
