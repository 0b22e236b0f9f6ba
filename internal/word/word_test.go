package word

import "testing"

func TestZeroRepresentations(t *testing.T) {
	tests := []struct {
		name    string
		w       Word
		wantP   bool
		wantM   bool
		wantAny bool
	}{
		{"plus zero", 0x0000, true, false, true},
		{"minus zero", 0xffff, false, true, true},
		{"one", 0x0001, false, false, false},
		{"negative one", 0xfffe, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.IsPlusZero(); got != tt.wantP {
				t.Errorf("IsPlusZero() = %v, want %v", got, tt.wantP)
			}
			if got := tt.w.IsMinusZero(); got != tt.wantM {
				t.Errorf("IsMinusZero() = %v, want %v", got, tt.wantM)
			}
			if got := tt.w.IsZero(); got != tt.wantAny {
				t.Errorf("IsZero() = %v, want %v", got, tt.wantAny)
			}
		})
	}
}

func TestComplement(t *testing.T) {
	w := Word(0x0001)
	if got := w.Complement(); got != 0xfffe {
		t.Errorf("Complement() = %#04x, want %#04x", got, 0xfffe)
	}
	if got := w.Complement().Complement(); got != w {
		t.Errorf("double complement = %#04x, want %#04x", got, w)
	}
}

func TestBitGetSet(t *testing.T) {
	var w Word
	w = w.SetBit(1, 1)
	w = w.SetBit(16, 1)
	if w.Bit(1) != 1 {
		t.Errorf("Bit(1) = %d, want 1", w.Bit(1))
	}
	if w.Bit(16) != 1 {
		t.Errorf("Bit(16) = %d, want 1", w.Bit(16))
	}
	if w.Bit(2) != 0 {
		t.Errorf("Bit(2) = %d, want 0", w.Bit(2))
	}
	w = w.SetBit(1, 0)
	if w.Bit(1) != 0 {
		t.Errorf("Bit(1) after clear = %d, want 0", w.Bit(1))
	}
}

func TestOctal(t *testing.T) {
	tests := []struct {
		w    Word
		want string
	}{
		{0, "000000"},
		{0xffff, "177777"},
		{0o23456, "023456"},
	}
	for _, tt := range tests {
		if got := tt.w.Octal(); got != tt.want {
			t.Errorf("Word(%#o).Octal() = %q, want %q", uint16(tt.w), got, tt.want)
		}
	}
}

func TestAddEndAround(t *testing.T) {
	tests := []struct {
		name         string
		x, y         Word
		carryIn      bool
		wantSum      Word
		wantOverflow bool
	}{
		{"1 + 1", 1, 1, false, 2, false},
		{"carry wraps around", 0xffff, 1, false, 1, false},
		{"plus zero plus minus zero", 0x0000, 0xffff, false, 0xffff, false},
		{"overflow positive", 0x3fff, 0x3fff, false, 0x7ffe, true},
		{"overflow negative", 0xc000, 0xc000, false, 0x8001, true},
		{"carry in propagates", 0, 0, true, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, overflow := AddEndAround(tt.x, tt.y, tt.carryIn)
			if sum != tt.wantSum {
				t.Errorf("sum = %#06o, want %#06o", uint16(sum), uint16(tt.wantSum))
			}
			if overflow != tt.wantOverflow {
				t.Errorf("overflow = %v, want %v", overflow, tt.wantOverflow)
			}
		})
	}
}
