package charset

import "testing"

func TestIsPrimitiveGlyph(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plus", Plus, true},
		{"index", Index, true},
		{"rotate", Rotate, true},
		{"each modifier is not a primitive", Each, false},
		{"named num is not a glyph", NamedNum, false},
		{"unknown", "@@", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPrimitiveGlyph(tt.in); got != tt.want {
				t.Errorf("IsPrimitiveGlyph(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsModifierGlyph(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"each", Each, true},
		{"reduce", Reduce, true},
		{"selfie", Selfie, true},
		{"plus is not a modifier", Plus, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsModifierGlyph(tt.in); got != tt.want {
				t.Errorf("IsModifierGlyph(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsNamedPrimitive(t *testing.T) {
	for _, name := range NamedPrimitives {
		name := name
		t.Run(name, func(t *testing.T) {
			if !IsNamedPrimitive(name) {
				t.Errorf("IsNamedPrimitive(%q) = false, want true", name)
			}
		})
	}
	if IsNamedPrimitive("nope") {
		t.Errorf("IsNamedPrimitive(%q) = true, want false", "nope")
	}
}

func TestIsKnownIdent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"glyph", Plus, true},
		{"modifier is not a known ident", Each, false},
		{"named primitive", NamedPipe, true},
		{"bare word", "ls", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKnownIdent(tt.in); got != tt.want {
				t.Errorf("IsKnownIdent(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
