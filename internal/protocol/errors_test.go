package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, c := range append([]string{""}, KnownCodes()...) {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	for _, c := range []string{ErrUnitBusy, ErrInsufficientMinerals, ErrUnreachable, ErrIncapable} {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestKnownCodesSorted(t *testing.T) {
	codes := KnownCodes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted at %d: %q >= %q", i, codes[i-1], codes[i])
		}
	}
}
