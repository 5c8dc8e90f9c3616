package binid

import "testing"

func TestModulo(t *testing.T) {
	id, err := BinID(Modulo, 17, 4)
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Fatalf("BinID(17, 4) = %d, want 1", id)
	}
}

func TestZigZagUnsupported(t *testing.T) {
	if _, err := BinID(ZigZag, 17, 4); err == nil {
		t.Fatal("expected error for unimplemented ZigZag mapping")
	}
}

func TestModuloDeterministic(t *testing.T) {
	for _, sig := range []uint64{0, 1, 1000, 1 << 40} {
		a, _ := BinID(Modulo, sig, 17)
		b, _ := BinID(Modulo, sig, 17)
		if a != b {
			t.Fatalf("BinID not deterministic for signature %d", sig)
		}
	}
}
