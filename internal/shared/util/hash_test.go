package util

import "testing"

func TestSHA256Hex(t *testing.T) {
	got := SHA256Hex("jd::resume::free")
	if got != SHA256Hex("jd::resume::free") {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestShortHash(t *testing.T) {
	full := SHA256Hex("prompt")
	if got := ShortHash("prompt", 16); got != full[:16] {
		t.Fatalf("expected %s, got %s", full[:16], got)
	}
	if got := ShortHash("prompt", 0); got != full {
		t.Fatalf("expected full digest for n=0, got %s", got)
	}
}
