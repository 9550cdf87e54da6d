package camera

import "testing"

func TestDefaultTableHasElevenEntries(t *testing.T) {
	tbl, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Len() != 11 {
		t.Fatalf("expected 11 camera mappings, got %d", tbl.Len())
	}
}

func TestDefaultTableResolvesKnownLog(t *testing.T) {
	tbl, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	linear, ok := tbl.Linear("S-Log3 S-Gamut3.Cine")
	if !ok || linear != "Linear S-Gamut3.Cine" {
		t.Fatalf("unexpected resolution: %q, %v", linear, ok)
	}
}

func TestDefaultTableUnknownLog(t *testing.T) {
	tbl, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tbl.Linear("Not A Real Camera"); ok {
		t.Fatalf("expected no mapping for an unknown log space")
	}
}
