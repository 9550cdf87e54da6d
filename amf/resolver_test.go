package amf

import (
	"testing"

	"github.com/acescolor/amfcompile/amf/camera"
	"github.com/acescolor/amfcompile/ocio"
)

func testReferenceConfig(t *testing.T) ocio.ReadOnlyConfig {
	t.Helper()
	cfg, err := ocio.CreateFromBuiltin("studio-config-v2.1.0_aces-v1.3_ocio-v2.3")
	if err != nil {
		t.Fatalf("loading builtin reference config: %v", err)
	}
	return cfg
}

func testResolver(t *testing.T) *resolver {
	t.Helper()
	tbl, err := camera.Default()
	if err != nil {
		t.Fatalf("loading camera table: %v", err)
	}
	return newResolver(testReferenceConfig(t), tbl)
}

func TestSearchColorSpacesMatchesByDescriptionSubstring(t *testing.T) {
	r := testResolver(t)
	cs, ok := r.searchColorSpaces("urn:ampas:aces:transformId:v1.5:IDT.ARRI.LogC3-EI800-CanonCinema.a1.1")
	if !ok {
		t.Fatalf("expected a match")
	}
	if cs.Name != "ARRI LogC3 (EI800)" {
		t.Fatalf("matched color space = %q, want ARRI LogC3 (EI800)", cs.Name)
	}
}

func TestSearchColorSpacesNoMatch(t *testing.T) {
	r := testResolver(t)
	if _, ok := r.searchColorSpaces("urn:ampas:aces:transformId:v1.5:does.not.exist"); ok {
		t.Fatalf("expected no match")
	}
}

func TestSearchViewTransformsMatchesByDescriptionSubstring(t *testing.T) {
	r := testResolver(t)
	vt, ok := r.searchViewTransforms("RRT+ODT.Rec709-sRGB.a1.3")
	if !ok {
		t.Fatalf("expected a match")
	}
	if vt.Name != "ACES 1.3 Rec.709 (sRGB) 100 nits" {
		t.Fatalf("matched view transform = %q", vt.Name)
	}
}

func TestSearchLookTransformsReturnsEditableCopy(t *testing.T) {
	r := testResolver(t)
	lk, ok := r.searchLookTransforms("LMT.Academy.Rec709Emulation.a1.0")
	if !ok {
		t.Fatalf("expected a match")
	}
	lk.Name = "renamed"

	lk2, ok := r.searchLookTransforms("LMT.Academy.Rec709Emulation.a1.0")
	if !ok {
		t.Fatalf("expected a second independent match")
	}
	if lk2.Name == "renamed" {
		t.Fatalf("mutating one resolved look must not affect the reference config's own copy")
	}
}

func TestLinearCompanionKnownAndUnknownCamera(t *testing.T) {
	r := testResolver(t)
	linear, ok := r.linearCompanion("ARRI LogC3 (EI800)")
	if !ok || linear != "Linear ARRI Wide Gamut 3" {
		t.Fatalf("linearCompanion(ARRI LogC3) = %q, %v", linear, ok)
	}
	if _, ok := r.linearCompanion("Not A Camera"); ok {
		t.Fatalf("expected no linear companion for an unknown camera space")
	}
}
