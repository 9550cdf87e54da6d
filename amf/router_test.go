package amf

import (
	"strings"
	"testing"
)

const amfNamespaces = `xmlns:aces="http://www.amef.org/schema/2013/12/7" xmlns:cdl="urn:ASC:CDL:v1.2"`

func mustParse(t *testing.T, doc string) *intermediateModel {
	t.Helper()
	model, _, err := parseAMF(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return model
}

func TestParseClipID(t *testing.T) {
	doc := `<?xml version="1.0"?>
<aces:amf ` + amfNamespaces + `>
  <aces:clipId>
    <clipName>ShotA_001</clipName>
    <uuid>f47ac10b-58cc</uuid>
  </aces:clipId>
</aces:amf>`

	model := mustParse(t, doc)
	if got := model.clipName(); got != "ShotA_001" {
		t.Fatalf("clipName() = %q, want %q", got, "ShotA_001")
	}
	if v, ok := model.clipID.value("uuid"); !ok || v != "f47ac10b-58cc" {
		t.Fatalf("uuid = %q, %v", v, ok)
	}
}

func TestParseInputTransformRecordsTldElements(t *testing.T) {
	doc := `<?xml version="1.0"?>
<aces:amf ` + amfNamespaces + `>
  <aces:inputTransform applied="false">
    <aces:transformId>urn:ampas:aces:transformId:v1.5:IDT.ARRI.LogC3</aces:transformId>
  </aces:inputTransform>
</aces:amf>`

	model := mustParse(t, doc)
	if model.input.empty() {
		t.Fatalf("expected a non-empty input record")
	}
	if len(model.input.tldElements) != 1 {
		t.Fatalf("expected 1 tldElement, got %d", len(model.input.tldElements))
	}
	got := model.input.tldElements[0]
	if got.Tag != "transformId" || got.Text != "urn:ampas:aces:transformId:v1.5:IDT.ARRI.LogC3" {
		t.Fatalf("unexpected tldElement: %+v", got)
	}
	v, ok := model.input.attrValue("applied")
	if !ok || v != "false" {
		t.Fatalf("applied attribute = %q, %v", v, ok)
	}
}

func TestParseInputTransformCaseInsensitiveTagsAndValues(t *testing.T) {
	doc := `<?xml version="1.0"?>
<aces:amf ` + amfNamespaces + `>
  <aces:INPUTTRANSFORM Applied="TRUE">
    <aces:TransformId>urn:ampas:aces:transformId:v1.5:IDT.ARRI.LogC3</aces:TransformId>
  </aces:INPUTTRANSFORM>
</aces:amf>`

	model := mustParse(t, doc)
	if model.input.empty() {
		t.Fatalf("expected the case-varied inputTransform tag to still be routed")
	}
	if !wasApplied(&model.input.transformRecord) {
		t.Fatalf("expected applied=TRUE to fold to true")
	}
}

func TestParseWorkingLocationCapturesLookCountAtMarker(t *testing.T) {
	doc := `<?xml version="1.0"?>
<aces:amf ` + amfNamespaces + `>
  <aces:pipeline>
    <aces:lookTransform>
      <aces:description>Warm</aces:description>
    </aces:lookTransform>
    <aces:workingLocation/>
    <aces:lookTransform>
      <aces:description>Cool</aces:description>
    </aces:lookTransform>
  </aces:pipeline>
</aces:amf>`

	model := mustParse(t, doc)
	if len(model.looks) != 2 {
		t.Fatalf("expected 2 looks, got %d", len(model.looks))
	}
	if model.numLooksBeforeWorkingLocation == nil {
		t.Fatalf("expected numLooksBeforeWorkingLocation to be set")
	}
	if *model.numLooksBeforeWorkingLocation != 1 {
		t.Fatalf("numLooksBeforeWorkingLocation = %d, want 1", *model.numLooksBeforeWorkingLocation)
	}
}

func TestParseWorkingLocationOutsidePipelineIsIgnored(t *testing.T) {
	doc := `<?xml version="1.0"?>
<aces:amf ` + amfNamespaces + `>
  <aces:workingLocation/>
</aces:amf>`

	model := mustParse(t, doc)
	if model.numLooksBeforeWorkingLocation != nil {
		t.Fatalf("expected a workingLocation marker outside aces:pipeline to be ignored")
	}
}

func TestParseLookTransformCDLAndColorCorrectionRef(t *testing.T) {
	doc := `<?xml version="1.0"?>
<aces:amf ` + amfNamespaces + `>
  <aces:lookTransform applied="true">
    <aces:description>Warm</aces:description>
    <cdl:ColorCorrectionRef ref="cc01"/>
    <cdl:SOPNode>
      <cdl:Slope>1.1 1.0 0.9</cdl:Slope>
      <cdl:Offset>0.0 0.0 0.0</cdl:Offset>
      <cdl:Power>1.0 1.0 1.0</cdl:Power>
    </cdl:SOPNode>
    <cdl:SatNode>
      <cdl:Saturation>1.2</cdl:Saturation>
    </cdl:SatNode>
  </aces:lookTransform>
</aces:amf>`

	model := mustParse(t, doc)
	if len(model.looks) != 1 {
		t.Fatalf("expected 1 look, got %d", len(model.looks))
	}
	look := model.looks[0]
	if !wasApplied(&look.transformRecord) {
		t.Fatalf("expected applied=true")
	}
	cccID, ok := firstValue(look.subElements, "cdl:ColorCorrectionRef")
	if !ok || cccID != "cc01" {
		t.Fatalf("ColorCorrectionRef = %q, %v", cccID, ok)
	}
	slope, ok := firstValue(look.subElements, "Slope")
	if !ok || slope != "1.1 1.0 0.9" {
		t.Fatalf("Slope = %q, %v", slope, ok)
	}
}

// TestInputTransformInverseODTWithRRTFile pins two corrected behaviors of
// the inner-RRT-file lookup: (1) the marker nested inside an
// inverseOutputDeviceTransform block is the spec-literal, non-inverse-
// prefixed "referenceRenderingTransform" (spec.md §4.4.2;
// original_source/AMFParser.cpp:646 checks AMF_TAG_RRT on the input side
// too, the same constant the output side uses), and (2)
// original_source/AMFParser.cpp never advanced its iterator inside the
// inner while loop scanning for that file, so an RRT file placed after
// the ODT file in the sub-element stream was effectively unreachable.
// This implementation re-scans on every lookup and must find it.
func TestInputTransformInverseODTWithRRTFile(t *testing.T) {
	doc := `<?xml version="1.0"?>
<aces:amf ` + amfNamespaces + `>
  <aces:inputTransform>
    <aces:inverseOutputDeviceTransform>
      <aces:file>./lut/odt_inverse.cube</aces:file>
      <aces:referenceRenderingTransform>
        <aces:file>./lut/rrt_inverse.cube</aces:file>
      </aces:referenceRenderingTransform>
    </aces:inverseOutputDeviceTransform>
  </aces:inputTransform>
</aces:amf>`

	model := mustParse(t, doc)
	odtIdx := findMarker(model.input.subElements, "inverseOutputDeviceTransform")
	if odtIdx < 0 {
		t.Fatalf("expected to find the inverseOutputDeviceTransform marker")
	}
	odtFile, ok := nextValue(model.input.subElements[odtIdx+1:], "file")
	if !ok || odtFile != "./lut/odt_inverse.cube" {
		t.Fatalf("odt file = %q, %v", odtFile, ok)
	}
	rrtIdx := findMarker(model.input.subElements, "referenceRenderingTransform")
	if rrtIdx < 0 {
		t.Fatalf("expected to find the referenceRenderingTransform marker")
	}
	rrtFile, ok := nextValue(model.input.subElements[rrtIdx+1:], "file")
	if !ok || rrtFile != "./lut/rrt_inverse.cube" {
		t.Fatalf("rrt file = %q, %v (this is the regression the original tool dropped)", rrtFile, ok)
	}
	if !model.input.isInverse {
		t.Fatalf("expected isInverse to be set once an inverse ODT block is seen")
	}
}

func TestParseEmptyCharDataIsDropped(t *testing.T) {
	doc := `<?xml version="1.0"?>
<aces:amf ` + amfNamespaces + `>
  <aces:clipId>
    <clipName>   </clipName>
  </aces:clipId>
</aces:amf>`

	model := mustParse(t, doc)
	if _, ok := model.clipID.value("clipName"); ok {
		t.Fatalf("expected whitespace-only character data to be dropped")
	}
}

func TestParseMalformedXMLReturnsXMLParseError(t *testing.T) {
	doc := `<aces:amf ` + amfNamespaces + `><aces:clipId><clipName>Unterminated`

	_, _, err := parseAMF(strings.NewReader(doc), nil)
	if err == nil {
		t.Fatalf("expected an error for malformed XML")
	}
	if !IsKind(err, ErrKindXMLParse) {
		t.Fatalf("expected ErrKindXMLParse, got %v", err)
	}
}
