package amf

import (
	"testing"

	"github.com/acescolor/amfcompile/ocio"
)

func newTestBuilderForWorkingLocation(clipName string) *builder {
	return &builder{
		cfg:   ocio.CreateRaw(),
		info:  &Info{ClipName: clipName},
		model: &intermediateModel{},
	}
}

func TestWorkingDirectionForwardRules(t *testing.T) {
	b := newTestBuilderForWorkingLocation("ShotA")

	cases := []struct {
		name             string
		outputApplied    bool
		numLooksApplied  int
		n                int
		wantForward      bool
	}{
		{"output applied always backward", true, 5, 1, false},
		{"fewer applied than n is forward", false, 0, 1, true},
		{"more applied than n is backward", false, 2, 1, false},
		{"equal applied and n is forward", false, 1, 1, true},
	}
	for _, c := range cases {
		b.info.NumLooksApplied = c.numLooksApplied
		got := b.workingDirectionForward(c.outputApplied, c.n)
		if got != c.wantForward {
			t.Errorf("%s: workingDirectionForward() = %v, want %v", c.name, got, c.wantForward)
		}
	}
}

func TestBuildForwardWorkingPathPrependsInputConversion(t *testing.T) {
	b := newTestBuilderForWorkingLocation("ShotA")
	b.info.InputColorSpaceName = "ARRI LogC3 (EI800)"
	b.model.looks = []lookTransformRecord{{}}
	b.lookNames = []string{"AMF Look 0 (Pre-working-location) -- ShotA"}

	group := &ocio.GroupTransform{}
	b.buildForwardWorkingPath(group, false, 1)

	if group.Len() != 2 {
		t.Fatalf("expected 2 transforms (input conversion + 1 look), got %d", group.Len())
	}
	cst, ok := group.Transforms[0].(*ocio.ColorSpaceTransform)
	if !ok || cst.Src != "ARRI LogC3 (EI800)" || cst.Dst != aces2065_1 || !cst.DataBypass {
		t.Fatalf("unexpected first transform: %+v", group.Transforms[0])
	}
	lt, ok := group.Transforms[1].(*ocio.LookTransform)
	if !ok || lt.Looks != "AMF Look 0 (Pre-working-location) -- ShotA" || lt.Direction != ocio.DirForward {
		t.Fatalf("unexpected second transform: %+v", group.Transforms[1])
	}
}

func TestBuildForwardWorkingPathSkipsAlreadyAppliedAndUnresolvedLooks(t *testing.T) {
	b := newTestBuilderForWorkingLocation("ShotA")
	applied := lookTransformRecord{}
	applied.addAttr("applied", "true")
	b.model.looks = []lookTransformRecord{applied, {}, {}}
	b.lookNames = []string{"AMF Look 0 -- ShotA", "", "AMF Look 2 -- ShotA"}

	group := &ocio.GroupTransform{}
	b.buildForwardWorkingPath(group, true, 3)

	if group.Len() != 1 {
		t.Fatalf("expected only the resolved, not-yet-applied look, got %d transforms", group.Len())
	}
	lt := group.Transforms[0].(*ocio.LookTransform)
	if lt.Looks != "AMF Look 2 -- ShotA" {
		t.Fatalf("unexpected look composed: %q", lt.Looks)
	}
}

func TestBuildForwardWorkingPathStopsAtMarker(t *testing.T) {
	b := newTestBuilderForWorkingLocation("ShotA")
	b.model.looks = []lookTransformRecord{{}, {}}
	b.lookNames = []string{"AMF Look 0 -- ShotA", "AMF Look 1 -- ShotA"}

	group := &ocio.GroupTransform{}
	b.buildForwardWorkingPath(group, true, 1)

	if group.Len() != 1 {
		t.Fatalf("expected only the pre-marker look, got %d", group.Len())
	}
}

func TestBuildBackwardWorkingPathPrependsInverseDisplayView(t *testing.T) {
	b := newTestBuilderForWorkingLocation("ShotA")
	b.info.DisplayName = "Rec.709"
	b.info.ViewName = "ACES 1.3 Rec.709 (sRGB) 100 nits"

	group := &ocio.GroupTransform{}
	b.buildBackwardWorkingPath(group, true, 0)

	if group.Len() != 1 {
		t.Fatalf("expected 1 transform, got %d", group.Len())
	}
	dv, ok := group.Transforms[0].(*ocio.DisplayViewTransform)
	if !ok || dv.Display != "Rec.709" || dv.Direction != ocio.DirInverse {
		t.Fatalf("unexpected transform: %+v", group.Transforms[0])
	}
}

func TestBuildBackwardWorkingPathUndoesAppliedLooksFromTheEnd(t *testing.T) {
	b := newTestBuilderForWorkingLocation("ShotA")
	applied0 := lookTransformRecord{}
	applied0.addAttr("applied", "true")
	applied1 := lookTransformRecord{}
	applied1.addAttr("applied", "true")
	b.model.looks = []lookTransformRecord{applied0, applied1}
	b.lookNames = []string{"AMF Look 0 -- ShotA", "AMF Look 1 -- ShotA"}

	group := &ocio.GroupTransform{}
	b.buildBackwardWorkingPath(group, false, 1)

	if group.Len() != 1 {
		t.Fatalf("expected to undo exactly 1 applied look, got %d", group.Len())
	}
	lt := group.Transforms[0].(*ocio.LookTransform)
	if lt.Looks != "AMF Look 1 -- ShotA" || lt.Direction != ocio.DirInverse {
		t.Fatalf("expected the most recently applied look to be undone first, got %+v", lt)
	}
}

func TestReassembleWorkingLocationInsertsIdentityWhenEmpty(t *testing.T) {
	b := newTestBuilderForWorkingLocation("ShotA")
	zero := 0
	b.model.numLooksBeforeWorkingLocation = &zero

	b.reassembleWorkingLocation()

	nts := b.cfg.NamedTransforms()
	if len(nts) != 1 {
		t.Fatalf("expected 1 named transform, got %d", len(nts))
	}
	nt := nts[0]
	if nt.Name != "AMF Clip to Working Space Transform -- ShotA" {
		t.Fatalf("unexpected named transform name: %q", nt.Name)
	}
	group, ok := nt.Forward.(*ocio.GroupTransform)
	if !ok || group.Len() != 1 {
		t.Fatalf("expected a single identity matrix transform, got %+v", nt.Forward)
	}
	if _, ok := group.Transforms[0].(*ocio.MatrixTransform); !ok {
		t.Fatalf("expected an identity MatrixTransform fallback, got %T", group.Transforms[0])
	}
}

func TestReassembleWorkingLocationNoOpWithoutMarker(t *testing.T) {
	b := newTestBuilderForWorkingLocation("ShotA")
	b.reassembleWorkingLocation()

	if len(b.cfg.NamedTransforms()) != 0 {
		t.Fatalf("expected no named transform without a workingLocation marker")
	}
}
