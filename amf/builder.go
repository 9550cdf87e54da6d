package amf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/acescolor/amfcompile/observability"
	"github.com/acescolor/amfcompile/ocio"
)

// aces2065_1 is spelled out in full everywhere it matters so a reviewer
// never has to chase a constant to learn which color space it names.
const aces2065_1 = "ACES2065-1"

// acesLookName is ACES_LOOK_NAME in original_source/AMFParser.cpp: the
// look every AMF-derived display/view binding carries so SHOT_LOOKS can
// inject the unapplied-look named transform at view time. The None/Raw
// fallback binding for an empty output transform carries no look.
const acesLookName = "ACES Look Transform"

type builder struct {
	model  *intermediateModel
	res    *resolver
	cfg    ocio.EditableConfig
	info   *Info
	amfDir string
	logger observability.Logger

	// line is the final line count C1 reached while parsing the AMF
	// document, carried forward so build-phase CompileErrors still
	// report a meaningful Line instead of 0 — original_source's
	// parse() does the same with m_lineNumber past the parse loop.
	line int

	// resolverMisses counts look transformId and output transformId
	// lookups the resolver could not match against the reference config.
	// Each such miss also gets its own Warn at the call site; compiler.go
	// logs the total once the build finishes. An unresolved input
	// transformId or CDL working-space transformId is not counted.
	resolverMisses int

	// lookNames parallels model.looks: the built look name for each
	// AMF lookTransform record, or "" if it could not be resolved at
	// all. C5 needs this to know which looks actually exist in the
	// built config when it reassembles the working-location transform.
	lookNames []string
}

// build runs C4, the Config Builder: initialize the destination config
// from a raw base, seed ACES core spaces and roles, then apply the input,
// look, and output translations. It deliberately stops short of
// Validate() — compiler.go runs C5 against the returned builder first,
// since the working-location named transform it adds must also pass
// validation before a caller ever sees the config.
func build(model *intermediateModel, ref ocio.ReadOnlyConfig, res *resolver, amfPath string, line int, logger observability.Logger) (*builder, error) {
	v := ref.Version()
	if v.Major != 2 || v.Minor < 3 {
		return nil, newCompileError(ErrKindUnsupportedRefVersion, line,
			"reference config version %d.%d is below the minimum supported 2.3", v.Major, v.Minor)
	}

	if logger == nil {
		logger = observability.NopLogger{}
	}
	b := &builder{
		model:  model,
		res:    res,
		cfg:    ocio.CreateRaw(),
		info:   &Info{ClipName: model.clipName()},
		amfDir: filepath.Dir(amfPath),
		line:   line,
		logger: logger,
	}

	if err := b.initialize(ref); err != nil {
		return b, err
	}
	if err := b.processInputTransform(); err != nil {
		return b, err
	}
	if err := b.processOutputTransform(); err != nil {
		return b, err
	}
	if err := b.processLooks(); err != nil {
		return b, err
	}
	b.finalizeClipRole()

	return b, nil
}

func (b *builder) initialize(ref ocio.ReadOnlyConfig) error {
	b.cfg.SetVersion(2, 3)
	b.cfg.RemoveDisplayView("sRGB", "Raw")
	b.cfg.RemoveColorSpace("Raw")

	for _, name := range []string{aces2065_1, "ACEScg", "ACEScct", "CIE-XYZ-D65", "Raw"} {
		cs, ok := ref.GetColorSpace(name)
		if !ok {
			if name == aces2065_1 {
				return newCompileError(ErrKindMissingRefACES, b.line, "reference config has no %s color space", aces2065_1)
			}
			continue
		}
		b.cfg.AddColorSpace(cs.Clone())
	}

	b.cfg.SetInactiveColorSpaces("CIE-XYZ-D65")

	b.cfg.SetRole("scene_linear", "ACEScg")
	b.cfg.SetRole("aces_interchange", aces2065_1)
	b.cfg.SetRole("cie_xyz_d65_interchange", "CIE-XYZ-D65")
	b.cfg.SetRole("color_timing", "ACEScct")
	b.cfg.SetRole("compositing_log", "ACEScct")
	b.cfg.SetRole("default", "")

	b.cfg.SetFileRules(ocio.FileRules{DefaultColorSpace: aces2065_1})

	b.cfg.AddLook(&ocio.Look{
		Name:         acesLookName,
		ProcessSpace: aces2065_1,
		Transform: &ocio.ColorSpaceTransform{
			Src: "$SHOT_LOOKS", Dst: aces2065_1,
			Direction: ocio.DirForward, DataBypass: true,
		},
	})

	b.cfg.AddEnvironmentVar("SHOT_LOOKS", aces2065_1)
	b.cfg.AddSearchPath(b.amfDir)
	return nil
}

// checkLutPath resolves a path against the AMF file's directory and
// verifies that it exists (os.Stat; readability is not checked); spec.md promotes the original's silently
// swallowed failure into a hard error (§4.4.5, §7 InvalidLutPath).
func checkLutPath(amfDir, rawPath string) error {
	if filepath.IsAbs(rawPath) {
		if _, err := os.Stat(rawPath); err == nil {
			return nil
		}
	}
	resolved := filepath.Join(amfDir, rawPath)
	if _, err := os.Stat(resolved); err == nil {
		return nil
	}
	return fmt.Errorf("file transform refers to path that does not exist: %q", rawPath)
}

func (b *builder) clipName() string {
	if b.info.ClipName != "" {
		return b.info.ClipName
	}
	return "clip"
}

// processInputTransform implements spec.md §4.4.2.
func (b *builder) processInputTransform() error {
	in := &b.model.input

	if in.empty() {
		cs, ok := b.res.searchColorSpaces(aces2065_1)
		if ok {
			b.cfg.AddColorSpace(cs.Clone())
			b.info.InputColorSpaceName = cs.Name
		} else {
			b.info.InputColorSpaceName = aces2065_1
		}
		return nil
	}

	for _, el := range in.tldElements {
		switch {
		case foldEqual(el.Tag, "transformId"):
			cs, ok := b.res.searchColorSpaces(el.Text)
			if !ok {
				continue
			}
			b.cfg.AddColorSpace(cs.Clone())
			b.info.InputColorSpaceName = cs.Name
			if linearName, ok := b.res.linearCompanion(cs.Name); ok {
				if lin, ok := b.res.ref.GetColorSpace(linearName); ok {
					b.cfg.AddColorSpace(lin.Clone())
				}
			}

		case foldEqual(el.Tag, "file"):
			if err := checkLutPath(b.amfDir, el.Text); err != nil {
				return newCompileError(ErrKindInvalidLUTPath, b.line, "%w", err)
			}
			name := "AMF Input Transform -- " + b.clipName()
			cs := &ocio.ColorSpace{
				Name:       name,
				Family:     "AMF/" + b.clipName(),
				Categories: []string{"file-io"},
				ToReference: &ocio.FileTransform{
					Src: el.Text, Interpolation: ocio.InterpBest, Direction: ocio.DirForward,
				},
			}
			b.cfg.AddColorSpace(cs)
			b.info.InputColorSpaceName = name
		}
	}

	if err := b.processInverseODTSection(); err != nil {
		return err
	}

	if b.info.InputColorSpaceName == "" {
		return newCompileError(ErrKindMissingInputTransform, b.line, "input transform present but no input color space could be assigned")
	}
	return nil
}

// findMarker returns the index of the first marker breadcrumb (an entry
// with empty Text) whose tag matches tag, or -1 if there is none.
func findMarker(els []subElement, tag string) int {
	for i, el := range els {
		if el.Text == "" && foldEqual(el.Tag, tag) {
			return i
		}
	}
	return -1
}

// processInverseODTSection walks input.subElements for the
// inverseOutputDeviceTransform marker breadcrumb and, when found, builds
// an AMF Input Transform LUT color space from the ODT file and whichever
// referenceRenderingTransform file follows it, or resolves a transformId
// through processOutputTransformId in the inverse direction.
func (b *builder) processInverseODTSection() error {
	in := &b.model.input
	odtIdx := findMarker(in.subElements, "inverseOutputDeviceTransform")
	if odtIdx < 0 {
		return nil
	}
	rest := in.subElements[odtIdx+1:]

	if tid, ok := nextValue(rest, "transformId"); ok {
		return b.processOutputTransformId(tid, ocio.DirInverse)
	}

	odtFile, ok := nextValue(rest, "file")
	if !ok {
		return nil
	}

	// Every scan below is a fresh linear pass over the full list rather
	// than a shared, never-advancing iterator — the fix for the inner
	// RRT lookup bug noted in original_source/AMFParser.cpp. The marker
	// tag here is "referenceRenderingTransform", not the inverse-prefixed
	// one: original_source/AMFParser.cpp:646 checks AMF_TAG_RRT on the
	// input side too, the same constant processForwardODTSection uses.
	var rrtFile string
	if rrtIdx := findMarker(in.subElements, "referenceRenderingTransform"); rrtIdx >= 0 {
		if f, ok := nextValue(in.subElements[rrtIdx+1:], "file"); ok {
			rrtFile = f
		}
	}

	if err := checkLutPath(b.amfDir, odtFile); err != nil {
		return newCompileError(ErrKindInvalidLUTPath, b.line, "%w", err)
	}
	odt := &ocio.FileTransform{Src: odtFile, Interpolation: ocio.InterpBest, Direction: ocio.DirInverse}
	group := &ocio.GroupTransform{}
	if rrtFile != "" {
		if err := checkLutPath(b.amfDir, rrtFile); err != nil {
			return newCompileError(ErrKindInvalidLUTPath, b.line, "%w", err)
		}
		rrt := &ocio.FileTransform{Src: rrtFile, Interpolation: ocio.InterpBest, Direction: ocio.DirInverse}
		group.Append(rrt)
	}
	group.Append(odt)

	lutName := "AMF Input Transform LUT -- " + b.clipName()
	cs := &ocio.ColorSpace{
		Name:       lutName,
		Family:     "AMF/" + b.clipName(),
		Categories: []string{"file-io"},
	}
	cs.SetTransform(group, ocio.DirFromReference)
	b.cfg.AddColorSpace(cs)
	b.markInactive(lutName)

	display := odtFile
	if desc, ok := firstValue(rest, "description"); ok && desc != "" {
		display = desc
	}
	view := "AMF Input Transform LUT -- " + b.clipName()
	b.cfg.AddDisplayView(display, view, lutName, acesLookName)
	b.cfg.SetDisplayColorSpace(display, lutName)
	b.cfg.SetActiveDisplays(display)
	b.cfg.SetActiveViews(view)
	b.info.DisplayName = display
	b.info.ViewName = view
	return nil
}

// nextValue returns the text of the first entry in els whose tag matches
// wantTag, scanning only up to (but not past) the next marker entry — a
// marker is any breadcrumb entry with an empty Text. This is the fixed
// version of the "inner RRT file" lookup: original_source/AMFParser.cpp
// never advanced its iterator inside the corresponding while loop; here
// the loop index always advances, so a file that follows its marker is
// actually found. See TestInputTransformInverseODTWithRRTFile.
func nextValue(els []subElement, wantTag string) (string, bool) {
	for _, el := range els {
		if el.Text == "" && el.Tag != wantTag {
			return "", false
		}
		if foldEqual(el.Tag, wantTag) {
			return el.Text, true
		}
	}
	return "", false
}

// processOutputTransform implements spec.md §4.4.3, the symmetric forward
// variant of input-transform processing.
func (b *builder) processOutputTransform() error {
	out := &b.model.output

	if out.empty() {
		b.cfg.AddDisplayView("None", "Raw", "Raw", "")
		b.cfg.SetActiveDisplays("None")
		b.cfg.SetActiveViews("Raw")
		b.info.DisplayName = "None"
		b.info.ViewName = "Raw"
		if vt, ok := b.res.ref.GetViewTransform("Un-tone-mapped"); ok {
			b.cfg.AddViewTransform(vt.Clone())
		}
		return nil
	}

	for _, el := range out.tldElements {
		switch {
		case foldEqual(el.Tag, "transformId"):
			if err := b.processOutputTransformId(el.Text, ocio.DirForward); err != nil {
				return err
			}
		case foldEqual(el.Tag, "file"):
			if err := checkLutPath(b.amfDir, el.Text); err != nil {
				return newCompileError(ErrKindInvalidLUTPath, b.line, "%w", err)
			}
		}
	}

	return b.processForwardODTSection()
}

// processForwardODTSection mirrors processInverseODTSection for the
// output transform's forward referenceRenderingTransform/outputDeviceTransform
// block, producing an AMF Output Transform LUT color space installed in
// the from-reference direction.
func (b *builder) processForwardODTSection() error {
	out := &b.model.output
	odtIdx := findMarker(out.subElements, "outputDeviceTransform")
	if odtIdx < 0 {
		return nil
	}
	rest := out.subElements[odtIdx+1:]

	odtFile, ok := nextValue(rest, "file")
	if !ok {
		return nil
	}

	var rrtFile string
	if rrtIdx := findMarker(out.subElements, "referenceRenderingTransform"); rrtIdx >= 0 {
		if f, ok := nextValue(out.subElements[rrtIdx+1:], "file"); ok {
			rrtFile = f
		}
	}

	if err := checkLutPath(b.amfDir, odtFile); err != nil {
		return newCompileError(ErrKindInvalidLUTPath, b.line, "%w", err)
	}
	odt := &ocio.FileTransform{Src: odtFile, Interpolation: ocio.InterpBest, Direction: ocio.DirForward}
	group := &ocio.GroupTransform{}
	if rrtFile != "" {
		if err := checkLutPath(b.amfDir, rrtFile); err != nil {
			return newCompileError(ErrKindInvalidLUTPath, b.line, "%w", err)
		}
		rrt := &ocio.FileTransform{Src: rrtFile, Interpolation: ocio.InterpBest, Direction: ocio.DirForward}
		group.Append(rrt)
	}
	group.Append(odt)

	lutName := "AMF Output Transform LUT -- " + b.clipName()
	cs := &ocio.ColorSpace{
		Name:       lutName,
		Family:     "AMF/" + b.clipName(),
		Categories: []string{"file-io"},
	}
	cs.SetTransform(group, ocio.DirFromReference)
	b.cfg.AddColorSpace(cs)
	b.markInactive(lutName)

	display := odtFile
	if desc, ok := firstValue(rest, "description"); ok && desc != "" {
		display = desc
	}
	view := "AMF Output Transform LUT -- " + b.clipName()
	b.cfg.AddDisplayView(display, view, lutName, acesLookName)
	b.cfg.SetDisplayColorSpace(display, lutName)
	b.cfg.SetActiveDisplays(display)
	b.cfg.SetActiveViews(view)
	b.info.DisplayName = display
	b.info.ViewName = view
	return nil
}

// processOutputTransformId implements spec.md §4.4.4.
func (b *builder) processOutputTransformId(id string, direction ocio.TransformDirection) error {
	dcs, ok1 := b.res.searchColorSpaces(id)
	vt, ok2 := b.res.searchViewTransforms(id)
	if !ok1 || !ok2 {
		b.resolverMisses++
		b.logger.Warn("unresolved output transformId",
			observability.String(observability.MetricResolverMiss, id))
		return nil
	}

	b.cfg.AddColorSpace(dcs.Clone())
	b.cfg.AddViewTransform(vt.Clone())

	b.cfg.AddSharedView(vt.Name, vt.Name, ocio.UseDisplayNameSentinel, acesLookName, "", "")
	b.cfg.SetDisplayColorSpace(dcs.Name, dcs.Name)
	if err := b.cfg.AddDisplaySharedView(dcs.Name, vt.Name); err != nil {
		return newCompileError(ErrKindInternalParse, b.line, "binding shared view %q to display %q: %w", vt.Name, dcs.Name, err)
	}

	b.cfg.SetActiveDisplays(dcs.Name)
	b.cfg.SetActiveViews(vt.Name)
	b.info.DisplayName = dcs.Name
	b.info.ViewName = vt.Name

	if direction == ocio.DirInverse {
		name := "AMF Input Transform -- " + b.clipName()
		cs := &ocio.ColorSpace{
			Name:   name,
			Family: "AMF/" + b.clipName(),
			ToReference: &ocio.DisplayViewTransform{
				Src: aces2065_1, Display: dcs.Name, View: vt.Name,
				Direction: ocio.DirInverse, LooksBypass: true,
			},
		}
		b.cfg.AddColorSpace(cs)
		b.info.InputColorSpaceName = name
	}
	return nil
}

func (b *builder) markInactive(name string) {
	existing := b.cfg.InactiveColorSpaces()
	if existing == "" {
		b.cfg.SetInactiveColorSpaces(name)
		return
	}
	b.cfg.SetInactiveColorSpaces(existing + ", " + name)
}

// processLooks implements spec.md §4.4.6.
func (b *builder) processLooks() error {
	var unapplied []string
	b.lookNames = make([]string, len(b.model.looks))

	for i, look := range b.model.looks {
		name, err := b.processLook(i+1, &look)
		if err != nil {
			return err
		}
		b.lookNames[i] = name
		if name == "" {
			continue
		}
		if wasApplied(&look.transformRecord) {
			b.info.NumLooksApplied++
		} else {
			unapplied = append(unapplied, name)
		}
	}

	if len(unapplied) == 0 {
		return nil
	}

	group := &ocio.GroupTransform{}
	for _, lookName := range unapplied {
		group.Append(&ocio.LookTransform{
			Src: aces2065_1, Dst: aces2065_1, Looks: lookName,
			SkipColorSpaceConversion: false, Direction: ocio.DirForward,
		})
	}

	ntName := "AMF Unapplied Look Transforms -- " + b.clipName()
	b.cfg.AddNamedTransform(&ocio.NamedTransform{
		Name: ntName, Family: "AMF/" + b.clipName(),
		Forward: group, Direction: ocio.DirForward,
	})
	b.cfg.AddEnvironmentVar("SHOT_LOOKS", ntName)
	return nil
}

// lookLocationSuffix expects a 1-based index (matching processLooks and
// original_source's own "auto index = 1" convention): the look at
// position numLooksBeforeWorkingLocation is the last one before the
// marker, so it is still Pre-working-location.
func (b *builder) lookLocationSuffix(index int) string {
	loc := ""
	if b.model.numLooksBeforeWorkingLocation != nil {
		if index <= *b.model.numLooksBeforeWorkingLocation {
			loc = "Pre-working-location"
		} else {
			loc = "Post-working-location"
		}
	}
	return loc
}

func (b *builder) lookDisplayName(index int, look *lookTransformRecord) string {
	loc := b.lookLocationSuffix(index)
	applied := wasApplied(&look.transformRecord)

	var suffix string
	switch {
	case loc != "" && applied:
		suffix = fmt.Sprintf(" (%s and Applied)", loc)
	case loc != "":
		suffix = fmt.Sprintf(" (%s)", loc)
	case applied:
		suffix = " (Applied)"
	}
	return fmt.Sprintf("AMF Look %d%s -- %s", index, suffix, b.clipName())
}

// processLook builds and registers one look, returning its built name (or
// "" if it could not be resolved at all — the record contributes nothing).
func (b *builder) processLook(index int, look *lookTransformRecord) (string, error) {
	name := b.lookDisplayName(index, look)

	if tid, ok := firstValue(look.subElements, "transformId"); ok {
		lk, ok := b.res.searchLookTransforms(tid)
		if !ok {
			b.resolverMisses++
			b.logger.Warn("unresolved look transformId",
				observability.String(observability.MetricResolverMiss, tid))
			return "", nil
		}
		lk.Name = name
		b.cfg.AddLook(lk)
		return name, nil
	}

	if file, ok := firstValue(look.subElements, "file"); ok {
		if err := checkLutPath(b.amfDir, file); err != nil {
			return "", newCompileError(ErrKindInvalidLUTPath, b.line, "%w", err)
		}
		cccID, _ := firstValue(look.subElements, "cdl:ColorCorrectionRef")
		description, _ := firstValue(look.subElements, "description")
		if cccID != "" {
			description = strings.TrimSpace(description + " " + cccID)
		}
		lk := &ocio.Look{
			Name: name, ProcessSpace: aces2065_1, Description: description,
			Transform: &ocio.FileTransform{
				Src: file, CCCId: cccID, Interpolation: ocio.InterpBest, Direction: ocio.DirForward,
			},
		}
		b.cfg.AddLook(lk)
		return name, nil
	}

	if hasCDLMarkers(look.subElements) {
		cdl, err := b.buildCDLTransform(look.subElements)
		if err != nil {
			return "", err
		}
		lk := &ocio.Look{Name: name, ProcessSpace: aces2065_1, Description: "ASC CDL", Transform: cdl}
		b.cfg.AddLook(lk)
		return name, nil
	}

	return "", nil
}

// hasCDLMarkers reports whether the look's sub-elements carry CDL content.
// SOPNode/ASC_SOP/SatNode/ASC_SAT are pure containers with no text of
// their own, so the router never records them directly; their presence is
// detected through the leaf values they carry instead.
func hasCDLMarkers(els []subElement) bool {
	for _, el := range els {
		switch {
		case foldEqual(el.Tag, "Slope"), foldEqual(el.Tag, "Offset"),
			foldEqual(el.Tag, "Power"), foldEqual(el.Tag, "Saturation"):
			return true
		}
	}
	return false
}

// buildCDLTransform implements the CDL branch of spec.md §4.4.6,
// including the to/from-CDL-working-space composition table.
func (b *builder) buildCDLTransform(els []subElement) (ocio.Transform, error) {
	slope, err := threeFloats(els, "Slope", [3]float64{1, 1, 1}, b.line)
	if err != nil {
		return nil, err
	}
	offset, err := threeFloats(els, "Offset", [3]float64{0, 0, 0}, b.line)
	if err != nil {
		return nil, err
	}
	power, err := threeFloats(els, "Power", [3]float64{1, 1, 1}, b.line)
	if err != nil {
		return nil, err
	}

	// An explicit Saturation default of 1.0 (the CDL identity) resolves
	// the open question around the original's stod("") on a missing Sat
	// node: see spec.md §9 and SPEC_FULL.md §9.
	sat := 1.0
	if text, ok := firstValue(els, "Saturation"); ok {
		text = strings.TrimSpace(text)
		if text != "" {
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, newCompileError(ErrKindInternalParse, b.line, "parsing CDL saturation %q: %w", text, err)
			}
			sat = v
		}
	}

	cdl := &ocio.CDLTransform{Slope: slope, Offset: offset, Power: power, Sat: sat, Direction: ocio.DirForward}

	toT, hasTo := b.cdlWorkingSpaceTransform(els, "toCdlWorkingSpace")
	fromT, hasFrom := b.cdlWorkingSpaceTransform(els, "fromCdlWorkingSpace")

	group := &ocio.GroupTransform{}
	switch {
	case hasTo && hasFrom:
		group.Append(toT)
		group.Append(cdl)
		group.Append(fromT)
	case hasTo:
		group.Append(toT)
		group.Append(cdl)
		group.Append(invertTransform(toT))
	case hasFrom:
		group.Append(invertTransform(fromT))
		group.Append(cdl)
		group.Append(fromT)
	default:
		return cdl, nil
	}
	return group, nil
}

func (b *builder) cdlWorkingSpaceTransform(els []subElement, marker string) (ocio.Transform, bool) {
	idx := -1
	for i, el := range els {
		if foldEqual(el.Tag, marker) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	rest := els[idx+1:]

	if tid, ok := nextValue(rest, "transformId"); ok {
		cs, ok := b.res.searchColorSpaces(tid)
		if !ok {
			return nil, false
		}
		return &ocio.ColorSpaceTransform{Src: aces2065_1, Dst: cs.Name, Direction: ocio.DirForward}, true
	}
	if file, ok := nextValue(rest, "file"); ok {
		return &ocio.FileTransform{Src: file, Interpolation: ocio.InterpBest, Direction: ocio.DirForward}, true
	}
	return nil, false
}

func invertTransform(t ocio.Transform) ocio.Transform {
	switch v := t.(type) {
	case *ocio.ColorSpaceTransform:
		inv := *v
		inv.Direction = flip(v.Direction)
		return &inv
	case *ocio.FileTransform:
		inv := *v
		inv.Direction = flip(v.Direction)
		return &inv
	default:
		return t
	}
}

func flip(d ocio.TransformDirection) ocio.TransformDirection {
	if d == ocio.DirForward {
		return ocio.DirInverse
	}
	return ocio.DirForward
}

func threeFloats(els []subElement, tag string, def [3]float64, line int) ([3]float64, error) {
	text, ok := firstValue(els, tag)
	if !ok || strings.TrimSpace(text) == "" {
		return def, nil
	}
	parts := strings.Fields(text)
	if len(parts) != 3 {
		return def, newCompileError(ErrKindInternalParse, line, "expected 3 values for %s, got %q", tag, text)
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return def, newCompileError(ErrKindInternalParse, line, "parsing %s value %q: %w", tag, p, err)
		}
		out[i] = v
	}
	return out, nil
}

func firstValue(els []subElement, tag string) (string, bool) {
	for _, el := range els {
		if foldEqual(el.Tag, tag) {
			return el.Text, true
		}
	}
	return "", false
}

// wasApplied implements mustApply's complement from spec.md §9: a missing
// "applied" attribute or an explicit "applied=false" both mean "not yet
// applied to pixels"; only a case-folded "true" value means it already
// was.
func wasApplied(r *transformRecord) bool {
	v, ok := r.attrValue("applied")
	if !ok {
		return false
	}
	return foldEqual(v, "true")
}

// sanitizeClipName strips everything but ASCII letters, digits, and
// underscore, matching the /^amf_clip_[0-9A-Za-z_]+$/ role-name invariant.
func sanitizeClipName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (b *builder) finalizeClipRole() {
	wasOutputApplied := wasApplied(&b.model.output.transformRecord)
	wasInputApplied := wasApplied(&b.model.input.transformRecord)

	var clipColorSpace string
	switch {
	case wasOutputApplied:
		clipColorSpace = b.info.DisplayName
	case !wasInputApplied:
		clipColorSpace = b.info.InputColorSpaceName
	default:
		clipColorSpace = aces2065_1
	}
	if clipColorSpace == "" {
		clipColorSpace = aces2065_1
	}
	b.info.ClipColorSpaceName = clipColorSpace

	role := "amf_clip_" + sanitizeClipName(b.clipName())
	b.cfg.SetRole(role, clipColorSpace)
	b.info.ClipIdentifier = role
}
