package amf

import "github.com/acescolor/amfcompile/ocio"

// reassembleWorkingLocation is C5. It runs only when the AMF pipeline
// contained a workingLocation marker, synthesizing a ClipToWorkingSpace
// named transform that composes whichever of the input conversion, the
// pre-working-location looks, and the inverse output view are needed to
// take pixels back to the point the marker identified.
//
// "Forward" and "backward" below match spec.md §4.5's own terms: forward
// walks looks from the start and re-applies the ones that still need to
// happen before the marker; backward walks from the end and undoes looks
// that were already baked in past it.
func (b *builder) reassembleWorkingLocation() {
	n := b.model.numLooksBeforeWorkingLocation
	if n == nil {
		return
	}

	wasOutputApplied := wasApplied(&b.model.output.transformRecord)
	wasInputApplied := wasApplied(&b.model.input.transformRecord)

	workingForward := b.workingDirectionForward(wasOutputApplied, *n)

	group := &ocio.GroupTransform{}
	if workingForward {
		b.buildForwardWorkingPath(group, wasInputApplied, *n)
	} else {
		b.buildBackwardWorkingPath(group, wasOutputApplied, *n)
	}

	if group.Len() == 0 {
		group.Append(ocio.NewIdentityMatrixTransform())
	}

	b.cfg.AddNamedTransform(&ocio.NamedTransform{
		Name:      "AMF Clip to Working Space Transform -- " + b.clipName(),
		Family:    "AMF/" + b.clipName(),
		Forward:   group,
		Direction: ocio.DirForward,
	})
}

// workingDirectionForward decides which of the two reassembly paths
// applies, per spec.md §4.5's four-way rule.
func (b *builder) workingDirectionForward(wasOutputApplied bool, numLooksBeforeWorkingLocation int) bool {
	if wasOutputApplied {
		return false
	}
	switch {
	case b.info.NumLooksApplied < numLooksBeforeWorkingLocation:
		return true
	case b.info.NumLooksApplied > numLooksBeforeWorkingLocation:
		return false
	default:
		return true
	}
}

// buildForwardWorkingPath re-applies whatever still needs to happen to
// reach the working location: the input conversion if it was never
// baked in, then every pre-marker look that is both resolved and not
// yet applied (an already-applied pre-marker look is already where it
// needs to be; an unresolved one was never added to the built config
// and has nothing to apply).
func (b *builder) buildForwardWorkingPath(group *ocio.GroupTransform, wasInputApplied bool, numLooksBeforeWorkingLocation int) {
	if !wasInputApplied && b.info.InputColorSpaceName != "" {
		group.Append(&ocio.ColorSpaceTransform{
			Src: b.info.InputColorSpaceName, Dst: aces2065_1,
			Direction: ocio.DirForward, DataBypass: true,
		})
	}

	for i, look := range b.model.looks {
		externalIndex := i + 1
		if externalIndex > numLooksBeforeWorkingLocation {
			break
		}
		name := b.lookNames[i]
		if name == "" || name == acesLookName || wasApplied(&look.transformRecord) {
			continue
		}
		group.Append(&ocio.LookTransform{
			Src: aces2065_1, Dst: aces2065_1, Looks: name, Direction: ocio.DirForward,
		})
	}
}

// buildBackwardWorkingPath undoes whatever was already baked past the
// working location: the output's display/view rendering if it was
// applied, then — walking the looks in reverse — the inverse of each
// already-applied look, stopping once numLooksBeforeWorkingLocation of
// them have been undone (the remaining, earlier applied looks are the
// ones the working location itself already accounts for).
func (b *builder) buildBackwardWorkingPath(group *ocio.GroupTransform, wasOutputApplied bool, numLooksBeforeWorkingLocation int) {
	if wasOutputApplied && b.info.DisplayName != "" && b.info.ViewName != "" {
		// The display's own name is not necessarily a declared color
		// space (a LUT-based output binds an arbitrary display name, per
		// spec.md §4.4.3, to the color space actually registered for it);
		// resolve through SetDisplayColorSpace the same way the resolved-
		// transformId branch's own display name already does.
		displayColorSpace := b.info.DisplayName
		if cs, ok := b.cfg.GetDisplayColorSpace(b.info.DisplayName); ok {
			displayColorSpace = cs
		}
		group.Append(&ocio.DisplayViewTransform{
			Src: aces2065_1, Display: displayColorSpace, View: b.info.ViewName,
			Direction: ocio.DirInverse,
		})
	}

	reverseIndex := 0
	for i := len(b.model.looks) - 1; i >= 0; i-- {
		look := b.model.looks[i]
		if !wasApplied(&look.transformRecord) {
			continue
		}
		reverseIndex++
		if reverseIndex > numLooksBeforeWorkingLocation {
			continue
		}
		name := b.lookNames[i]
		if name == "" || name == acesLookName {
			continue
		}
		group.Append(&ocio.LookTransform{
			Src: aces2065_1, Dst: aces2065_1, Looks: name, Direction: ocio.DirInverse,
		})
	}
}
