package amf

import (
	"strings"

	"github.com/acescolor/amfcompile/amf/camera"
	"github.com/acescolor/amfcompile/ocio"
)

// resolver is the Reference Resolver (C3): it answers lookups against a
// reference config by scanning for the query string as a substring of
// each candidate's description field, and translates camera log color
// spaces to their linear counterparts via a fixed table.
//
// Matching is case-sensitive and whitespace-sensitive on purpose — it
// mirrors the original tool this compiler is compatible with, fragile as
// that is. Do not be tempted to case-fold it.
type resolver struct {
	ref    ocio.ReadOnlyConfig
	camera *camera.Table
}

func newResolver(ref ocio.ReadOnlyConfig, cameraTable *camera.Table) *resolver {
	return &resolver{ref: ref, camera: cameraTable}
}

func (r *resolver) searchColorSpaces(acesID string) (*ocio.ColorSpace, bool) {
	for i := 0; i < r.ref.NumColorSpaces(); i++ {
		name, ok := r.ref.GetColorSpaceNameByIndex(i)
		if !ok {
			continue
		}
		cs, ok := r.ref.GetColorSpace(name)
		if !ok {
			continue
		}
		if strings.Contains(cs.Description, acesID) {
			return cs, true
		}
	}
	return nil, false
}

func (r *resolver) searchViewTransforms(acesID string) (*ocio.ViewTransform, bool) {
	for i := 0; i < r.ref.NumViewTransforms(); i++ {
		name, ok := r.ref.GetViewTransformNameByIndex(i)
		if !ok {
			continue
		}
		vt, ok := r.ref.GetViewTransform(name)
		if !ok {
			continue
		}
		if strings.Contains(vt.Description, acesID) {
			return vt, true
		}
	}
	return nil, false
}

// searchLookTransforms returns an editable copy, since a caller always
// goes on to rename and mutate the match before adding it to the built
// config.
func (r *resolver) searchLookTransforms(acesID string) (*ocio.Look, bool) {
	for i := 0; i < r.ref.NumLooks(); i++ {
		name, ok := r.ref.GetLookNameByIndex(i)
		if !ok {
			continue
		}
		lk, ok := r.ref.GetLook(name)
		if !ok {
			continue
		}
		if strings.Contains(lk.Description, acesID) {
			return lk.Clone(), true
		}
	}
	return nil, false
}

// linearCompanion returns the scene-linear color space paired with a
// camera log color space name, if the camera table has an entry for it.
func (r *resolver) linearCompanion(logColorSpace string) (string, bool) {
	return r.camera.Linear(logColorSpace)
}
