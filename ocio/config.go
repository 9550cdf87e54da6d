// Package ocio implements the subset of OpenColorIO's Config object model
// that an AMF compiler needs: color spaces, looks, view transforms, named
// transforms, roles, displays/views, and the handful of *Transform value
// types that appear inside them. It does not evaluate or render any
// transform — building and validating the declarative graph is all this
// package does.
package ocio

import (
	"fmt"
	"strings"
)

// ReadOnlyConfig is the read side of the reference-config collaborator: it
// is what a compiler consults when resolving AMF references against a
// pre-built studio configuration.
type ReadOnlyConfig interface {
	Version() Version

	NumColorSpaces() int
	GetColorSpaceNameByIndex(i int) (string, bool)
	GetColorSpace(name string) (*ColorSpace, bool)

	NumViewTransforms() int
	GetViewTransformNameByIndex(i int) (string, bool)
	GetViewTransform(name string) (*ViewTransform, bool)

	NumLooks() int
	GetLookNameByIndex(i int) (string, bool)
	GetLook(name string) (*Look, bool)

	NumRoles() int
	GetRoleNameByIndex(i int) (string, bool)
	GetRole(name string) (string, bool)

	ActiveDisplays() string
	ActiveViews() string
	InactiveColorSpaces() string

	CreateEditableCopy() EditableConfig
}

// EditableConfig is the write side: what a compiler mutates while it builds
// the AMF config.
type EditableConfig interface {
	ReadOnlyConfig

	AddColorSpace(cs *ColorSpace)
	RemoveColorSpace(name string)

	AddViewTransform(vt *ViewTransform)
	AddLook(lk *Look)
	AddNamedTransform(nt *NamedTransform)
	NamedTransforms() []*NamedTransform

	AddDisplayView(display, view, colorSpace, looks string)
	AddDisplaySharedView(display, viewName string) error
	AddSharedView(viewName, viewTransformName, colorSpaceOrUseDisplayName, looks, rule, description string)
	RemoveDisplayView(display, view string)
	Displays() map[string][]ViewBinding

	// SetDisplayColorSpace records which color space a display's own name
	// stands for, resolving the "<USE_DISPLAY_NAME>" sentinel on a shared
	// view bound to that display.
	SetDisplayColorSpace(display, colorSpaceName string)
	GetDisplayColorSpace(display string) (string, bool)

	SetRole(role, colorSpaceName string)
	SetFileRules(rules FileRules)
	FileRules() FileRules

	SetVersion(major, minor int)
	SetActiveDisplays(names string)
	SetActiveViews(names string)
	SetInactiveColorSpaces(names string)

	AddSearchPath(path string)
	SearchPaths() []string

	AddEnvironmentVar(key, value string)
	EnvironmentVar(key string) (string, bool)
	EnvironmentVars() map[string]string

	Validate() error
}

type envVar struct{ Key, Value string }

// Config is the concrete implementation of both ReadOnlyConfig and
// EditableConfig. The zero value is not usable; construct one with
// CreateRaw, CreateFromBuiltin, or CreateFromFile.
type Config struct {
	version Version

	colorSpaces      []*ColorSpace
	colorSpaceByName map[string]int

	viewTransforms      []*ViewTransform
	viewTransformByName map[string]int

	looks      []*Look
	lookByName map[string]int

	namedTransforms []*NamedTransform

	roleOrder []string
	roles     map[string]string

	fileRules FileRules

	displayOrder []string
	displays     map[string][]ViewBinding
	sharedViews  map[string]*SharedView

	activeDisplays []string
	activeViews    []string
	inactive       []string

	searchPaths []string

	envOrder []string
	env      map[string]string

	displayColorSpace map[string]string
}

func newConfig() *Config {
	return &Config{
		colorSpaceByName:    map[string]int{},
		viewTransformByName: map[string]int{},
		lookByName:          map[string]int{},
		roles:               map[string]string{},
		displays:            map[string][]ViewBinding{},
		sharedViews:         map[string]*SharedView{},
		env:                 map[string]string{},
		displayColorSpace:   map[string]string{},
	}
}

// CreateRaw returns a minimal editable config seeded the way OCIO's
// "raw" factory config is: one color space ("Raw"), one display ("sRGB")
// with one view ("Raw") bound to it, and version 1.0. Callers building an
// AMF config strip the parts they don't want (see amf.Compile).
func CreateRaw() EditableConfig {
	c := newConfig()
	c.version = Version{Major: 1, Minor: 0}
	c.AddColorSpace(&ColorSpace{Name: "Raw", Family: "Raw", Description: "Raw, unconverted data."})
	c.AddDisplayView("sRGB", "Raw", "Raw", "")
	c.SetActiveDisplays("sRGB")
	c.SetActiveViews("Raw")
	return c
}

// CreateEditableCopy returns an independent copy of c. Color spaces,
// looks, view transforms, and named transforms are shared by reference
// with the source (OCIO's own semantics: importing an object does not
// clone it), but the config's own bookkeeping (roles, displays, active
// lists, search paths, env vars) is copied so mutating the copy never
// affects c.
func (c *Config) CreateEditableCopy() EditableConfig {
	clone := newConfig()
	clone.version = c.version

	clone.colorSpaces = append([]*ColorSpace(nil), c.colorSpaces...)
	for k, v := range c.colorSpaceByName {
		clone.colorSpaceByName[k] = v
	}
	clone.viewTransforms = append([]*ViewTransform(nil), c.viewTransforms...)
	for k, v := range c.viewTransformByName {
		clone.viewTransformByName[k] = v
	}
	clone.looks = append([]*Look(nil), c.looks...)
	for k, v := range c.lookByName {
		clone.lookByName[k] = v
	}
	clone.namedTransforms = append([]*NamedTransform(nil), c.namedTransforms...)

	clone.roleOrder = append([]string(nil), c.roleOrder...)
	for k, v := range c.roles {
		clone.roles[k] = v
	}
	clone.fileRules = c.fileRules

	clone.displayOrder = append([]string(nil), c.displayOrder...)
	for k, v := range c.displays {
		clone.displays[k] = append([]ViewBinding(nil), v...)
	}
	for k, v := range c.sharedViews {
		sv := *v
		clone.sharedViews[k] = &sv
	}
	for k, v := range c.displayColorSpace {
		clone.displayColorSpace[k] = v
	}

	clone.activeDisplays = append([]string(nil), c.activeDisplays...)
	clone.activeViews = append([]string(nil), c.activeViews...)
	clone.inactive = append([]string(nil), c.inactive...)
	clone.searchPaths = append([]string(nil), c.searchPaths...)

	clone.envOrder = append([]string(nil), c.envOrder...)
	for k, v := range c.env {
		clone.env[k] = v
	}
	return clone
}

func (c *Config) Version() Version { return c.version }

func (c *Config) SetVersion(major, minor int) {
	c.version = Version{Major: major, Minor: minor}
}

func (c *Config) NumColorSpaces() int { return len(c.colorSpaces) }

func (c *Config) GetColorSpaceNameByIndex(i int) (string, bool) {
	if i < 0 || i >= len(c.colorSpaces) {
		return "", false
	}
	return c.colorSpaces[i].Name, true
}

func (c *Config) GetColorSpace(name string) (*ColorSpace, bool) {
	idx, ok := c.colorSpaceByName[name]
	if !ok {
		return nil, false
	}
	return c.colorSpaces[idx], true
}

func (c *Config) AddColorSpace(cs *ColorSpace) {
	if idx, ok := c.colorSpaceByName[cs.Name]; ok {
		c.colorSpaces[idx] = cs
		return
	}
	c.colorSpaceByName[cs.Name] = len(c.colorSpaces)
	c.colorSpaces = append(c.colorSpaces, cs)
}

func (c *Config) RemoveColorSpace(name string) {
	idx, ok := c.colorSpaceByName[name]
	if !ok {
		return
	}
	c.colorSpaces = append(c.colorSpaces[:idx], c.colorSpaces[idx+1:]...)
	delete(c.colorSpaceByName, name)
	for n, i := range c.colorSpaceByName {
		if i > idx {
			c.colorSpaceByName[n] = i - 1
		}
	}
}

func (c *Config) NumViewTransforms() int { return len(c.viewTransforms) }

func (c *Config) GetViewTransformNameByIndex(i int) (string, bool) {
	if i < 0 || i >= len(c.viewTransforms) {
		return "", false
	}
	return c.viewTransforms[i].Name, true
}

func (c *Config) GetViewTransform(name string) (*ViewTransform, bool) {
	idx, ok := c.viewTransformByName[name]
	if !ok {
		return nil, false
	}
	return c.viewTransforms[idx], true
}

func (c *Config) AddViewTransform(vt *ViewTransform) {
	if idx, ok := c.viewTransformByName[vt.Name]; ok {
		c.viewTransforms[idx] = vt
		return
	}
	c.viewTransformByName[vt.Name] = len(c.viewTransforms)
	c.viewTransforms = append(c.viewTransforms, vt)
}

func (c *Config) NumLooks() int { return len(c.looks) }

func (c *Config) GetLookNameByIndex(i int) (string, bool) {
	if i < 0 || i >= len(c.looks) {
		return "", false
	}
	return c.looks[i].Name, true
}

func (c *Config) GetLook(name string) (*Look, bool) {
	idx, ok := c.lookByName[name]
	if !ok {
		return nil, false
	}
	return c.looks[idx], true
}

func (c *Config) AddLook(lk *Look) {
	if idx, ok := c.lookByName[lk.Name]; ok {
		c.looks[idx] = lk
		return
	}
	c.lookByName[lk.Name] = len(c.looks)
	c.looks = append(c.looks, lk)
}

func (c *Config) AddNamedTransform(nt *NamedTransform) {
	c.namedTransforms = append(c.namedTransforms, nt)
}

func (c *Config) NamedTransforms() []*NamedTransform {
	return c.namedTransforms
}

func (c *Config) NumRoles() int { return len(c.roleOrder) }

func (c *Config) GetRoleNameByIndex(i int) (string, bool) {
	if i < 0 || i >= len(c.roleOrder) {
		return "", false
	}
	return c.roleOrder[i], true
}

func (c *Config) GetRole(name string) (string, bool) {
	v, ok := c.roles[name]
	return v, ok
}

// SetRole registers role -> colorSpaceName. An empty colorSpaceName
// registers the role as present-but-unset (OCIO's NULL default role).
func (c *Config) SetRole(role, colorSpaceName string) {
	if _, exists := c.roles[role]; !exists {
		c.roleOrder = append(c.roleOrder, role)
	}
	c.roles[role] = colorSpaceName
}

func (c *Config) SetFileRules(rules FileRules) { c.fileRules = rules }
func (c *Config) FileRules() FileRules         { return c.fileRules }

func (c *Config) AddDisplayView(display, view, colorSpace, looks string) {
	if _, ok := c.displays[display]; !ok {
		c.displayOrder = append(c.displayOrder, display)
	}
	c.displays[display] = append(c.displays[display], ViewBinding{
		ViewName:   view,
		ColorSpace: colorSpace,
		Looks:      looks,
	})
}

func (c *Config) AddSharedView(viewName, viewTransformName, colorSpaceOrUseDisplayName, looks, rule, description string) {
	c.sharedViews[viewName] = &SharedView{
		Name:                       viewName,
		ViewTransformName:          viewTransformName,
		ColorSpaceOrUseDisplayName: colorSpaceOrUseDisplayName,
		Looks:                      looks,
		Rule:                       rule,
		Description:                description,
	}
}

func (c *Config) AddDisplaySharedView(display, viewName string) error {
	if _, ok := c.sharedViews[viewName]; !ok {
		return fmt.Errorf("shared view %q is not registered", viewName)
	}
	for _, vb := range c.displays[display] {
		if vb.Shared && vb.ViewName == viewName {
			return nil // already bound; guard against duplicate registration
		}
	}
	if _, ok := c.displays[display]; !ok {
		c.displayOrder = append(c.displayOrder, display)
	}
	c.displays[display] = append(c.displays[display], ViewBinding{ViewName: viewName, Shared: true})
	return nil
}

func (c *Config) RemoveDisplayView(display, view string) {
	views := c.displays[display]
	for i, vb := range views {
		if vb.ViewName == view {
			c.displays[display] = append(views[:i], views[i+1:]...)
			return
		}
	}
}

func (c *Config) Displays() map[string][]ViewBinding { return c.displays }

func (c *Config) SetDisplayColorSpace(display, colorSpaceName string) {
	c.displayColorSpace[display] = colorSpaceName
}

func (c *Config) GetDisplayColorSpace(display string) (string, bool) {
	v, ok := c.displayColorSpace[display]
	return v, ok
}

func (c *Config) SetActiveDisplays(names string) { c.activeDisplays = splitCSV(names) }
func (c *Config) SetActiveViews(names string)    { c.activeViews = splitCSV(names) }
func (c *Config) SetInactiveColorSpaces(names string) { c.inactive = splitCSV(names) }

func (c *Config) ActiveDisplays() string     { return strings.Join(c.activeDisplays, ", ") }
func (c *Config) ActiveViews() string        { return strings.Join(c.activeViews, ", ") }
func (c *Config) InactiveColorSpaces() string { return strings.Join(c.inactive, ", ") }

func (c *Config) AddSearchPath(path string) {
	c.searchPaths = append(c.searchPaths, path)
}

func (c *Config) SearchPaths() []string { return c.searchPaths }

func (c *Config) AddEnvironmentVar(key, value string) {
	if _, ok := c.env[key]; !ok {
		c.envOrder = append(c.envOrder, key)
	}
	c.env[key] = value
}

func (c *Config) EnvironmentVar(key string) (string, bool) {
	v, ok := c.env[key]
	return v, ok
}

func (c *Config) EnvironmentVars() map[string]string {
	out := make(map[string]string, len(c.env))
	for k, v := range c.env {
		out[k] = v
	}
	return out
}

// Validate checks Invariant 1 from the specification: every color space
// referenced by any transform inside the config must also be a color
// space the config declares.
func (c *Config) Validate() error {
	var missing []string
	seen := map[string]bool{}

	check := func(t Transform) {
		for _, name := range ReferencedColorSpaces(t) {
			if _, ok := c.colorSpaceByName[name]; !ok && !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
		}
	}

	for _, cs := range c.colorSpaces {
		check(cs.ToReference)
		check(cs.FromReference)
	}
	for _, lk := range c.looks {
		check(lk.Transform)
		check(lk.InverseTransform)
	}
	for _, nt := range c.namedTransforms {
		check(nt.Forward)
	}

	if len(missing) > 0 {
		return fmt.Errorf("config references undeclared color space(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
