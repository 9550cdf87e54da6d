package ocio

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var builtinConfigs embed.FS

// builtinNames maps the short name a caller passes to CreateFromBuiltin to
// the embedded fixture that backs it.
var builtinNames = map[string]string{
	"studio-config-v2.1.0_aces-v1.3_ocio-v2.3": "testdata/studio-config.yaml",
	"legacy-config-v2.1":                       "testdata/legacy-config.yaml",
}

// CreateFromBuiltin loads one of the fixtures shipped inside this package.
// "studio-config-v2.1.0_aces-v1.3_ocio-v2.3" is the default reference
// config an AMF compile falls back to when no explicit reference-config
// path is given; "legacy-config-v2.1" exists only to exercise the minimum
// supported version check.
func CreateFromBuiltin(name string) (ReadOnlyConfig, error) {
	path, ok := builtinNames[name]
	if !ok {
		return nil, fmt.Errorf("ocio: no builtin config named %q", name)
	}
	data, err := builtinConfigs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ocio: reading builtin config %q: %w", name, err)
	}
	return parseYAMLConfig(data)
}

// CreateFromFile loads a reference config from a YAML file on disk, in the
// same schema as the embedded fixtures.
func CreateFromFile(path string) (ReadOnlyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ocio: reading config %q: %w", path, err)
	}
	return parseYAMLConfig(data)
}

type yamlVersion struct {
	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
}

type yamlTransformRef struct {
	Type string `yaml:"type"`
	Src  string `yaml:"src"`
	Dst  string `yaml:"dst"`
}

type yamlColorSpace struct {
	Name        string            `yaml:"name"`
	Family      string            `yaml:"family"`
	Description string            `yaml:"description"`
	Categories  []string          `yaml:"categories"`
	ToReference *yamlTransformRef `yaml:"toReference"`
}

type yamlViewTransform struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type yamlViewBinding struct {
	View          string `yaml:"view"`
	ViewTransform string `yaml:"viewTransform"`
	ColorSpace    string `yaml:"colorSpace"`
}

type yamlLook struct {
	Name         string `yaml:"name"`
	ProcessSpace string `yaml:"processSpace"`
	Description  string `yaml:"description"`
}

type yamlConfig struct {
	Version             yamlVersion                  `yaml:"version"`
	Roles                map[string]string            `yaml:"roles"`
	ColorSpaces          []yamlColorSpace             `yaml:"colorSpaces"`
	ViewTransforms       []yamlViewTransform          `yaml:"viewTransforms"`
	Displays             map[string][]yamlViewBinding `yaml:"displays"`
	DisplayColorSpaces   map[string]string            `yaml:"displayColorSpaces"`
	Looks                []yamlLook                   `yaml:"looks"`
	ActiveDisplays       string                       `yaml:"activeDisplays"`
	ActiveViews          string                       `yaml:"activeViews"`
	SearchPaths          []string                     `yaml:"searchPaths"`
}

func parseYAMLConfig(data []byte) (*Config, error) {
	var doc yamlConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ocio: parsing config: %w", err)
	}

	c := newConfig()
	c.version = Version{Major: doc.Version.Major, Minor: doc.Version.Minor}

	for _, cs := range doc.ColorSpaces {
		entry := &ColorSpace{
			Name:        cs.Name,
			Family:      cs.Family,
			Description: cs.Description,
			Categories:  append([]string(nil), cs.Categories...),
		}
		if ref := cs.ToReference; ref != nil && ref.Type == "colorSpace" {
			entry.ToReference = &ColorSpaceTransform{Src: ref.Src, Dst: ref.Dst}
		}
		c.AddColorSpace(entry)
	}

	for _, vt := range doc.ViewTransforms {
		c.AddViewTransform(&ViewTransform{Name: vt.Name, Description: vt.Description})
	}

	for _, lk := range doc.Looks {
		c.AddLook(&Look{Name: lk.Name, ProcessSpace: lk.ProcessSpace, Description: lk.Description})
	}

	for role, csName := range doc.Roles {
		c.SetRole(role, csName)
	}

	for display, views := range doc.Displays {
		for _, vb := range views {
			if vb.ViewTransform != "" {
				viewName := vb.View
				c.AddSharedView(viewName, vb.ViewTransform, vb.ColorSpace, "", "", "")
				if err := c.AddDisplaySharedView(display, viewName); err != nil {
					return nil, fmt.Errorf("ocio: wiring shared view %q for display %q: %w", viewName, display, err)
				}
				continue
			}
			c.AddDisplayView(display, vb.View, vb.ColorSpace, "")
		}
	}

	// displayColorSpaces resolves the "<USE_DISPLAY_NAME>" sentinel used by
	// shared views: it records which color space a display's name stands
	// for, separate from the display's own view bindings.
	for display, csName := range doc.DisplayColorSpaces {
		c.SetDisplayColorSpace(display, csName)
	}

	c.SetActiveDisplays(doc.ActiveDisplays)
	c.SetActiveViews(doc.ActiveViews)
	c.searchPaths = append(c.searchPaths, doc.SearchPaths...)

	return c, nil
}
