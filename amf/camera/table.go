// Package camera holds the fixed table of camera log color spaces and
// their scene-linear companions. AMF input-transform processing consults
// it after an input transformId has resolved to a camera log color space,
// so that the linear companion is imported alongside it.
package camera

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed camera.yaml
var defaultTableFile embed.FS

type mappingEntry struct {
	Log    string `yaml:"log"`
	Linear string `yaml:"linear"`
}

type mappingDoc struct {
	Mappings []mappingEntry `yaml:"mappings"`
}

// Table maps a camera log color space name to the scene-linear color
// space it decodes to.
type Table struct {
	byLog map[string]string
}

// Default returns the table embedded in this package: the eleven
// manufacturer log encodings AMF compilation recognizes out of the box.
func Default() (*Table, error) {
	data, err := defaultTableFile.ReadFile("camera.yaml")
	if err != nil {
		return nil, fmt.Errorf("camera: reading embedded table: %w", err)
	}
	return parse(data)
}

// Load returns the builtin table when path is empty, otherwise the table
// at path (same schema as the embedded default). This is the entry point
// amf.Compile uses so a caller can override the camera mapping without
// reaching into this package's lower-level loaders directly.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// LoadFile loads a table from a YAML file on disk in the same schema as
// the embedded default, for studios that maintain their own camera
// mapping outside this package.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("camera: reading %q: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Table, error) {
	var doc mappingDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("camera: parsing table: %w", err)
	}
	t := &Table{byLog: make(map[string]string, len(doc.Mappings))}
	for _, m := range doc.Mappings {
		t.byLog[m.Log] = m.Linear
	}
	return t, nil
}

// Linear returns the scene-linear color space paired with log, if any.
func (t *Table) Linear(log string) (string, bool) {
	v, ok := t.byLog[log]
	return v, ok
}

// Len reports how many mappings the table holds.
func (t *Table) Len() int { return len(t.byLog) }
