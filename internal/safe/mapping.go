package safe

import (
	"embed"
	"fmt"
	"os"
	"path"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultMappingName is the mapping used when none is configured.
const DefaultMappingName = "yc-safe-post-money-v1.2"

//go:embed templates/*.yaml
var builtinMappings embed.FS

// Mapping ties one template revision to the form keys it can hold. A key maps
// either to an exact interactive form field name or to an overlay position.
type Mapping struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	// PageCount pins the expected page count of the template. Zero disables the check.
	PageCount int               `yaml:"pageCount" json:"pageCount,omitempty"`
	Fields    map[string]string `yaml:"fields" json:"fields,omitempty"`
	Overlay   []Overlay         `yaml:"overlay" json:"overlay,omitempty"`
}

// Overlay places one form value on a page. X and Y are offsets in points from
// the top-left corner.
type Overlay struct {
	Key  string  `yaml:"key" json:"key"`
	Page int     `yaml:"page" json:"page"`
	X    float64 `yaml:"x" json:"x"`
	Y    float64 `yaml:"y" json:"y"`
	Size float64 `yaml:"size" json:"size"`
}

// ParseMapping decodes and validates a YAML mapping.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse template mapping: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadMapping reads a mapping from a YAML file.
func LoadMapping(filename string) (*Mapping, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read template mapping %s: %w", filename, err)
	}
	return ParseMapping(data)
}

// BuiltinMapping returns one of the mappings compiled into the binary.
func BuiltinMapping(name string) (*Mapping, error) {
	data, err := builtinMappings.ReadFile(path.Join("templates", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown template mapping %q", name)
	}
	return ParseMapping(data)
}

// BuiltinMappingNames lists the compiled-in mappings.
func BuiltinMappingNames() []string {
	entries, _ := builtinMappings.ReadDir("templates")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name()[:len(e.Name())-len(path.Ext(e.Name()))])
	}
	sort.Strings(names)
	return names
}

// FieldNames returns the mapped form field names, sorted.
func (m *Mapping) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for _, n := range m.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *Mapping) validate() error {
	if m.Name == "" {
		return fmt.Errorf("template mapping has no name")
	}
	if len(m.Fields) == 0 && len(m.Overlay) == 0 {
		return fmt.Errorf("template mapping %s maps no fields", m.Name)
	}
	if m.PageCount < 0 {
		return fmt.Errorf("template mapping %s: negative pageCount", m.Name)
	}
	seen := make(map[string]string, len(m.Fields))
	for key, field := range m.Fields {
		if !slices.Contains(Keys, key) {
			return fmt.Errorf("template mapping %s: unknown form key %q", m.Name, key)
		}
		if field == "" {
			return fmt.Errorf("template mapping %s: empty field name for %q", m.Name, key)
		}
		if other, dup := seen[field]; dup {
			return fmt.Errorf("template mapping %s: field %q mapped from both %q and %q", m.Name, field, other, key)
		}
		seen[field] = key
	}
	for i, o := range m.Overlay {
		if !slices.Contains(Keys, o.Key) {
			return fmt.Errorf("template mapping %s: overlay %d has unknown form key %q", m.Name, i, o.Key)
		}
		if o.Page < 1 {
			return fmt.Errorf("template mapping %s: overlay %q has page %d", m.Name, o.Key, o.Page)
		}
		if m.PageCount > 0 && o.Page > m.PageCount {
			return fmt.Errorf("template mapping %s: overlay %q on page %d beyond pageCount %d", m.Name, o.Key, o.Page, m.PageCount)
		}
		if o.Size <= 0 {
			m.Overlay[i].Size = 10
		}
	}
	return nil
}
