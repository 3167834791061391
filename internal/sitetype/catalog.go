// Package sitetype maps a candidate site's declared type to the study area and
// analysis variables used to enrich it.
package sitetype

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sitecompare/pkg/types"
)

// Area types understood by the enrichment service.
const (
	AreaNetworkService = "NetworkServiceArea"
	AreaRingBuffer     = "RingBuffer"
)

// DefaultType is used when a feature carries no site type.
const DefaultType = "Retail"

// Profile is everything the enrichment step needs for one site type.
type Profile struct {
	SiteType  string
	StudyArea types.StudyAreaOptions
	Variables []types.AnalysisVariable
	// VariableIDs are the Field values of Variables, in order.
	VariableIDs []string
}

type unknownTypeError struct{ name string }

func (e unknownTypeError) Error() string { return "unknown site type: " + e.name }

// IsUnknownType reports whether err was returned for a type missing from the catalog.
func IsUnknownType(err error) bool {
	_, ok := err.(unknownTypeError)
	return ok
}

// Catalog holds the study areas per type and the shared variable list.
type Catalog struct {
	Order      []string                          `json:"order" yaml:"order"`
	StudyAreas map[string]types.StudyAreaOptions `json:"study_areas" yaml:"study_areas"`
	Variables  []types.AnalysisVariable          `json:"variables" yaml:"variables"`
}

// Types returns the type names in display order.
func (c *Catalog) Types() []string {
	if len(c.Order) > 0 {
		return append([]string(nil), c.Order...)
	}
	out := make([]string, 0, len(c.StudyAreas))
	for name := range c.StudyAreas {
		out = append(out, name)
	}
	return out
}

// Profile resolves siteType. An empty name resolves to DefaultType.
func (c *Catalog) Profile(siteType string) (Profile, error) {
	if strings.TrimSpace(siteType) == "" {
		siteType = DefaultType
	}
	sa, ok := c.StudyAreas[siteType]
	if !ok {
		return Profile{}, unknownTypeError{name: siteType}
	}
	p := Profile{SiteType: siteType, StudyArea: sa}
	for _, v := range c.Variables {
		if !appliesTo(v, siteType) {
			continue
		}
		p.Variables = append(p.Variables, v)
		p.VariableIDs = append(p.VariableIDs, v.Field)
	}
	return p, nil
}

// Info returns the wire view of every type.
func (c *Catalog) Info() []types.SiteTypeInfo {
	names := c.Types()
	out := make([]types.SiteTypeInfo, 0, len(names))
	for _, name := range names {
		p, err := c.Profile(name)
		if err != nil {
			continue
		}
		out = append(out, types.SiteTypeInfo{Name: name, StudyArea: p.StudyArea, Variables: p.Variables})
	}
	return out
}

func appliesTo(v types.AnalysisVariable, siteType string) bool {
	for _, t := range v.Types {
		if t == siteType {
			return true
		}
	}
	return false
}

// Validate checks that every variable references a known type and format.
func (c *Catalog) Validate() error {
	if len(c.StudyAreas) == 0 {
		return fmt.Errorf("catalog has no study areas")
	}
	for name, sa := range c.StudyAreas {
		if sa.AreaType != AreaNetworkService && sa.AreaType != AreaRingBuffer {
			return fmt.Errorf("site type %s: unsupported area type %q", name, sa.AreaType)
		}
		if len(sa.BufferRadii) == 0 {
			return fmt.Errorf("site type %s: no buffer radii", name)
		}
	}
	for _, v := range c.Variables {
		if !strings.Contains(v.Field, ".") {
			return fmt.Errorf("variable %s: field %q is not <collection>.<variable>", v.Label, v.Field)
		}
		switch v.Format {
		case "count", "rate", "money", "none":
		default:
			return fmt.Errorf("variable %s: unsupported format %q", v.Label, v.Format)
		}
		for _, t := range v.Types {
			if _, ok := c.StudyAreas[t]; !ok {
				return fmt.Errorf("variable %s: %w", v.Label, unknownTypeError{name: t})
			}
		}
	}
	return nil
}

// Load reads a catalog file (.yaml/.yml or .json). An empty path returns Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse site types: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse site types: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported site types extension: %s", ext)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
