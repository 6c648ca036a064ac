// Package names handles the region-name keys shared by the outlet,
// population and boundary datasets. Joins stay exact; this package only
// applies an explicitly configured alias table and reports likely mismatches.
package names

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Aliases renames keys at ingestion. Each map goes from the spelling used in
// that dataset to the spelling used in the outlet table.
type Aliases struct {
	Population map[string]string `yaml:"population"`
	Boundaries map[string]string `yaml:"boundaries"`
}

// LoadAliases reads an alias table. An empty path yields no aliases.
func LoadAliases(path string) (Aliases, error) {
	if path == "" {
		return Aliases{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Aliases{}, eris.Wrap(err, "names: read alias file")
	}
	var a Aliases
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Aliases{}, eris.Wrap(err, "names: parse alias file")
	}
	return a, nil
}

// PopulationName maps a population-table district name.
func (a Aliases) PopulationName(name string) string {
	return lookup(a.Population, name)
}

// BoundaryName maps a boundary-dataset region name.
func (a Aliases) BoundaryName(name string) string {
	return lookup(a.Boundaries, name)
}

// Len returns the number of configured aliases.
func (a Aliases) Len() int {
	return len(a.Population) + len(a.Boundaries)
}

func lookup(m map[string]string, name string) string {
	if to, ok := m[name]; ok {
		return to
	}
	return name
}
