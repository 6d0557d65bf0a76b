// Package simulation serves the catalogue of legal scenarios and tracks the
// one simulation run a session can have at a time.
package simulation

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrUnknownScenario is returned for an id that is not in the catalogue.
var ErrUnknownScenario = errors.New("unknown scenario")

//go:embed scenarios/catalogue.yaml
var catalogueYAML []byte

// Outcomes are the best, worst and most likely results of a scenario.
type Outcomes struct {
	Best   string `yaml:"best" json:"best"`
	Worst  string `yaml:"worst" json:"worst"`
	Likely string `yaml:"likely" json:"likely"`
}

// Scenario is one simulated legal situation.
type Scenario struct {
	ID           string   `yaml:"id" json:"id"`
	Title        string   `yaml:"title" json:"title"`
	Description  string   `yaml:"description" json:"description"`
	Category     string   `yaml:"category" json:"category"`
	Complexity   string   `yaml:"complexity" json:"complexity"`
	Duration     string   `yaml:"duration" json:"duration"`
	Participants []string `yaml:"participants" json:"participants"`
	Outcomes     Outcomes `yaml:"outcomes" json:"outcomes"`
}

// Catalogue is an ordered set of scenarios.
type Catalogue struct {
	scenarios []Scenario
}

// DefaultCatalogue returns the built-in scenarios.
func DefaultCatalogue() *Catalogue {
	c, err := ParseCatalogue(catalogueYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in scenario catalogue is invalid: %v", err))
	}
	return c
}

// ParseCatalogue decodes a YAML list of scenarios. Ids must be unique and non-empty.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var scenarios []Scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("failed to parse scenario catalogue: %w", err)
	}
	seen := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		if s.ID == "" {
			return nil, fmt.Errorf("scenario %q has no id", s.Title)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return &Catalogue{scenarios: scenarios}, nil
}

// List returns the scenarios in display order.
func (c *Catalogue) List() []Scenario {
	return slices.Clone(c.scenarios)
}

// Get returns the scenario with id.
func (c *Catalogue) Get(id string) (Scenario, error) {
	i := slices.IndexFunc(c.scenarios, func(s Scenario) bool { return s.ID == id })
	if i < 0 {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}
	return c.scenarios[i], nil
}
