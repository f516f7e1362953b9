package records

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures is the demo data set.
type Fixtures struct {
	Reservations []Reservation     `yaml:"reservations"`
	Contracts    []PendingContract `yaml:"contracts"`
	Payments     []Payment         `yaml:"payments"`
	Credit       []CreditCase      `yaml:"credit"`
}

// LoadFixtures decodes the embedded demo data.
func LoadFixtures() (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return Fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return f, nil
}
