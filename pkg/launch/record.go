// Package launch holds the launch record model and the immutable table the
// dashboard computes its views from.
package launch

import (
	"errors"
	"fmt"
	"math"
)

// AllSites - значение выбора, означающее «все площадки»
const AllSites = "ALL"

// Outcome is the binary result of a launch attempt.
type Outcome int

const (
	Failure Outcome = 0
	Success Outcome = 1
)

func (o Outcome) String() string {
	if o == Success {
		return "1"
	}
	return "0"
}

// Valid reports whether o is one of the two defined outcome classes.
func (o Outcome) Valid() bool {
	return o == Failure || o == Success
}

// Record - одна попытка запуска
type Record struct {
	Site           string  `json:"site"`
	Class          Outcome `json:"class"`
	PayloadMass    float64 `json:"payload_mass"`
	BoosterVersion string  `json:"booster_version_category"`
}

// ErrInvalidRecord is wrapped by every record validation failure.
var ErrInvalidRecord = errors.New("invalid launch record")

// Validate checks the record against the data model constraints.
func (r Record) Validate() error {
	if r.Site == "" {
		return fmt.Errorf("%w: empty launch site", ErrInvalidRecord)
	}
	if !r.Class.Valid() {
		return fmt.Errorf("%w: class %d is not 0 or 1", ErrInvalidRecord, int(r.Class))
	}
	if math.IsNaN(r.PayloadMass) || math.IsInf(r.PayloadMass, 0) {
		return fmt.Errorf("%w: payload mass is not a finite number", ErrInvalidRecord)
	}
	if r.PayloadMass < 0 {
		return fmt.Errorf("%w: negative payload mass %g", ErrInvalidRecord, r.PayloadMass)
	}
	return nil
}

// PayloadRange is an inclusive payload mass interval in kilograms.
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether Low <= mass <= High.
// A range with Low > High contains nothing.
func (r PayloadRange) Contains(mass float64) bool {
	return mass >= r.Low && mass <= r.High
}

func (r PayloadRange) String() string {
	return fmt.Sprintf("[%g, %g]", r.Low, r.High)
}
