package selection

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Policy names a preset of Weights.
type Policy string

const (
	// PolicyRefined is the current default: CURRENT ×5, related-completed ×2.
	PolicyRefined Policy = "refined"
	// PolicyLegacy reproduces the first weighting: CURRENT ×2, related-completed ×1.5.
	PolicyLegacy Policy = "legacy"
)

// Weights holds every tunable of the weighting policy.
//
// The global cap has drifted between revisions (a 0.1 cap, and a 0.15 ceiling
// that was clamped back to 0.1); GlobalCap defaults to 0.1 so a global
// candidate never outweighs the base.
type Weights struct {
	CurrentBoost     float64 `yaml:"current_boost" validate:"gte=0"`
	SequelBoost      float64 `yaml:"sequel_boost" validate:"gte=0"`
	GlobalBase       float64 `yaml:"global_base" validate:"gt=0"`
	OverlapIncrement float64 `yaml:"overlap_increment" validate:"gte=0"`
	GlobalCap        float64 `yaml:"global_cap" validate:"gtefield=GlobalBase"`
	DiscoveryWeight  float64 `yaml:"discovery_weight" validate:"gt=0"`
}

// DefaultWeights returns the refined policy.
func DefaultWeights() Weights {
	return Weights{
		CurrentBoost:     5,
		SequelBoost:      2,
		GlobalBase:       0.1,
		OverlapIncrement: 0.02,
		GlobalCap:        0.1,
		DiscoveryWeight:  1,
	}
}

// LegacyWeights returns the earlier policy.
func LegacyWeights() Weights {
	w := DefaultWeights()
	w.CurrentBoost = 2
	w.SequelBoost = 1.5
	return w
}

// WeightsFor resolves a policy name; an empty name means refined.
func WeightsFor(p Policy) (Weights, error) {
	switch p {
	case "", PolicyRefined:
		return DefaultWeights(), nil
	case PolicyLegacy:
		return LegacyWeights(), nil
	}
	return Weights{}, fmt.Errorf("unknown weighting policy %q", p)
}

// Merge overrides every non-zero field of o onto w.
func (w Weights) Merge(o Weights) Weights {
	if o.CurrentBoost != 0 {
		w.CurrentBoost = o.CurrentBoost
	}
	if o.SequelBoost != 0 {
		w.SequelBoost = o.SequelBoost
	}
	if o.GlobalBase != 0 {
		w.GlobalBase = o.GlobalBase
	}
	if o.OverlapIncrement != 0 {
		w.OverlapIncrement = o.OverlapIncrement
	}
	if o.GlobalCap != 0 {
		w.GlobalCap = o.GlobalCap
	}
	if o.DiscoveryWeight != 0 {
		w.DiscoveryWeight = o.DiscoveryWeight
	}
	return w
}

var validate = validator.New()

// Validate rejects negative factors and a cap below the global base.
func (w Weights) Validate() error {
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	return nil
}
