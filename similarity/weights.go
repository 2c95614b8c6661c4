package similarity

import (
	"errors"
	"math"
)

// MissingImagePolicy selects how Composite treats a pair where at least one
// side has no image embedding.
type MissingImagePolicy int

const (
	// RenormalizeWeights redistributes the image weight across the name and
	// description components, so photo-less pairs are not under-scored.
	RenormalizeWeights MissingImagePolicy = iota
	// ZeroWeightMissing keeps the original weights and scores the image
	// component as zero. Retained for parity with older scoring runs.
	ZeroWeightMissing
)

// ErrInvalidWeights indicates component weights that do not sum to 1.0.
var ErrInvalidWeights = errors.New("similarity weights must sum to 1.0")

const weightSumTolerance = 1e-6

// Components holds the per-signal similarity values for one listing pair,
// each in [0,1]. HasImage is false when either side lacks an image
// embedding; Image is ignored in that case.
type Components struct {
	Name        float64
	Description float64
	Image       float64
	HasImage    bool
}

// Weights configures the composite similarity score.
type Weights struct {
	Name        float64
	Description float64
	Image       float64
	// MissingImage selects the policy applied when a pair has no image
	// signal. The zero value is RenormalizeWeights.
	MissingImage MissingImagePolicy
}

// DefaultWeights returns the default composite weighting.
func DefaultWeights() Weights {
	return Weights{Name: 0.4, Description: 0.3, Image: 0.3}
}

// Validate checks that the weights are non-negative and sum to 1.0.
func (w Weights) Validate() error {
	if w.Name < 0 || w.Description < 0 || w.Image < 0 {
		return ErrInvalidWeights
	}
	if math.Abs(w.Name+w.Description+w.Image-1.0) > weightSumTolerance {
		return ErrInvalidWeights
	}
	return nil
}

// Composite combines the component similarities into one score in [0,1].
// The function is symmetric in its inputs because every component is.
//
// When the image component is unavailable and the policy is
// RenormalizeWeights, the name and description weights are scaled to sum to
// 1.0 rather than scoring the missing signal as zero with full weight.
func (w Weights) Composite(c Components) float64 {
	if !c.HasImage {
		switch w.MissingImage {
		case ZeroWeightMissing:
			return clamp01(w.Name*c.Name + w.Description*c.Description)
		default:
			remaining := w.Name + w.Description
			if remaining <= 0 {
				return 0.0
			}
			return clamp01((w.Name*c.Name + w.Description*c.Description) / remaining)
		}
	}
	return clamp01(w.Name*c.Name + w.Description*c.Description + w.Image*c.Image)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0.0
	}
	if v > 1 {
		return 1.0
	}
	return v
}
