package game

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned when physics tuning values are out of range.
var ErrInvalidParams = errors.New("invalid physics params")

// Params holds the tuning constants of the physics step and the shot applier.
type Params struct {
	FrictionFactor      float64 `json:"friction_factor"`
	SnapThreshold       float64 `json:"snap_threshold"`
	ImpulseScale        float64 `json:"impulse_scale"`
	MaxPower            float64 `json:"max_power"`
	CaptureBallFraction float64 `json:"capture_ball_fraction"`
}

// DefaultParams returns the tuning used by the browser table.
func DefaultParams() Params {
	return Params{
		FrictionFactor:      FrictionFactor,
		SnapThreshold:       SnapThreshold,
		ImpulseScale:        ImpulseScale,
		MaxPower:            MaxPower,
		CaptureBallFraction: CaptureBallFraction,
	}
}

// Validate checks that every value keeps the step stable.
func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"friction_factor":       p.FrictionFactor,
		"snap_threshold":        p.SnapThreshold,
		"impulse_scale":         p.ImpulseScale,
		"max_power":             p.MaxPower,
		"capture_ball_fraction": p.CaptureBallFraction,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, name)
		}
	}
	// Without decay below 1 and a positive snap the table never comes to rest.
	if p.FrictionFactor < MinFrictionFactor || p.FrictionFactor >= 1 {
		return fmt.Errorf("%w: friction_factor must be in [%v,1), got %v", ErrInvalidParams, MinFrictionFactor, p.FrictionFactor)
	}
	if p.SnapThreshold <= 0 {
		return fmt.Errorf("%w: snap_threshold must be positive, got %v", ErrInvalidParams, p.SnapThreshold)
	}
	if p.ImpulseScale <= 0 || p.MaxPower <= 0 {
		return fmt.Errorf("%w: impulse_scale and max_power must be positive", ErrInvalidParams)
	}
	if p.CaptureBallFraction < 0 || p.CaptureBallFraction > 1 {
		return fmt.Errorf("%w: capture_ball_fraction must be in [0,1]", ErrInvalidParams)
	}
	return nil
}
