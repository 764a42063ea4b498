package game

// ShotParams is a shot request from the input layer. When Aim is set the
// angle is derived from the cue ball toward Aim and Angle is ignored.
type ShotParams struct {
	Angle float64 `json:"angle"` // radians
	Power float64 `json:"power"` // 0 < power <= MaxPower
	Aim   *Vec2   `json:"aim,omitempty"`
}

// ShotRecord describes an accepted shot.
type ShotRecord struct {
	Number int     `json:"number"`
	Tick   uint64  `json:"tick"`
	Angle  float64 `json:"angle"`
	Power  float64 `json:"power"`
}
