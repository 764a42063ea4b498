package game

// Physics and table defaults. Distances are in table units (canvas pixels in
// the browser renderer), time is one tick.

const (
	BallRadius          = 11.0
	PocketRadius        = 26.0
	FrictionFactor      = 0.992
	MinFrictionFactor   = 0.9 // lower bound accepted from config
	SnapThreshold       = 0.01
	ImpulseScale        = 0.32
	MaxPower            = 36.0
	CaptureBallFraction = 0.4
	AimBallMargin       = 4.0
	maxRelaxPasses      = 256
	overlapTolerance    = 1e-9
	NumBalls            = 16 // 0=cue, 1-7=solids, 8=eight, 9-15=stripes

	// Rack layout, as fractions of the table width.
	RackBaseFraction  = 0.66
	CueStartFraction  = 0.22
	RackRowStepFactor = 0.88 // row-to-row step relative to one ball diameter

	DefaultTableX      = 28.0
	DefaultTableY      = 28.0
	DefaultTableWidth  = 880.0
	DefaultTableHeight = 440.0
	DefaultTickRate    = 60
)

// CapturedPosition is the off-table sentinel a pocketed ball is parked at.
var CapturedPosition = Vec2{X: -1000, Y: -1000}
