package rules

// Params holds every tunable weight and rate the evaluator and the search
// read. A parameter group swaps in a whole Params value; nothing mutates one
// while a cycle runs.
type Params struct {
	// Evaluation weights.
	BallGapWeight       float64 `json:"ball_gap_weight" yaml:"ball_gap_weight"`
	BlockAttackerWeight float64 `json:"block_attacker_weight" yaml:"block_attacker_weight"`
	TeammateGapWeight   float64 `json:"teammate_gap_weight" yaml:"teammate_gap_weight"`
	EnemyGapWeight      float64 `json:"enemy_gap_weight" yaml:"enemy_gap_weight"`
	PenalDistance       float64 `json:"penal_distance" yaml:"penal_distance"` // metres from the enemy goal
	PenalWeight         float64 `json:"penal_weight" yaml:"penal_weight"`
	TotalMoveWeight     float64 `json:"total_move_weight" yaml:"total_move_weight"`
	MaxMoveWeight       float64 `json:"max_move_weight" yaml:"max_move_weight"`
	MoveChangeWeight    float64 `json:"move_change_weight" yaml:"move_change_weight"`
	PassChangeWeight    float64 `json:"pass_change_weight" yaml:"pass_change_weight"`
	KickChangeWeight    float64 `json:"kick_change_weight" yaml:"kick_change_weight"`

	// Gap model.
	GapRatio   float64 `json:"gap_ratio" yaml:"gap_ratio"`     // total vs largest gap angle
	ViewMargin float64 `json:"view_margin" yaml:"view_margin"` // half-width of the viewpoint band

	// Search.
	RamificationNumber int        `json:"ramification_number" yaml:"ramification_number"`
	ConstantRate       bool       `json:"constant_rate" yaml:"constant_rate"`
	DecisionRate       float64    `json:"decision_rate" yaml:"decision_rate"` // cycles per second
	FullReplanPercent  float64    `json:"full_replan_percent" yaml:"full_replan_percent"`
	MoveRadii          [3]float64 `json:"move_radii" yaml:"move_radii"`
	MinKickAngle       float64    `json:"min_kick_angle" yaml:"min_kick_angle"` // degrees
	PreferKick         bool       `json:"prefer_kick" yaml:"prefer_kick"`
	MaxMoveRetries     int        `json:"max_move_retries" yaml:"max_move_retries"`
	BallClearance      float64    `json:"ball_clearance" yaml:"ball_clearance"` // metres
}

// DefaultParams returns the baseline parameter group.
func DefaultParams() Params {
	return Params{
		BallGapWeight:       1.0,
		BlockAttackerWeight: 1.0,
		TeammateGapWeight:   0.2,
		EnemyGapWeight:      0.2,
		PenalDistance:       1.5,
		PenalWeight:         5.0,
		TotalMoveWeight:     0.5,
		MaxMoveWeight:       0.5,
		MoveChangeWeight:    0.3,
		PassChangeWeight:    2.0,
		KickChangeWeight:    0.5,
		GapRatio:            0.5,
		ViewMargin:          0.0215,
		RamificationNumber:  200,
		DecisionRate:        30,
		FullReplanPercent:   20,
		MoveRadii:           [3]float64{0.3, 1.0, 2.5},
		MinKickAngle:        4,
		PreferKick:          true,
		MaxMoveRetries:      50,
		BallClearance:       0.3,
	}
}

// Validate clamps every field into its usable range.
func (p *Params) Validate() {
	p.BallGapWeight = clamp(p.BallGapWeight, 0, 100)
	p.BlockAttackerWeight = clamp(p.BlockAttackerWeight, 0, 100)
	p.TeammateGapWeight = clamp(p.TeammateGapWeight, 0, 100)
	p.EnemyGapWeight = clamp(p.EnemyGapWeight, 0, 100)
	p.PenalDistance = clamp(p.PenalDistance, 0, 10)
	p.PenalWeight = clamp(p.PenalWeight, 0, 100)
	p.TotalMoveWeight = clamp(p.TotalMoveWeight, 0, 100)
	p.MaxMoveWeight = clamp(p.MaxMoveWeight, 0, 100)
	p.MoveChangeWeight = clamp(p.MoveChangeWeight, 0, 100)
	p.PassChangeWeight = clamp(p.PassChangeWeight, 0, 100)
	p.KickChangeWeight = clamp(p.KickChangeWeight, 0, 100)
	p.GapRatio = clamp(p.GapRatio, 0, 1)
	p.ViewMargin = clamp(p.ViewMargin, 0, 0.5)
	p.RamificationNumber = clampInt(p.RamificationNumber, 1, 100000)
	p.DecisionRate = clamp(p.DecisionRate, 1, 1000)
	p.FullReplanPercent = clamp(p.FullReplanPercent, 0, 100)
	for i := range p.MoveRadii {
		p.MoveRadii[i] = clamp(p.MoveRadii[i], 0.01, 10)
	}
	p.MinKickAngle = clamp(p.MinKickAngle, 0, 180)
	p.MaxMoveRetries = clampInt(p.MaxMoveRetries, 1, 10000)
	p.BallClearance = clamp(p.BallClearance, 0, 5)
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
