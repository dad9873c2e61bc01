package models

// DirectionStep is one turn-by-turn instruction of a route.
type DirectionStep struct {
	Instruction     string  `json:"instruction"`
	DistanceText    string  `json:"distance"`
	Maneuver        string  `json:"maneuver,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
	Completed       bool    `json:"completed"`
}
