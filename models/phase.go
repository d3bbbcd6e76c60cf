package models

// Phase is the game phase of a craps table.
type Phase string

const (
	PhaseComeOut Phase = "come_out"
	PhasePoint   Phase = "point"
)

// PointOff marks the absence of an established point. The table invariant
// is phase == come_out <=> point == PointOff.
const PointOff = 0

// RollEvent classifies what a roll total did to the game phase. In the
// crapless variant a come-out 7 is the only natural winner; every other
// come-out total establishes a point, 2, 3, 11 and 12 included.
type RollEvent string

const (
	EventNatural          RollEvent = "natural"
	EventPointEstablished RollEvent = "point_established"
	EventPointMade        RollEvent = "point_made"
	EventSevenOut         RollEvent = "seven_out"
	EventNeutral          RollEvent = "neutral"
)
