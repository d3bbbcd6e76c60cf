package engine

import "crapstable/models"

// Transition applies one roll total to the phase state machine and returns
// the resulting state plus the event that happened. Pure: the resolver and
// the validator both call it without sharing any state.
//
// Crapless rules: on the come-out a 7 is the only natural winner and there
// are no craps losses; every other total, 2, 3, 11 and 12 included, becomes
// the point. With a point on, rolling the point wins and 7 is the seven-out.
func Transition(phase models.Phase, point, total int) (models.Phase, int, models.RollEvent) {
	if phase == models.PhaseComeOut {
		if total == 7 {
			return models.PhaseComeOut, models.PointOff, models.EventNatural
		}
		return models.PhasePoint, total, models.EventPointEstablished
	}
	switch total {
	case point:
		return models.PhaseComeOut, models.PointOff, models.EventPointMade
	case 7:
		return models.PhaseComeOut, models.PointOff, models.EventSevenOut
	}
	return models.PhasePoint, point, models.EventNeutral
}

// Machine owns the {phase, point} pair for one table.
type Machine struct {
	phase models.Phase
	point int
}

// NewMachine returns a machine on the come-out roll.
func NewMachine() *Machine {
	return &Machine{phase: models.PhaseComeOut, point: models.PointOff}
}

func (m *Machine) Phase() models.Phase { return m.phase }
func (m *Machine) Point() int          { return m.point }

// Advance feeds a roll total through the machine and returns the event.
func (m *Machine) Advance(total int) models.RollEvent {
	phase, point, event := Transition(m.phase, m.point, total)
	m.phase, m.point = phase, point
	return event
}

// Set forces the machine to a known state. Used when replaying a resolved
// outcome back onto the table's owned state.
func (m *Machine) Set(phase models.Phase, point int) {
	m.phase, m.point = phase, point
}
