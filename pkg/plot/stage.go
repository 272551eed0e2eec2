package plot

// Stage tells how the next click on the canvas is interpreted.
type Stage string

const (
	StageAwaitingX1 Stage = "AwaitingX1"
	StageAwaitingX2 Stage = "AwaitingX2"
	StageAwaitingY1 Stage = "AwaitingY1"
	StageAwaitingY2 Stage = "AwaitingY2"
	StageCalibrated Stage = "Calibrated"
)

// Event drives stage transitions.
type Event string

const (
	// EventReference is a click that filled the awaited reference slot.
	EventReference Event = "Reference"
	// EventReset clears the calibration.
	EventReset Event = "Reset"
)

// Transition returns the stage that follows s after e. Calibrated only
// leaves on reset.
func Transition(s Stage, e Event) Stage {
	if e == EventReset {
		return StageAwaitingX1
	}

	switch s {
	case StageAwaitingX1:
		return StageAwaitingX2
	case StageAwaitingX2:
		return StageAwaitingY1
	case StageAwaitingY1:
		return StageAwaitingY2
	case StageAwaitingY2, StageCalibrated:
		return StageCalibrated
	}
	return s
}

// Slot returns the reference slot awaited in s. ok is false once calibrated.
func (s Stage) Slot() (slot Slot, ok bool) {
	switch s {
	case StageAwaitingX1:
		return SlotX1, true
	case StageAwaitingX2:
		return SlotX2, true
	case StageAwaitingY1:
		return SlotY1, true
	case StageAwaitingY2:
		return SlotY2, true
	}
	return "", false
}

// StageOf derives the stage from the set reference slots.
func StageOf(refs ReferencePoints) Stage {
	s := StageAwaitingX1
	for i := 0; i < refs.Count(); i++ {
		s = Transition(s, EventReference)
	}
	return s
}
