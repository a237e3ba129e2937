package geometry

import "realmwalk/server/models"

// StepKind names the step variant that carries out a move
type StepKind int

const (
	StepPlain StepKind = iota
	StepVerticalRamp
	StepHorizontalRamp
)

func (k StepKind) String() string {
	switch k {
	case StepVerticalRamp:
		return "vertical_ramp"
	case StepHorizontalRamp:
		return "horizontal_ramp"
	}
	return "plain"
}

// Resolution is the outcome of deciding how a single move is made
type Resolution struct {
	Kind       StepKind
	From       models.Position
	To         models.Position
	Vertical   VerticalTransition
	Horizontal HorizontalTransition
}

// IsRamp reports whether the move needs a ramp step
func (r Resolution) IsRamp() bool {
	return r.Kind != StepPlain
}

// Resolve decides which step carries an agent from p in dir, preferring a
// vertical ramp, then a horizontal ramp, then a plain step. With allowRamps
// false only plain steps are considered.
func Resolve(g Grid, p models.Position, dir models.Direction, allowRamps bool) (Resolution, bool) {
	if allowRamps {
		if vt, ok := ClassifyVerticalRampTransition(g, p, dir); ok {
			return Resolution{Kind: StepVerticalRamp, From: p, To: vt.To, Vertical: vt}, true
		}
		if ht, ok := HorizontalRampTarget(g, p, dir); ok {
			return Resolution{Kind: StepHorizontalRamp, From: p, To: ht.To, Horizontal: ht}, true
		}
	}
	to, ok := PlainTarget(g, p, dir)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Kind: StepPlain, From: p, To: to}, true
}
