package control

import "math"

// Step sizes before the step scale is applied.
const (
	MoveStep   = 0.1
	RotateStep = math.Pi / 10
)

// Action is the effect a key had on the controller.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionToggleRotation
	ActionReset
	ActionMove
	ActionRotate
	ActionStepScale
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionToggleRotation:
		return "toggle-rotation"
	case ActionReset:
		return "reset"
	case ActionMove:
		return "move"
	case ActionRotate:
		return "rotate"
	case ActionStepScale:
		return "step-scale"
	}
	return "none"
}

// Binding maps a key to an action. Keys lists the canonical key first,
// followed by alternate spellings a terminal library may report.
type Binding struct {
	Keys   []string
	Action Action
	Help   string

	// move and rotate are multiplied by the step sizes and the step scale.
	move   [3]float64 // x, y, z
	rotate [3]float64 // pitch, yaw, roll
	scale  float64
}

// Key returns the canonical key.
func (b Binding) Key() string { return b.Keys[0] }

var bindings = []Binding{
	{Keys: []string{"q", "ctrl+c"}, Action: ActionQuit, Help: "quit"},
	{Keys: []string{"t"}, Action: ActionToggleRotation, Help: "toggle rotation"},
	{Keys: []string{"r"}, Action: ActionReset, Help: "reset model"},

	{Keys: []string{"h"}, Action: ActionMove, Help: "left", move: [3]float64{1, 0, 0}},
	{Keys: []string{"l"}, Action: ActionMove, Help: "right", move: [3]float64{-1, 0, 0}},
	{Keys: []string{"j"}, Action: ActionMove, Help: "up", move: [3]float64{0, -1, 0}},
	{Keys: []string{"k"}, Action: ActionMove, Help: "down", move: [3]float64{0, 1, 0}},
	{Keys: []string{"u"}, Action: ActionMove, Help: "zoom in", move: [3]float64{0, 0, 1}},
	{Keys: []string{"i"}, Action: ActionMove, Help: "zoom out", move: [3]float64{0, 0, -1}},

	{Keys: []string{"H", "shift+h"}, Action: ActionRotate, Help: "rotate left", rotate: [3]float64{0, 1, 0}},
	{Keys: []string{"L", "shift+l"}, Action: ActionRotate, Help: "rotate right", rotate: [3]float64{0, -1, 0}},
	{Keys: []string{"J", "shift+j"}, Action: ActionRotate, Help: "rotate up", rotate: [3]float64{1, 0, 0}},
	{Keys: []string{"K", "shift+k"}, Action: ActionRotate, Help: "rotate down", rotate: [3]float64{-1, 0, 0}},
	{Keys: []string{"Y", "shift+y"}, Action: ActionRotate, Help: "rotate in", rotate: [3]float64{0, 0, -1}},
	{Keys: []string{"O", "shift+o"}, Action: ActionRotate, Help: "rotate out", rotate: [3]float64{0, 0, 1}},

	{Keys: []string{"U", "shift+u"}, Action: ActionStepScale, Help: "double step", scale: 2},
	{Keys: []string{"I", "shift+i"}, Action: ActionStepScale, Help: "halve step", scale: 0.5},
}

// Bindings returns the key map in display order.
func Bindings() []Binding {
	return append([]Binding(nil), bindings...)
}

// lookup finds the binding for a canonical key or one of its alternates.
func lookup(key string) (Binding, bool) {
	for _, b := range bindings {
		for _, k := range b.Keys {
			if k == key {
				return b, true
			}
		}
	}
	return Binding{}, false
}

// MatchKey returns the canonical key of the first binding for which match
// reports true. match is typically a key event's MatchString method.
func MatchKey(match func(...string) bool) (string, bool) {
	for _, b := range bindings {
		if match(b.Keys...) {
			return b.Key(), true
		}
	}
	return "", false
}
