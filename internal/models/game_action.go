package models

import "fmt"

// ActionKind is the wire name of a betting action.
type ActionKind string

const (
	ActionFold  ActionKind = "fold"
	ActionCall  ActionKind = "call"
	ActionRaise ActionKind = "raise"
)

// Action is a player's move. The set of implementations is closed to this
// package: Fold, Call and Raise.
type Action interface {
	Kind() ActionKind
	isAction()
}

type Fold struct{}

type Call struct{}

// Raise adds Amount chips on top of whatever the player has already bet this round.
type Raise struct {
	Amount int
}

func (Fold) Kind() ActionKind  { return ActionFold }
func (Call) Kind() ActionKind  { return ActionCall }
func (Raise) Kind() ActionKind { return ActionRaise }

func (Fold) isAction()  {}
func (Call) isAction()  {}
func (Raise) isAction() {}

// ParseAction builds an Action from its wire form.
func ParseAction(kind string, amount int) (Action, error) {
	switch ActionKind(kind) {
	case ActionFold:
		return Fold{}, nil
	case ActionCall:
		return Call{}, nil
	case ActionRaise:
		return Raise{Amount: amount}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", kind)
	}
}
