package game

import "errors"

// Errors returned by Room operations. Each is reported to the acting
// connection and leaves room state untouched.
var (
	ErrRoomFull          = errors.New("room is full")
	ErrRoomClosed        = errors.New("room is closed")
	ErrAlreadySeated     = errors.New("player is already seated in this room")
	ErrPlayerNotFound    = errors.New("player is not in this room")
	ErrNoHandInProgress  = errors.New("no hand in progress")
	ErrHandInProgress    = errors.New("a hand is already in progress")
	ErrNotEnoughPlayers  = errors.New("at least two players with chips are needed to deal")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrInvalidAmount     = errors.New("raise amount must be positive")
	ErrInsufficientChips = errors.New("not enough chips")
	ErrUnknownAction     = errors.New("unknown action")

	// errTurnUnresolved means no player could be found to act in an open round.
	errTurnUnresolved = errors.New("no player can act but the round is still open")
)
