package engine

import (
	"errors"
	"fmt"
)

// Code is a machine-readable rejection reason.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Caller errors
	CodeInvalidTurn             Code = "INVALID_TURN"
	CodeInvalidCardIndex        Code = "INVALID_CARD_INDEX"
	CodeInvalidTarget           Code = "INVALID_TARGET"
	CodeInvalidState            Code = "INVALID_STATE"
	CodeInvalidSwapCount        Code = "INVALID_SWAP_COUNT"
	CodeInvalidStealSelection   Code = "INVALID_STEAL_SELECTION"
	CodePendingActionUnresolved Code = "PENDING_ACTION_UNRESOLVED"
	CodeGameOver                Code = "GAME_OVER"

	// Internal consistency
	CodeStateDesync Code = "STATE_DESYNC"
)

// Error is a rejected operation. The game state is left untouched whenever
// one is returned.
type Error struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrInvalidTurn             = &Error{Code: CodeInvalidTurn, Message: "not your turn"}
	ErrInvalidCardIndex        = &Error{Code: CodeInvalidCardIndex, Message: "invalid card index"}
	ErrInvalidTarget           = &Error{Code: CodeInvalidTarget, Message: "invalid target"}
	ErrInvalidState            = &Error{Code: CodeInvalidState, Message: "invalid state"}
	ErrInvalidSwapCount        = &Error{Code: CodeInvalidSwapCount, Message: "invalid swap selection"}
	ErrInvalidStealSelection   = &Error{Code: CodeInvalidStealSelection, Message: "invalid steal selection"}
	ErrPendingActionUnresolved = &Error{Code: CodePendingActionUnresolved, Message: "an action is awaiting a defense response"}
	ErrGameOver                = &Error{Code: CodeGameOver, Message: "game is over"}
	ErrStateDesync             = &Error{Code: CodeStateDesync, Message: "state desync"}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
