package game

import (
	"errors"
	"fmt"
)

var (
	ErrNoPlayers         = errors.New("at least one player name is required")
	ErrGameFull          = errors.New("game is full")
	ErrGameOver          = errors.New("game is over")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrTileNotFound      = errors.New("tile not found")
	ErrNotStreet         = errors.New("not a street")
	ErrNotOwner          = errors.New("not the owner")
	ErrMortgaged         = errors.New("property is mortgaged")
	ErrNotMortgaged      = errors.New("property is not mortgaged")
	ErrMaxLevel          = errors.New("max level reached")
	ErrIncompleteSet     = errors.New("country set incomplete")
	ErrInsufficientCash  = errors.New("not enough cash")
	ErrTradeNotFound     = errors.New("trade not found")
	ErrNotTradeRecipient = errors.New("not the trade recipient")
	ErrInvalidTrade      = errors.New("invalid trade")
)

// RuleError is an explicit rejection. Error returns the message shown to the
// player; Unwrap returns the rule that was violated.
type RuleError struct {
	Rule    error
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return e.Rule }

func reject(rule error, format string, args ...interface{}) error {
	return &RuleError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}
