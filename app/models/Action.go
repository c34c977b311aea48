package models

import (
	"encoding/json"
	"fmt"
)

type ActionType string

const (
	ActionBuyPrompt ActionType = "BUY_PROMPT"
	ActionRentPaid  ActionType = "RENT_PAID"
	// ActionChanceCard is reserved; card resolution is not implemented.
	ActionChanceCard ActionType = "CHANCE_CARD"
)

// PendingAction is the turn-blocking prompt or notice attached to the current turn.
// Payload is always the concrete struct matching Type.
type PendingAction struct {
	Type    ActionType    `json:"type"`
	Payload ActionPayload `json:"payload"`
}

type ActionPayload interface {
	actionType() ActionType
}

type BuyPrompt struct {
	TileId   string `json:"tileId"`
	TileName string `json:"tileName"`
	Price    int    `json:"price"`
	Country  string `json:"country,omitempty"`
	Flag     string `json:"flag,omitempty"`
}

func (BuyPrompt) actionType() ActionType { return ActionBuyPrompt }

type RentPaid struct {
	Amount int    `json:"amount"`
	To     string `json:"to"`
}

func (RentPaid) actionType() ActionType { return ActionRentPaid }

func NewPendingAction(payload ActionPayload) *PendingAction {
	return &PendingAction{Type: payload.actionType(), Payload: payload}
}

// UnmarshalJSON restores the concrete payload named by Type.
func (a *PendingAction) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    ActionType      `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var payload ActionPayload
	switch raw.Type {
	case ActionBuyPrompt:
		var p BuyPrompt
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return err
		}
		payload = p
	case ActionRentPaid:
		var p RentPaid
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return err
		}
		payload = p
	default:
		return fmt.Errorf("unknown action type %q", raw.Type)
	}
	a.Type, a.Payload = raw.Type, payload
	return nil
}
