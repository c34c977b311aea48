package relay

import (
	"encoding/json"

	"github.com/DedS3t/richup-server/app/models"
)

type Kind string

// client -> server
const (
	KindCreateGame         Kind = "CREATE_GAME"
	KindJoinGame           Kind = "JOIN_GAME"
	KindReconnect          Kind = "RECONNECT"
	KindRollDice           Kind = "ROLL_DICE"
	KindBuyProperty        Kind = "BUY_PROPERTY"
	KindUpgradeHouse       Kind = "UPGRADE_HOUSE"
	KindMortgageProperty   Kind = "MORTGAGE_PROPERTY"
	KindUnmortgageProperty Kind = "UNMORTGAGE_PROPERTY"
	KindDeclareBankruptcy  Kind = "DECLARE_BANKRUPTCY"
	KindTradeOffer         Kind = "TRADE_OFFER"
	KindTradeRespond       Kind = "TRADE_RESPOND"
	KindEndTurn            Kind = "END_TURN"
)

// server -> client
const (
	KindWelcome         Kind = "WELCOME"
	KindGameJoined      Kind = "GAME_JOINED"
	KindGameUpdate      Kind = "GAME_UPDATE"
	KindError           Kind = "ERROR"
	KindReconnectFailed Kind = "RECONNECT_FAILED"
)

type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CreateGamePayload struct {
	PlayerName   string `json:"playerName"`
	StartingCash int    `json:"startingCash"`
	// InitialCash is accepted from older clients.
	InitialCash int `json:"initialCash"`
}

type JoinGamePayload struct {
	GameId     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

type ReconnectPayload struct {
	GameId   string          `json:"gameId"`
	PlayerId models.PlayerID `json:"playerId"`
}

type BuyPropertyPayload struct {
	Confirm bool `json:"confirm"`
}

type TilePayload struct {
	TileId string `json:"tileId"`
}

type TradeOfferPayload struct {
	To           models.PlayerID `json:"to"`
	OfferTiles   []string        `json:"offerTiles"`
	OfferCash    int             `json:"offerCash"`
	RequestTiles []string        `json:"requestTiles"`
	RequestCash  int             `json:"requestCash"`
}

type TradeRespondPayload struct {
	TradeId string `json:"tradeId"`
	Accept  bool   `json:"accept"`
}

type WelcomePayload struct {
	ConnectionId string `json:"connectionId"`
}

type GameJoinedPayload struct {
	GameId   string          `json:"gameId"`
	PlayerId models.PlayerID `json:"playerId"`
	State    *models.Game    `json:"state"`
}

type GameUpdatePayload struct {
	State *models.Game `json:"state"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func Encode(kind Kind, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Kind: kind, Payload: raw})
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	if env.Kind == "" {
		return Envelope{}, ErrMalformed
	}
	return env, nil
}

// decodePayload tolerates a missing payload for kinds that carry none.
func decodePayload(env Envelope, v interface{}) error {
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return ErrMalformed
	}
	return nil
}
