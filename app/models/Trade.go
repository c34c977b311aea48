package models

type TradeStatus string

const (
	TradePending  TradeStatus = "pending"
	TradeAccepted TradeStatus = "accepted"
	TradeRejected TradeStatus = "rejected"
)

type TradeOffer struct {
	Id                string      `json:"id"`
	From              PlayerID    `json:"from"`
	To                PlayerID    `json:"to"`
	OfferProperties   []string    `json:"offerProperties"`
	OfferCash         int         `json:"offerCash"`
	RequestProperties []string    `json:"requestProperties"`
	RequestCash       int         `json:"requestCash"`
	Status            TradeStatus `json:"status"`
}
