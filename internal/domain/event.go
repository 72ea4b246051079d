package domain

// Transaction type discriminators as they appear on the wire (txType field).
const (
	TxTypeCreate = "create"
	TxTypeBuy    = "buy"
	TxTypeSell   = "sell"
)

// FeedEvent is a decoded message from the token event feed.
// Creation events carry Mint and Trader (the token creator); trade events
// additionally carry the trade legs and a market cap snapshot. Numeric trade
// fields are nullable so that a missing field is distinguishable from zero.
type FeedEvent struct {
	TxType       string   `json:"txType"`
	Mint         string   `json:"mint"`
	Trader       string   `json:"traderPublicKey"`
	TokenAmount  *float64 `json:"tokenAmount,omitempty"`
	SolAmount    *float64 `json:"solAmount,omitempty"`
	MarketCapSol *float64 `json:"marketCapSol,omitempty"`
	Pool         *string  `json:"pool,omitempty"`
}

// IsCreation reports whether the event announces a new token.
func (e *FeedEvent) IsCreation() bool {
	return e.TxType == TxTypeCreate
}

// IsTrade reports whether the event is a buy or sell on a tracked token.
func (e *FeedEvent) IsTrade() bool {
	return e.TxType == TxTypeBuy || e.TxType == TxTypeSell
}
