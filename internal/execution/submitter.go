package execution

import (
	"context"
	"time"

	"gem-sniper/internal/domain"
)

// Order is one entry or exit action handed to the execution collaborator.
type Order struct {
	Action      domain.Action
	Mint        string
	Amount      float64 // SOL for buys, token quantity for sells
	SellAll     bool    // liquidate the full token balance regardless of Amount
	SlippagePct float64
	PriorityFee float64
	Pool        string
}

// Receipt is the outcome of a submitted order.
type Receipt struct {
	Success bool
	Retries int           // resubmissions used
	Fee     float64       // effective priority fee actually paid
	Delay   time.Duration // time until finalization
}

// Submitter finalizes orders. Implementations block until the order either
// lands or the context is cancelled.
type Submitter interface {
	Submit(ctx context.Context, order Order) Receipt
}
