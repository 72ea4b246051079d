package execution

import (
	"context"
	"time"
)

// SimSubmitter finalizes orders through the latency model. It never fails:
// the model always produces a finite delay, after which the order is
// considered landed with the (possibly escalated) effective fee.
type SimSubmitter struct {
	model *LatencyModel
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSimSubmitter creates a simulated submitter.
func NewSimSubmitter(model *LatencyModel) *SimSubmitter {
	if model == nil {
		model = NewLatencyModel()
	}
	return &SimSubmitter{model: model, sleep: sleepCtx}
}

// Submit waits out the modeled finalization delay and reports success.
// A cancelled context aborts the wait and reports failure.
func (s *SimSubmitter) Submit(ctx context.Context, order Order) Receipt {
	delay, fee, retries := s.model.Finalize(order.PriorityFee)
	if err := s.sleep(ctx, delay); err != nil {
		return Receipt{Success: false, Retries: retries, Fee: fee, Delay: delay}
	}
	return Receipt{Success: true, Retries: retries, Fee: fee, Delay: delay}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure SimSubmitter implements Submitter.
var _ Submitter = (*SimSubmitter)(nil)
