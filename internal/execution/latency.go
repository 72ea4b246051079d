// Package execution finalizes entry and exit actions. A simulated submitter
// models network latency, block inclusion and fee-bumped resubmits; the live
// submitter forwards orders to the trading API and retries until they land.
package execution

import (
	"math/rand"
	"time"
)

// Latency model parameters, in seconds. Inclusion speeds up linearly with
// the priority fee; waits past the cap are treated as dropped transactions
// and resubmitted with a doubled fee.
const (
	latencyMean   = 0.25
	latencyStddev = 0.08

	baseInclusionRate = 0.35   // 1/s with no priority fee
	feeInclusionBoost = 6000.0 // inclusion rate gained per SOL of fee

	maxInclusionWait   = 1.2
	resubmitPenalty    = 0.15
	processingOverhead = 0.05
	maxResubmits       = 3

	// minFeeBump seeds fee escalation when the configured fee is zero,
	// so a resubmitted trade always pays more than it was submitted with.
	minFeeBump = 1e-6
)

// Sampler draws the random variates the latency model needs.
// Tests substitute a deterministic implementation.
type Sampler interface {
	// Gauss draws from a normal distribution.
	Gauss(mean, stddev float64) float64
	// Exp draws from an exponential distribution with the given rate.
	Exp(rate float64) float64
}

type randSampler struct {
	rng *rand.Rand
}

func (s randSampler) Gauss(mean, stddev float64) float64 {
	return mean + stddev*s.rng.NormFloat64()
}

func (s randSampler) Exp(rate float64) float64 {
	return s.rng.ExpFloat64() / rate
}

// LatencyModel simulates the time a trade takes to finalize.
type LatencyModel struct {
	sampler Sampler
}

// NewLatencyModel creates a model backed by its own PRNG.
func NewLatencyModel() *LatencyModel {
	return &LatencyModel{
		sampler: randSampler{rng: rand.New(rand.NewSource(time.Now().UnixNano()))},
	}
}

// NewLatencyModelWithSampler creates a model with an injected sampler.
func NewLatencyModelWithSampler(s Sampler) *LatencyModel {
	return &LatencyModel{sampler: s}
}

// Finalize simulates one trade finalization: propagation latency plus block
// inclusion, with up to maxResubmits fee-doubled resubmissions when the
// inclusion draw exceeds the cap. It returns the total delay, the effective
// fee the trade ended up paying, and the number of resubmits.
func (m *LatencyModel) Finalize(priorityFee float64) (delay time.Duration, effectiveFee float64, retries int) {
	latency := clampZero(m.sampler.Gauss(latencyMean, latencyStddev))
	rate := baseInclusionRate + feeInclusionBoost*priorityFee
	inclusion := m.sampler.Exp(rate)

	total := latency
	for inclusion > maxInclusionWait && retries < maxResubmits {
		total += maxInclusionWait + resubmitPenalty
		retries++
		priorityFee *= 2
		if priorityFee == 0 {
			priorityFee = minFeeBump
		}
		rate = baseInclusionRate + feeInclusionBoost*priorityFee
		inclusion = m.sampler.Exp(rate)
		latency = clampZero(m.sampler.Gauss(latencyMean, latencyStddev))
		total += latency
	}

	total += inclusion + processingOverhead

	effectiveFee = priorityFee + float64(retries)*priorityFee
	return time.Duration(total * float64(time.Second)), effectiveFee, retries
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
