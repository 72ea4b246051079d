// Package rules models user-defined entry and exit conditions: an ordered
// list of rule-sets, each a conjunction of (property, operator, threshold)
// triples. Rule-sets are compiled once at load time; unknown properties and
// operators are rejected there rather than during evaluation.
package rules

import (
	"fmt"

	"gem-sniper/internal/domain"
)

// Operator names a comparison between a property value and a threshold.
type Operator string

const (
	OpGT Operator = ">"
	OpGE Operator = ">="
	OpLT Operator = "<"
	OpLE Operator = "<="
	OpEQ Operator = "=="
	OpNE Operator = "!="
)

// Property names a readable field of the token state or, for exit rules,
// one of the derived fields only available while holding a position.
type Property string

const (
	PropTotalTrades   Property = "total trades"
	PropTxPerSec      Property = "transaction/sec"
	PropBuys          Property = "buys"
	PropSells         Property = "sells"
	PropBuySellRatio  Property = "buy/sell ratio"
	PropMcap          Property = "mcap"
	PropMcapSlope     Property = "mcap slope"
	PropTrendStrength Property = "trend strength"
	PropAvgBuyAmount  Property = "avg buy amount"

	// Exit-only derived properties.
	PropPnL         Property = "PnL"
	PropTimeElapsed Property = "time elapsed"
)

// Condition is one (property, operator, threshold) triple.
type Condition struct {
	Property  Property
	Operator  Operator
	Threshold float64
}

// String renders the condition the way strategy files spell it.
func (c Condition) String() string {
	return fmt.Sprintf("%s %s %g", c.Property, c.Operator, c.Threshold)
}

// RuleSet is a conjunction of conditions; it is satisfied only when every
// condition passes.
type RuleSet []Condition

// Derived carries the exit-evaluation fields that are not part of the token
// state: PnL so far (percent) and the elapsed holding time (seconds).
type Derived struct {
	PnLPct      float64
	TimeElapsed float64
}

var compare = map[Operator]func(a, b float64) bool{
	OpGT: func(a, b float64) bool { return a > b },
	OpGE: func(a, b float64) bool { return a >= b },
	OpLT: func(a, b float64) bool { return a < b },
	OpLE: func(a, b float64) bool { return a <= b },
	OpEQ: func(a, b float64) bool { return a == b },
	OpNE: func(a, b float64) bool { return a != b },
}

// accessors maps state-backed properties to typed getters.
var accessors = map[Property]func(*domain.TokenState) float64{
	PropTotalTrades:   func(s *domain.TokenState) float64 { return float64(s.TotalTrades) },
	PropTxPerSec:      func(s *domain.TokenState) float64 { return s.TxPerSec },
	PropBuys:          func(s *domain.TokenState) float64 { return float64(s.Buys) },
	PropSells:         func(s *domain.TokenState) float64 { return float64(s.Sells) },
	PropBuySellRatio:  func(s *domain.TokenState) float64 { return s.BuySellRatio },
	PropMcap:          func(s *domain.TokenState) float64 { return s.CurrentMcap },
	PropMcapSlope:     func(s *domain.TokenState) float64 { return s.Slope },
	PropTrendStrength: func(s *domain.TokenState) float64 { return s.TrendStrength },
	PropAvgBuyAmount:  func(s *domain.TokenState) float64 { return s.AvgBuyAmount },
}

type compiledCondition struct {
	get       func(*domain.TokenState, *Derived) float64
	cmp       func(a, b float64) bool
	threshold float64
}

// Compiled is a validated, ready-to-evaluate list of rule-sets.
type Compiled struct {
	sets   [][]compiledCondition
	source []RuleSet
}

// Compile validates every rule-set and binds each condition to its accessor
// and comparison. Derived properties are only legal when allowDerived is
// true (exit rules); anything unknown fails compilation.
func Compile(sets []RuleSet, allowDerived bool) (*Compiled, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("no rule-sets defined")
	}

	compiled := make([][]compiledCondition, 0, len(sets))
	for i, set := range sets {
		if len(set) == 0 {
			return nil, fmt.Errorf("rule-set %d is empty", i+1)
		}
		conds := make([]compiledCondition, 0, len(set))
		for _, cond := range set {
			cmp, ok := compare[cond.Operator]
			if !ok {
				return nil, fmt.Errorf("rule-set %d: unsupported operator %q", i+1, cond.Operator)
			}

			var get func(*domain.TokenState, *Derived) float64
			switch cond.Property {
			case PropPnL:
				if !allowDerived {
					return nil, fmt.Errorf("rule-set %d: property %q is only valid in exit rules", i+1, cond.Property)
				}
				get = func(_ *domain.TokenState, d *Derived) float64 { return d.PnLPct }
			case PropTimeElapsed:
				if !allowDerived {
					return nil, fmt.Errorf("rule-set %d: property %q is only valid in exit rules", i+1, cond.Property)
				}
				get = func(_ *domain.TokenState, d *Derived) float64 { return d.TimeElapsed }
			default:
				acc, ok := accessors[cond.Property]
				if !ok {
					return nil, fmt.Errorf("rule-set %d: unknown property %q", i+1, cond.Property)
				}
				get = func(s *domain.TokenState, _ *Derived) float64 { return acc(s) }
			}

			conds = append(conds, compiledCondition{get: get, cmp: cmp, threshold: cond.Threshold})
		}
		compiled = append(compiled, conds)
	}

	return &Compiled{sets: compiled, source: sets}, nil
}

// Len returns the number of rule-sets.
func (c *Compiled) Len() int {
	return len(c.sets)
}

// Sources returns the rule-sets this strategy was compiled from, in
// evaluation order.
func (c *Compiled) Sources() []RuleSet {
	return c.source
}

// Evaluate walks the rule-sets in order and returns the 1-based index of the
// first fully satisfied one. A failing condition short-circuits its rule-set.
// The derived bag may be nil when no rule-set references derived properties.
func (c *Compiled) Evaluate(state *domain.TokenState, derived *Derived) (bool, int) {
	if derived == nil {
		derived = &Derived{}
	}
	for i, set := range c.sets {
		satisfied := true
		for _, cond := range set {
			if !cond.cmp(cond.get(state, derived), cond.threshold) {
				satisfied = false
				break
			}
		}
		if satisfied {
			return true, i + 1
		}
	}
	return false, 0
}
