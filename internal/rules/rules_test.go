package rules

import (
	"os"
	"path/filepath"
	"testing"

	"gem-sniper/internal/domain"
)

func testState() *domain.TokenState {
	s := domain.NewTokenState("mint-1")
	s.TotalTrades = 10
	s.Buys = 7
	s.Sells = 3
	s.BuySellRatio = 7.0 / 3.0
	s.CurrentMcap = 150
	s.TxPerSec = 4
	s.Slope = 2.5
	s.TrendStrength = 0.9
	s.AvgBuyAmount = 0.8
	return s
}

func TestCompile_RejectsUnknownOperator(t *testing.T) {
	_, err := Compile([]RuleSet{{{Property: PropBuys, Operator: "~=", Threshold: 1}}}, false)
	if err == nil {
		t.Fatal("Compile accepted an unsupported operator")
	}
}

func TestCompile_RejectsUnknownProperty(t *testing.T) {
	_, err := Compile([]RuleSet{{{Property: "volume", Operator: OpGT, Threshold: 1}}}, false)
	if err == nil {
		t.Fatal("Compile accepted an unknown property")
	}
}

func TestCompile_RejectsDerivedInEntryRules(t *testing.T) {
	_, err := Compile([]RuleSet{{{Property: PropPnL, Operator: OpGT, Threshold: 10}}}, false)
	if err == nil {
		t.Fatal("Compile accepted a derived property in entry rules")
	}

	if _, err := Compile([]RuleSet{{{Property: PropPnL, Operator: OpGT, Threshold: 10}}}, true); err != nil {
		t.Fatalf("Compile rejected PnL in exit rules: %v", err)
	}
}

func TestCompile_RejectsEmptyInput(t *testing.T) {
	if _, err := Compile(nil, false); err == nil {
		t.Fatal("Compile accepted an empty rule list")
	}
	if _, err := Compile([]RuleSet{{}}, false); err == nil {
		t.Fatal("Compile accepted an empty rule-set")
	}
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	// Rule-set 1 is unsatisfiable, rule-set 2 matches.
	c, err := Compile([]RuleSet{
		{{Property: PropBuys, Operator: OpGT, Threshold: 1000}},
		{{Property: PropBuys, Operator: OpGE, Threshold: 5}},
	}, false)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	ok, idx := c.Evaluate(testState(), nil)
	if !ok || idx != 2 {
		t.Fatalf("Evaluate = (%v, %d), want (true, 2)", ok, idx)
	}
}

func TestEvaluate_ConjunctionShortCircuits(t *testing.T) {
	c, err := Compile([]RuleSet{
		{
			{Property: PropBuys, Operator: OpGT, Threshold: 5},
			{Property: PropSells, Operator: OpGT, Threshold: 100}, // fails
			{Property: PropMcap, Operator: OpGT, Threshold: 0},
		},
	}, false)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	ok, idx := c.Evaluate(testState(), nil)
	if ok || idx != 0 {
		t.Fatalf("Evaluate = (%v, %d), want (false, 0)", ok, idx)
	}
}

func TestEvaluate_DerivedFields(t *testing.T) {
	c, err := Compile([]RuleSet{
		{
			{Property: PropPnL, Operator: OpGE, Threshold: 25},
			{Property: PropTimeElapsed, Operator: OpGT, Threshold: 10},
		},
	}, true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	ok, idx := c.Evaluate(testState(), &Derived{PnLPct: 30, TimeElapsed: 12})
	if !ok || idx != 1 {
		t.Fatalf("Evaluate = (%v, %d), want (true, 1)", ok, idx)
	}

	ok, _ = c.Evaluate(testState(), &Derived{PnLPct: 30, TimeElapsed: 5})
	if ok {
		t.Fatal("Evaluate matched with failing time elapsed")
	}
}

func TestEvaluate_AllOperators(t *testing.T) {
	state := testState() // Buys = 7

	tests := []struct {
		op        Operator
		threshold float64
		want      bool
	}{
		{OpGT, 6, true},
		{OpGT, 7, false},
		{OpGE, 7, true},
		{OpLT, 8, true},
		{OpLT, 7, false},
		{OpLE, 7, true},
		{OpEQ, 7, true},
		{OpEQ, 8, false},
		{OpNE, 8, true},
		{OpNE, 7, false},
	}

	for _, tt := range tests {
		c, err := Compile([]RuleSet{{{Property: PropBuys, Operator: tt.op, Threshold: tt.threshold}}}, false)
		if err != nil {
			t.Fatalf("Compile(%s): %v", tt.op, err)
		}
		ok, _ := c.Evaluate(state, nil)
		if ok != tt.want {
			t.Errorf("buys %s %v = %v, want %v", tt.op, tt.threshold, ok, tt.want)
		}
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	content := `{
		"enter": [
			[{"property": "transaction/sec", "operator": ">", "value": 3},
			 {"property": "buy/sell ratio", "operator": ">=", "value": 2}]
		],
		"exit": [
			[{"property": "PnL", "operator": ">=", "value": 50}],
			[{"property": "time elapsed", "operator": ">", "value": 120}]
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	enter, exit, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if enter.Len() != 1 {
		t.Fatalf("enter rule-sets = %d, want 1", enter.Len())
	}
	if exit.Len() != 2 {
		t.Fatalf("exit rule-sets = %d, want 2", exit.Len())
	}
}

func TestLoad_FailsFastOnBadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	content := `{
		"enter": [[{"property": "buys", "operator": "is", "value": 1}]],
		"exit": [[{"property": "PnL", "operator": ">", "value": 1}]]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	if _, _, err := Load(path); err == nil {
		t.Fatal("Load accepted an unsupported operator")
	}
}
