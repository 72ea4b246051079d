package rules

import (
	"encoding/json"
	"fmt"
	"os"
)

// FileCondition is the JSON form of one condition.
type FileCondition struct {
	Property string  `json:"property"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
}

// File is the JSON form of a full strategy: ordered entry and exit rule-sets.
type File struct {
	Enter [][]FileCondition `json:"enter"`
	Exit  [][]FileCondition `json:"exit"`
}

// Load reads a strategy file and compiles both rule lists.
// Compilation failures surface here, before a run starts.
func Load(path string) (enter, exit *Compiled, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read rules file: %w", err)
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("parse rules file: %w", err)
	}

	enter, err = Compile(toRuleSets(f.Enter), false)
	if err != nil {
		return nil, nil, fmt.Errorf("enter rules: %w", err)
	}
	exit, err = Compile(toRuleSets(f.Exit), true)
	if err != nil {
		return nil, nil, fmt.Errorf("exit rules: %w", err)
	}
	return enter, exit, nil
}

func toRuleSets(in [][]FileCondition) []RuleSet {
	sets := make([]RuleSet, 0, len(in))
	for _, fs := range in {
		set := make(RuleSet, 0, len(fs))
		for _, fc := range fs {
			set = append(set, Condition{
				Property:  Property(fc.Property),
				Operator:  Operator(fc.Operator),
				Threshold: fc.Value,
			})
		}
		sets = append(sets, set)
	}
	return sets
}
