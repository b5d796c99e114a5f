package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RuleNumberField is the JSON key holding the ordering key of a rule
const RuleNumberField = "rule_number"

// ErrMissingRuleNumber is returned when decoding a rule without a rule_number
var ErrMissingRuleNumber = errors.New("rule_number is missing")

// Rule is an entry of an ordered rule list (firewall, access-list, route-map...).
// Number is the only ordering key; every other attribute of the rule is kept
// as-is in Fields so it can be sent back to the configuration API untouched.
type Rule struct {
	Number int
	Fields map[string]interface{}
}

// MarshalJSON flattens the rule number next to the rule fields
func (r Rule) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+1)
	for key, value := range r.Fields {
		out[key] = value
	}
	out[RuleNumberField] = r.Number
	return json.Marshal(out)
}

// UnmarshalJSON godoc
func (r *Rule) UnmarshalJSON(data []byte) error {
	fields := map[string]interface{}{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	raw, ok := fields[RuleNumberField]
	if !ok {
		return ErrMissingRuleNumber
	}
	number, err := toRuleNumber(raw)
	if err != nil {
		return err
	}
	delete(fields, RuleNumberField)
	r.Number = number
	r.Fields = fields
	return nil
}

// the configuration API reports numbers either as JSON numbers or strings
func toRuleNumber(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("invalid rule_number %v", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid rule_number %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid rule_number %v", raw)
	}
}

// RuleNumbers returns the rule numbers of the list in order
func RuleNumbers(rules []Rule) []int {
	numbers := make([]int, 0, len(rules))
	for _, rule := range rules {
		numbers = append(numbers, rule.Number)
	}
	return numbers
}

// ReorderEntry is a single renumbering instruction sent to the configuration API
type ReorderEntry struct {
	OldNumber int  `json:"old_number"`
	NewNumber int  `json:"new_number"`
	RuleData  Rule `json:"rule_data"`
}

// RuleList is the view of a rule list returned to the console
type RuleList struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Rules      []Rule `json:"rules"`
	HasChanges bool   `json:"has_changes"`
}

// DragEvent is a single event of the browser drag protocol
type DragEvent struct {
	Type string `json:"type" binding:"required"`
	ID   string `json:"id"`
}

// MoveRuleRequest carries either the raw drag events or a source/target shortcut
type MoveRuleRequest struct {
	Source int         `json:"source"`
	Target int         `json:"target"`
	Events []DragEvent `json:"events"`
}

// AddRuleRequest creates a rule. A zero RuleNumber appends the rule after
// the last rule of the set.
type AddRuleRequest struct {
	RuleNumber int                    `json:"rule_number"`
	Fields     map[string]interface{} `json:"fields"`
}

// ReorderPreview shows what a commit of the staged order would send
type ReorderPreview struct {
	Plan     []ReorderEntry `json:"plan"`
	Commands []string       `json:"commands"`
}
