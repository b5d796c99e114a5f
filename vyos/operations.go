package vyos

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gitlab.com/netops-console/vyos_console_api/model"
)

// Operation names understood by the configuration API batch endpoint
const (
	OpSet    = "set"
	OpDelete = "delete"
)

// Operation is a single named configuration change of a batch
type Operation struct {
	Op    string   `json:"op"`
	Path  []string `json:"path"`
	Value string   `json:"value,omitempty"`
}

// String renders the operation as a configuration command
func (op Operation) String() string {
	cmd := op.Op + " " + strings.Join(op.Path, " ")
	if op.Value != "" {
		cmd += " '" + op.Value + "'"
	}
	return cmd
}

func extend(path []string, elems ...string) []string {
	out := make([]string, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}

// flatten turns a nested rule payload into set operations. Maps become path
// nodes (keys sorted), lists repeat the node, true booleans are valueless
// nodes and false booleans are left out.
func flatten(path []string, value interface{}) []Operation {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var ops []Operation
		for _, key := range keys {
			ops = append(ops, flatten(extend(path, key), v[key])...)
		}
		return ops
	case []interface{}:
		var ops []Operation
		for _, item := range v {
			ops = append(ops, flatten(path, item)...)
		}
		return ops
	case bool:
		if !v {
			return nil
		}
		return []Operation{{Op: OpSet, Path: path}}
	case nil:
		return []Operation{{Op: OpSet, Path: path}}
	case string:
		return []Operation{{Op: OpSet, Path: path, Value: v}}
	case float64:
		return []Operation{{Op: OpSet, Path: path, Value: strconv.FormatFloat(v, 'f', -1, 64)}}
	case int:
		return []Operation{{Op: OpSet, Path: path, Value: strconv.Itoa(v)}}
	default:
		return []Operation{{Op: OpSet, Path: path, Value: fmt.Sprint(v)}}
	}
}

// RuleOperations builds the set operations creating the rule in the rule set
func RuleOperations(rs RuleSet, rule model.Rule) []Operation {
	base := rs.RulePath(rule.Number)
	ops := flatten(base, rule.Fields)
	if len(ops) == 0 {
		return []Operation{{Op: OpSet, Path: base}}
	}
	return ops
}

// DeleteRuleOperations builds the operation removing a rule from the rule set
func DeleteRuleOperations(rs RuleSet, number int) []Operation {
	return []Operation{{Op: OpDelete, Path: rs.RulePath(number)}}
}

// ReorderOperations expands a renumbering plan into the equivalent batch:
// every old rule is deleted first, then every rule is set under its new number.
func ReorderOperations(rs RuleSet, plan []model.ReorderEntry) []Operation {
	ops := make([]Operation, 0, len(plan)*2)
	for _, entry := range plan {
		ops = append(ops, DeleteRuleOperations(rs, entry.OldNumber)...)
	}
	for _, entry := range plan {
		rule := entry.RuleData
		rule.Number = entry.NewNumber
		ops = append(ops, RuleOperations(rs, rule)...)
	}
	return ops
}
