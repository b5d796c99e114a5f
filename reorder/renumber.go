package reorder

import "gitlab.com/netops-console/vyos_console_api/model"

// RuleKey is the ordering key of a rule
func RuleKey(rule model.Rule) int {
	return rule.Number
}

// Floor returns the smallest rule number of the list
func Floor(rules []model.Rule) (int, bool) {
	if len(rules) == 0 {
		return 0, false
	}
	floor := rules[0].Number
	for _, rule := range rules[1:] {
		if rule.Number < floor {
			floor = rule.Number
		}
	}
	return floor, true
}

// Renumber assigns sequential rule numbers to the staged order, starting at
// the smallest number of the list as it was before the drag began.
// An empty staged list yields an empty plan.
func Renumber(staged, original []model.Rule) []model.ReorderEntry {
	if len(staged) == 0 {
		return nil
	}
	floor, ok := Floor(original)
	if !ok {
		floor, _ = Floor(staged)
	}

	plan := make([]model.ReorderEntry, 0, len(staged))
	for i, rule := range staged {
		plan = append(plan, model.ReorderEntry{
			OldNumber: rule.Number,
			NewNumber: floor + i,
			RuleData:  rule,
		})
	}
	return plan
}

// Apply returns the rules of a plan with their new numbers
func Apply(plan []model.ReorderEntry) []model.Rule {
	rules := make([]model.Rule, 0, len(plan))
	for _, entry := range plan {
		rule := entry.RuleData
		rule.Number = entry.NewNumber
		rules = append(rules, rule)
	}
	return rules
}
