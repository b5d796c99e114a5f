package vyos

import (
	"errors"
	"strconv"
)

// Kind of an ordered rule list on the router
type Kind string

const (
	KindFirewall       Kind = "firewall"
	KindFirewallIPv6   Kind = "firewall-ipv6"
	KindAccessList     Kind = "access-list"
	KindAccessList6    Kind = "access-list6"
	KindPrefixList     Kind = "prefix-list"
	KindRouteMap       Kind = "route-map"
	KindNATSource      Kind = "nat-source"
	KindNATDestination Kind = "nat-destination"
)

// NAT rule lists are not named
const natRuleSetPlaceholder = "-"

// ErrUnknownKind godoc
var ErrUnknownKind = errors.New("unknown rule set kind")

// ErrMissingName godoc
var ErrMissingName = errors.New("rule set name is required")

// configuration path of the rules of each kind, %s is the rule set name
var kindPaths = map[Kind][]string{
	KindFirewall:       {"firewall", "name", "%s", "rule"},
	KindFirewallIPv6:   {"firewall", "ipv6-name", "%s", "rule"},
	KindAccessList:     {"policy", "access-list", "%s", "rule"},
	KindAccessList6:    {"policy", "access-list6", "%s", "rule"},
	KindPrefixList:     {"policy", "prefix-list", "%s", "rule"},
	KindRouteMap:       {"policy", "route-map", "%s", "rule"},
	KindNATSource:      {"nat", "source", "rule"},
	KindNATDestination: {"nat", "destination", "rule"},
}

// RuleSet identifies an ordered rule list on the router
type RuleSet struct {
	Kind Kind
	Name string
}

// NewRuleSet validates the kind and name of a rule set. NAT rule lists have
// no name; any given name is replaced by a placeholder.
func NewRuleSet(kind, name string) (RuleSet, error) {
	k := Kind(kind)
	path, ok := kindPaths[k]
	if !ok {
		return RuleSet{}, ErrUnknownKind
	}
	if !named(path) {
		return RuleSet{Kind: k, Name: natRuleSetPlaceholder}, nil
	}
	if name == "" || name == natRuleSetPlaceholder {
		return RuleSet{}, ErrMissingName
	}
	return RuleSet{Kind: k, Name: name}, nil
}

func named(path []string) bool {
	for _, p := range path {
		if p == "%s" {
			return true
		}
	}
	return false
}

// String godoc
func (rs RuleSet) String() string {
	return string(rs.Kind) + "/" + rs.Name
}

// RulePath returns the configuration path of a rule of the set
func (rs RuleSet) RulePath(number int) []string {
	base := kindPaths[rs.Kind]
	path := make([]string, 0, len(base)+1)
	for _, p := range base {
		if p == "%s" {
			p = rs.Name
		}
		path = append(path, p)
	}
	return append(path, strconv.Itoa(number))
}
