// Package rule implements the Rule Table: compiled regex rules held in
// declaration order, evaluated against a window to find the first
// matching rule.
package rule

import "regexp"

// Rule pairs an app_id/title pattern with a target sink reference. The
// compiled regexes are cached on the Rule and discarded only on config
// reload, when a new Table replaces this one wholesale.
type Rule struct {
	AppIDPattern   *regexp.Regexp
	TitlePattern   *regexp.Regexp // nil if not configured
	SinkRef        string
	Desc           string
	NotifyOverride *bool
}

// Window is the minimal view of a window that rule evaluation needs,
// decoupled from internal/window's richer Window type.
type Window struct {
	AppID string
	Title string
}

// Table holds rules in declaration order; position is significant for
// the index match policy.
type Table struct {
	rules []Rule
}

// NewTable builds a table from already-compiled rules, preserving order.
func NewTable(rules []Rule) *Table {
	return &Table{rules: rules}
}

// Rules returns the table's rules in declaration order.
func (t *Table) Rules() []Rule {
	return t.rules
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// Evaluate returns the index of the first rule whose app_id_pattern
// matches w.AppID and whose title_pattern, if present, matches w.Title.
// It returns ok=false if no rule matches. Empty app_id/title still
// participate in matching: the pattern may accept the empty string.
func (t *Table) Evaluate(w Window) (index int, ok bool) {
	for i, r := range t.rules {
		if !r.AppIDPattern.MatchString(w.AppID) {
			continue
		}
		if r.TitlePattern != nil && !r.TitlePattern.MatchString(w.Title) {
			continue
		}
		return i, true
	}
	return 0, false
}

// At returns the rule at the given index.
func (t *Table) At(index int) Rule {
	return t.rules[index]
}
