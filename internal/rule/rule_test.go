package rule

import (
	"regexp"
	"testing"
)

func mustTable(t *testing.T, specs [][2]string) *Table {
	t.Helper()
	rules := make([]Rule, len(specs))
	for i, s := range specs {
		rules[i] = Rule{AppIDPattern: regexp.MustCompile(s[0])}
		if s[1] != "" {
			rules[i].TitlePattern = regexp.MustCompile(s[1])
		}
	}
	return NewTable(rules)
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	tbl := mustTable(t, [][2]string{
		{"^firefox$", "YouTube"},
		{"^discord$", ""},
	})

	idx, ok := tbl.Evaluate(Window{AppID: "discord", Title: "#general"})
	if !ok || idx != 1 {
		t.Fatalf("Evaluate(discord) = (%d, %v), want (1, true)", idx, ok)
	}

	idx, ok = tbl.Evaluate(Window{AppID: "firefox", Title: "YouTube - cats"})
	if !ok || idx != 0 {
		t.Fatalf("Evaluate(firefox) = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestEvaluateNoMatch(t *testing.T) {
	tbl := mustTable(t, [][2]string{{"^discord$", ""}})
	if _, ok := tbl.Evaluate(Window{AppID: "firefox"}); ok {
		t.Fatalf("expected no match")
	}
}

func TestEvaluateEmptyPatternParticipates(t *testing.T) {
	tbl := mustTable(t, [][2]string{{"^$", ""}})
	idx, ok := tbl.Evaluate(Window{AppID: ""})
	if !ok || idx != 0 {
		t.Fatalf("Evaluate(empty app_id) = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestEvaluateTitleRequiredWhenPresent(t *testing.T) {
	tbl := mustTable(t, [][2]string{{"^firefox$", "^YouTube$"}})
	if _, ok := tbl.Evaluate(Window{AppID: "firefox", Title: "Other"}); ok {
		t.Fatalf("expected title mismatch to prevent match")
	}
}
