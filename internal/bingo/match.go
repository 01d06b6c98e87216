package bingo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Matcher selects the leaf challenges whose trigger matches an action.
type Matcher struct {
	// NameOnly lists trigger types that match on name alone, skipping the
	// source comparison.
	NameOnly map[ActionType]bool
}

// NewMatcher returns a Matcher that skips source comparison for the given
// trigger types.
func NewMatcher(nameOnly ...ActionType) Matcher {
	m := Matcher{NameOnly: make(map[ActionType]bool, len(nameOnly))}
	for _, t := range nameOnly {
		m.NameOnly[ActionType(strings.ToUpper(string(t)))] = true
	}
	return m
}

// Binding pairs a leaf challenge with the trigger it is bound to.
type Binding struct {
	Challenge Challenge
	Trigger   Trigger
}

// Matches reports whether trigger tr accepts action a.
func (m Matcher) Matches(tr Trigger, a Action) bool {
	if NormalizeName(tr.Name) != NormalizeName(a.Name) {
		return false
	}
	if m.NameOnly[tr.Type] {
		return true
	}
	src := NormalizeName(tr.Source)
	return src == "" || src == NormalizeName(a.Source)
}

// Match returns the bindings whose trigger accepts a, in input order.
func (m Matcher) Match(bindings []Binding, a Action) []Binding {
	var out []Binding
	for _, b := range bindings {
		if m.Matches(b.Trigger, a) {
			out = append(out, b)
		}
	}
	return out
}

// NormalizeName canonicalises a player-facing name for comparison: Unicode
// compatibility normalisation, case folding, '_' and '-' read as spaces and
// whitespace runs collapsed.
func NormalizeName(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	s = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
