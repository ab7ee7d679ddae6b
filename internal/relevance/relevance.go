// Package relevance decides whether free text such as a market question or a
// headline is about a named politician.
package relevance

import (
	"strings"
	"unicode"

	"github.com/DeafMist/civic-radar/backend/internal/dedupe"
)

// Rule names the heuristic that matched a text.
type Rule string

const (
	RuleFullName        Rule = "full_name"
	RuleCompoundSurname Rule = "compound_surname"
	RuleLastNameContext Rule = "last_name_context"
	RuleStateContext    Rule = "state_context"
	RuleNone            Rule = "none"
)

// Relevant reports whether the rule accepts the text.
func (r Rule) Relevant() bool {
	return r != "" && r != RuleNone
}

// Keywords are the political-context words that qualify a bare last name or
// a bare state name.
type Keywords struct {
	Person []string
	State  []string
}

// Filter applies the relevance rules with a fixed keyword set. It holds no
// mutable state and is safe for concurrent use.
//
// Names, states and keywords match whole words only. A keyword also matches
// its common inflections ("votes", "voters", "democratic").
type Filter struct {
	person [][]string
	state  [][]string
}

// New creates a filter. Keywords are matched case-insensitively.
func New(kw Keywords) *Filter {
	return &Filter{
		person: tokenizeAll(kw.Person),
		state:  tokenizeAll(kw.State),
	}
}

// Match returns the first rule, in priority order, under which text is about
// the person called name from state. Either name or state may be empty.
func (f *Filter) Match(name, state, text string) Rule {
	words := tokenize(text)
	stateWords := tokenize(state)
	parts := tokenize(name)

	hasState := len(stateWords) > 0 && containsPhrase(words, stateWords, false)

	if len(parts) > 0 {
		if containsPhrase(words, parts, false) {
			return RuleFullName
		}
		if len(parts) >= 3 && containsPhrase(words, parts[len(parts)-2:], false) {
			return RuleCompoundSurname
		}
		last := parts[len(parts)-1:]
		if containsPhrase(words, last, false) && (containsAny(words, f.person) || hasState) {
			return RuleLastNameContext
		}
	}

	if hasState && containsAny(words, f.state) {
		return RuleStateContext
	}
	return RuleNone
}

// Relevant is shorthand for Match(...).Relevant().
func (f *Filter) Relevant(name, state, text string) bool {
	return f.Match(name, state, text).Relevant()
}

// Select keeps the items that are about name, at most once per id, in input
// order. Items with an empty id are dropped.
func Select[T any](f *Filter, name, state string, items []T, fields func(T) (id, text string)) []T {
	seen := dedupe.NewSet(len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		id, text := fields(item)
		if seen.IsSeen(id) || !f.Relevant(name, state, text) {
			continue
		}
		if seen.Add(id) {
			out = append(out, item)
		}
	}
	return out
}

// inflections are the suffixes a keyword may carry and still match.
var inflections = []string{"s", "es", "d", "ed", "r", "rs", "ic", "ial", "ing"}

func containsAny(words []string, keywords [][]string) bool {
	for _, kw := range keywords {
		if containsPhrase(words, kw, true) {
			return true
		}
	}
	return false
}

// containsPhrase reports whether phrase occurs as consecutive words. With
// inflected set, the last word may carry one of the inflection suffixes.
func containsPhrase(words, phrase []string, inflected bool) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	n := len(phrase) - 1
outer:
	for i := 0; i+n < len(words); i++ {
		for j := 0; j < n; j++ {
			if words[i+j] != phrase[j] {
				continue outer
			}
		}
		if wordMatches(words[i+n], phrase[n], inflected) {
			return true
		}
	}
	return false
}

func wordMatches(word, kw string, inflected bool) bool {
	if word == kw {
		return true
	}
	if !inflected || !strings.HasPrefix(word, kw) {
		return false
	}
	suffix := word[len(kw):]
	for _, inf := range inflections {
		if suffix == inf {
			return true
		}
	}
	return false
}

// tokenize lower-cases s and splits it into words on anything that is not a
// letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func tokenizeAll(phrases []string) [][]string {
	out := make([][]string, 0, len(phrases))
	for _, p := range phrases {
		if words := tokenize(p); len(words) > 0 {
			out = append(out, words)
		}
	}
	return out
}
