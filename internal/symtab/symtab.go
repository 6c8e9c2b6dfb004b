// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     symtab
// Description: Ordered literal substitution rules used by the translator
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package symtab

import (
	"strings"

	skerr "github.com/msto63/skriptc/pkg/core/error"
)

// Rule maps a literal source pattern to its literal replacement
type Rule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// Table is an ordered list of rules. At each scan position the first rule
// in declaration order whose pattern matches wins, even if a later rule
// would match a longer prefix. A Table is immutable once built.
type Table struct {
	rules []Rule
}

// New builds a table from rules in the given order. Empty patterns are rejected.
func New(rules ...Rule) (*Table, error) {
	copied := make([]Rule, len(rules))
	for i, r := range rules {
		if r.Pattern == "" {
			return nil, skerr.Newf("rule %d has an empty pattern", i).
				WithCode(skerr.CodeInvalidConfig).
				WithOperation("symtab.New").
				WithDetail("index", i).
				WithDetail("replacement", r.Replacement)
		}
		copied[i] = r
	}
	return &Table{rules: copied}, nil
}

// MustNew is like New but panics on invalid rules; for package-level tables
func MustNew(rules ...Rule) *Table {
	t, err := New(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rules
func (t *Table) Len() int {
	return len(t.rules)
}

// Rules returns a copy of the rules in declaration order
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Match returns the first rule whose pattern is a prefix of s
func (t *Table) Match(s string) (Rule, bool) {
	for _, r := range t.rules {
		if strings.HasPrefix(s, r.Pattern) {
			return r, true
		}
	}
	return Rule{}, false
}

// Shadowed reports rules that can never match because an earlier rule's
// pattern is a prefix of theirs. Each pair is (earlier, shadowed).
func (t *Table) Shadowed() [][2]Rule {
	var out [][2]Rule
	for i, later := range t.rules {
		for _, earlier := range t.rules[:i] {
			if strings.HasPrefix(later.Pattern, earlier.Pattern) {
				out = append(out, [2]Rule{earlier, later})
				break
			}
		}
	}
	return out
}

// Python is the substitution table of the built-in C backend: the print
// builtin becomes printf and single quotes become double quotes.
var Python = MustNew(
	Rule{Pattern: "print", Replacement: "printf"},
	Rule{Pattern: "(", Replacement: "("},
	Rule{Pattern: ")", Replacement: ")"},
	Rule{Pattern: `"`, Replacement: `"`},
	Rule{Pattern: "'", Replacement: `"`},
)
