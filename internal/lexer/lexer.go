// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     lexer
// Description: Substitution scanner that turns source lines into output tokens
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/msto63/skriptc/internal/symtab"
)

// Kind tells where a token's text came from
type Kind int

const (
	// KindLiteral is a run of source characters no rule matched
	KindLiteral Kind = iota
	// KindReplacement is the replacement text of a matched rule
	KindReplacement
	// KindTerminator ends the statement of one source line
	KindTerminator
)

// String returns a string representation of the token kind
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "LITERAL"
	case KindReplacement:
		return "REPLACEMENT"
	case KindTerminator:
		return "TERMINATOR"
	default:
		return "UNKNOWN"
	}
}

// Token is one output fragment. A token never spans a substitution boundary.
type Token struct {
	Kind Kind
	Text string
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}

// State is the scanner state between two characters
type State int

const (
	// StateAtMatchBoundary means no literal run is pending
	StateAtMatchBoundary State = iota
	// StateInLiteralRun means unmatched characters are being collected
	StateInLiteralRun
)

// String returns a string representation of the scanner state
func (s State) String() string {
	switch s {
	case StateAtMatchBoundary:
		return "AT_MATCH_BOUNDARY"
	case StateInLiteralRun:
		return "IN_LITERAL_RUN"
	default:
		return "UNKNOWN"
	}
}

// Scanner translates lines with a fixed table and statement terminator.
// It holds no per-line state and may be shared.
type Scanner struct {
	table      *symtab.Table
	terminator string
}

// New creates a scanner; a nil table translates nothing
func New(table *symtab.Table, terminator string) *Scanner {
	if table == nil {
		table = symtab.MustNew()
	}
	return &Scanner{table: table, terminator: terminator}
}

// Translate scans line left to right. At each position the first matching
// rule is replaced; otherwise the character joins the pending literal run.
// The result always ends with one terminator token. Translate never fails.
func (s *Scanner) Translate(line string) []Token {
	tokens := make([]Token, 0, 8)
	state := StateAtMatchBoundary
	runStart := 0

	for pos := 0; pos < len(line); {
		if rule, ok := s.table.Match(line[pos:]); ok {
			if state == StateInLiteralRun {
				tokens = append(tokens, Token{Kind: KindLiteral, Text: line[runStart:pos]})
				state = StateAtMatchBoundary
			}
			tokens = append(tokens, Token{Kind: KindReplacement, Text: rule.Replacement})
			pos += len(rule.Pattern)
			continue
		}

		if state == StateAtMatchBoundary {
			runStart = pos
			state = StateInLiteralRun
		}
		_, size := utf8.DecodeRuneInString(line[pos:])
		pos += size
	}

	if state == StateInLiteralRun {
		tokens = append(tokens, Token{Kind: KindLiteral, Text: line[runStart:]})
	}
	return append(tokens, Token{Kind: KindTerminator, Text: s.terminator})
}

// TranslateLines translates every line and concatenates the results in order
func (s *Scanner) TranslateLines(lines []string) []Token {
	var tokens []Token
	for _, line := range lines {
		tokens = append(tokens, s.Translate(line)...)
	}
	return tokens
}

// Translate is a shorthand for New(table, terminator).Translate(line)
func Translate(table *symtab.Table, terminator, line string) []Token {
	return New(table, terminator).Translate(line)
}

// Join concatenates token text with no separator
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}
