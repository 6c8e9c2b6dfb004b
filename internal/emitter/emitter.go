// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     emitter
// Description: Wraps translated tokens in a host-language program skeleton
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package emitter

import (
	"fmt"
	"strings"

	"github.com/msto63/skriptc/internal/lexer"
)

// Skeleton is the fixed text around the translated body
type Skeleton struct {
	// IncludeFormat renders one header name, e.g. "#include <%s>"
	IncludeFormat string
	Prologue      string
	Epilogue      string
}

// CSkeleton is the C entry point. The epilogue forces exit status 0.
var CSkeleton = Skeleton{
	IncludeFormat: "#include <%s>",
	Prologue:      "int main() {",
	Epilogue:      ";return 0;}",
}

// Program is a generated host-language program
type Program struct {
	Directives []string
	Prologue   string
	Body       string
	Epilogue   string
}

// Build assembles a program. Tokens of all lines go on one body line, in
// order, with no separator; the tokens must already carry terminators.
// Token content is not validated.
func Build(skeleton Skeleton, headers []string, lines [][]lexer.Token) *Program {
	p := &Program{
		Directives: make([]string, 0, len(headers)),
		Prologue:   skeleton.Prologue,
		Epilogue:   skeleton.Epilogue,
	}
	for _, h := range headers {
		p.Directives = append(p.Directives, fmt.Sprintf(skeleton.IncludeFormat, h))
	}

	var body strings.Builder
	for _, line := range lines {
		body.WriteString(lexer.Join(line))
	}
	p.Body = body.String()
	return p
}

// Emit returns the program source, one element per output line
func Emit(skeleton Skeleton, headers []string, lines [][]lexer.Token) []string {
	return Build(skeleton, headers, lines).Lines()
}

// Lines returns directives, prologue, body and epilogue as separate lines
func (p *Program) Lines() []string {
	out := make([]string, 0, len(p.Directives)+3)
	out = append(out, p.Directives...)
	return append(out, p.Prologue, p.Body, p.Epilogue)
}

// String serializes the program with a newline after every line
func (p *Program) String() string {
	var b strings.Builder
	for _, line := range p.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
