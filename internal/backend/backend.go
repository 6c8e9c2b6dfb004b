// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     backend
// Description: Target-language profiles: symbol table, skeleton and compiler
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package backend

import (
	"fmt"
	"strings"

	"github.com/msto63/skriptc/internal/emitter"
	"github.com/msto63/skriptc/internal/symtab"
	skerr "github.com/msto63/skriptc/pkg/core/error"
)

// Placeholders substituted in compiler arguments
const (
	PlaceholderOutput = "{output}"
	PlaceholderSource = "{source}"
)

// Backend bundles everything that depends on the target language
type Backend struct {
	Name        string
	Description string

	// SourceExt is stripped from the input path to get the module name
	SourceExt string
	// IntermediateExt is appended to the module name for the generated file
	IntermediateExt string

	Table      *symtab.Table
	Terminator string
	Headers    []string
	Skeleton   emitter.Skeleton

	Compiler string
	Args     []string

	// Origin is "builtin" or the definition file path
	Origin string
}

// Validate checks that the backend can produce a program and a compiler call
func (b *Backend) Validate() error {
	fail := func(msg string) error {
		return skerr.New(msg).
			WithCode(skerr.CodeInvalidConfig).
			WithOperation("backend.Validate").
			WithDetail("backend", b.Name).
			WithDetail("origin", b.Origin)
	}

	switch {
	case b.Name == "":
		return fail("backend name is required")
	case !strings.HasPrefix(b.SourceExt, ".") || len(b.SourceExt) < 2:
		return fail("source_ext must start with a dot")
	case !strings.HasPrefix(b.IntermediateExt, ".") || len(b.IntermediateExt) < 2:
		return fail("intermediate_ext must start with a dot")
	case b.Table == nil:
		return fail("backend has no symbol table")
	case b.Compiler == "":
		return fail("compiler is required")
	case len(b.Headers) > 0 && strings.Count(b.Skeleton.IncludeFormat, "%") != 1:
		return fail("include_format must contain exactly one verb")
	}

	hasSource := false
	for _, a := range b.Args {
		if strings.Contains(a, PlaceholderSource) {
			hasSource = true
		}
	}
	if !hasSource {
		return fail("args must reference " + PlaceholderSource)
	}
	return nil
}

// CompilerArgs returns the compiler arguments for one build
func (b *Backend) CompilerArgs(output, source string) []string {
	r := strings.NewReplacer(PlaceholderOutput, output, PlaceholderSource, source)
	args := make([]string, len(b.Args))
	for i, a := range b.Args {
		args[i] = r.Replace(a)
	}
	return args
}

// Fingerprint summarizes every setting that affects the generated program
// or the compiler call
func (b *Backend) Fingerprint() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\x00%s\x00%s\x00%q\x00%q\x00", b.Name, b.SourceExt, b.IntermediateExt, b.Terminator, b.Headers)
	fmt.Fprintf(&sb, "%q\x00%q\x00%q\x00", b.Skeleton.IncludeFormat, b.Skeleton.Prologue, b.Skeleton.Epilogue)
	fmt.Fprintf(&sb, "%s\x00%q\x00", b.Compiler, b.Args)
	if b.Table != nil {
		for _, r := range b.Table.Rules() {
			fmt.Fprintf(&sb, "%q=%q\x00", r.Pattern, r.Replacement)
		}
	}
	return sb.String()
}

// WithCompiler returns a copy that runs a different compiler executable
func (b *Backend) WithCompiler(compiler string) *Backend {
	clone := *b
	clone.Compiler = compiler
	return &clone
}

// C is the default backend: Python-style print statements to C via gcc
func C() *Backend {
	return &Backend{
		Name:            "c",
		Description:     "print statements to C, compiled with gcc",
		SourceExt:       ".py",
		IntermediateExt: ".c",
		Table:           symtab.Python,
		Terminator:      ";",
		Headers:         []string{"stdio.h"},
		Skeleton:        emitter.CSkeleton,
		Compiler:        "gcc",
		Args:            []string{"-o", PlaceholderOutput, PlaceholderSource},
		Origin:          "builtin",
	}
}

// CPP targets C++ with g++, using the same substitutions
func CPP() *Backend {
	b := C()
	b.Name = "cpp"
	b.Description = "print statements to C++, compiled with g++"
	b.IntermediateExt = ".cpp"
	b.Headers = []string{"cstdio"}
	b.Compiler = "g++"
	return b
}
