package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/msto63/skriptc/internal/lexer"
	"github.com/msto63/skriptc/internal/symtab"
)

func translate(lines ...string) [][]lexer.Token {
	scanner := lexer.New(symtab.Python, ";")
	out := make([][]lexer.Token, 0, len(lines))
	for _, l := range lines {
		out = append(out, scanner.Translate(l))
	}
	return out
}

func TestEmit_HelloWorld(t *testing.T) {
	got := Emit(CSkeleton, []string{"stdio.h"}, translate(`print("hi")`))

	assert.Equal(t, []string{
		"#include <stdio.h>",
		"int main() {",
		`printf("hi");`,
		";return 0;}",
	}, got)
}

func TestEmit_TwoLinesInSourceOrder(t *testing.T) {
	got := Emit(CSkeleton, []string{"stdio.h"}, translate("print('a')", "print('b')"))

	assert.Len(t, got, 4)
	assert.Equal(t, `printf("a");printf("b");`, got[2])
}

func TestEmit_NoLines(t *testing.T) {
	got := Emit(CSkeleton, []string{"stdio.h"}, nil)

	assert.Equal(t, []string{"#include <stdio.h>", "int main() {", "", ";return 0;}"}, got)
}

func TestEmit_HeaderPermutationOnlyMovesDirectives(t *testing.T) {
	body := translate(`print("x")`)
	a := Emit(CSkeleton, []string{"stdio.h", "stdlib.h"}, body)
	b := Emit(CSkeleton, []string{"stdlib.h", "stdio.h"}, body)

	assert.Equal(t, a[0], b[1])
	assert.Equal(t, a[1], b[0])
	assert.Equal(t, a[2:], b[2:])
}

func TestEmit_Deterministic(t *testing.T) {
	body := translate(`print("x")`, "print('y')")
	first := Emit(CSkeleton, []string{"stdio.h"}, body)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Emit(CSkeleton, []string{"stdio.h"}, body))
	}
}

func TestEmit_DoesNotValidateTokens(t *testing.T) {
	lines := [][]lexer.Token{{{Kind: lexer.KindLiteral, Text: "}}} not C"}}}
	got := Emit(CSkeleton, nil, lines)

	assert.Equal(t, []string{"int main() {", "}}} not C", ";return 0;}"}, got)
}

func TestProgram_String(t *testing.T) {
	p := Build(CSkeleton, []string{"stdio.h"}, translate(`print("hi")`))

	assert.Equal(t, "#include <stdio.h>\nint main() {\nprintf(\"hi\");\n;return 0;}\n", p.String())
}

func TestBuild_CustomSkeleton(t *testing.T) {
	sk := Skeleton{IncludeFormat: "import %q", Prologue: "BEGIN", Epilogue: "END"}
	p := Build(sk, []string{"fmt"}, nil)

	assert.Equal(t, []string{`import "fmt"`}, p.Directives)
	assert.Equal(t, []string{`import "fmt"`, "BEGIN", "", "END"}, p.Lines())
}
