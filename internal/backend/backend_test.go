package backend

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/skriptc/internal/lexer"
	skerr "github.com/msto63/skriptc/pkg/core/error"
	"github.com/msto63/skriptc/pkg/core/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewWithConfig(logging.Config{Level: logging.LevelError, Output: &bytes.Buffer{}})
}

func TestBuiltins_Validate(t *testing.T) {
	for _, b := range []*Backend{C(), CPP()} {
		t.Run(b.Name, func(t *testing.T) {
			assert.NoError(t, b.Validate())
		})
	}
}

func TestC_CompilerArgs(t *testing.T) {
	b := C()

	assert.Equal(t, []string{"-o", "hello", "hello.c"}, b.CompilerArgs("hello", "hello.c"))
	assert.Equal(t, []string{"-o", "{output}", "{source}"}, b.Args, "template must not be modified")
}

func TestWithCompiler(t *testing.T) {
	b := C()
	clang := b.WithCompiler("clang")

	assert.Equal(t, "clang", clang.Compiler)
	assert.Equal(t, "gcc", b.Compiler)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *Backend)
	}{
		{"no name", func(b *Backend) { b.Name = "" }},
		{"bad source ext", func(b *Backend) { b.SourceExt = "py" }},
		{"dot only", func(b *Backend) { b.IntermediateExt = "." }},
		{"no table", func(b *Backend) { b.Table = nil }},
		{"no compiler", func(b *Backend) { b.Compiler = "" }},
		{"no source placeholder", func(b *Backend) { b.Args = []string{"-o", "{output}"} }},
		{"broken include format", func(b *Backend) { b.Skeleton.IncludeFormat = "#include" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := C()
			tt.mutate(b)
			err := b.Validate()
			require.Error(t, err)
			assert.True(t, skerr.HasCode(err, skerr.CodeInvalidConfig))
		})
	}
}

func TestParse_FullDefinition(t *testing.T) {
	data := []byte(`
name: puts
description: print via puts
source_ext: .skr
intermediate_ext: .c
terminator: ";\n"
headers: [stdio.h, stdlib.h]
prologue: "int main(void) {"
epilogue: "return EXIT_SUCCESS;}"
compiler: cc
args: ["-std=c99", "-o", "{output}", "{source}"]
rules:
  - pattern: print
    replacement: puts
  - pattern: "'"
    replacement: '"'
`)

	b, err := Parse(data, "puts.yaml")
	require.NoError(t, err)

	assert.Equal(t, "puts", b.Name)
	assert.Equal(t, ".skr", b.SourceExt)
	assert.Equal(t, ";\n", b.Terminator)
	assert.Equal(t, []string{"stdio.h", "stdlib.h"}, b.Headers)
	assert.Equal(t, "#include <%s>", b.Skeleton.IncludeFormat)
	assert.Equal(t, "int main(void) {", b.Skeleton.Prologue)
	assert.Equal(t, "cc", b.Compiler)
	assert.Equal(t, []string{"-std=c99", "-o", "out", "in.c"}, b.CompilerArgs("out", "in.c"))
	assert.Equal(t, "puts.yaml", b.Origin)

	got := lexer.Join(lexer.Translate(b.Table, b.Terminator, "print('x')"))
	assert.Equal(t, "puts(\"x\");\n", got)
}

func TestParse_DefaultsFromC(t *testing.T) {
	b, err := Parse([]byte("name: minimal\n"), "minimal.yaml")
	require.NoError(t, err)

	c := C()
	assert.Equal(t, c.SourceExt, b.SourceExt)
	assert.Equal(t, c.IntermediateExt, b.IntermediateExt)
	assert.Equal(t, c.Terminator, b.Terminator)
	assert.Equal(t, c.Headers, b.Headers)
	assert.Equal(t, c.Skeleton, b.Skeleton)
	assert.Equal(t, c.Args, b.Args)
	assert.Equal(t, 0, b.Table.Len())
}

func TestParse_EmptyTerminatorAndHeaders(t *testing.T) {
	b, err := Parse([]byte("name: bare\nterminator: \"\"\nheaders: []\n"), "bare.yaml")
	require.NoError(t, err)

	assert.Equal(t, "", b.Terminator)
	assert.Empty(t, b.Headers)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "name: [unclosed"},
		{"empty pattern", "name: x\nrules:\n  - pattern: \"\"\n    replacement: y\n"},
		{"missing name", "compiler: gcc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "test.yaml")
			require.Error(t, err)
			assert.True(t, skerr.HasCode(err, skerr.CodeInvalidConfig))
		})
	}
}

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry(quietLogger())

	names := make([]string, 0)
	for _, b := range r.List() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"c", "cpp"}, names)

	b, err := r.Get("c")
	require.NoError(t, err)
	assert.Equal(t, "gcc", b.Compiler)

	_, err = r.Get("fortran")
	require.Error(t, err)
	assert.True(t, skerr.HasCode(err, skerr.CodeBackendNotFound))
}

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clang.yaml"), []byte("name: clang\ncompiler: clang\nrules:\n  - pattern: print\n    replacement: printf\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "override.yml"), []byte("name: c\ncompiler: cc\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: [\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	r := NewRegistry(quietLogger())
	n, err := r.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	clang, err := r.Get("clang")
	require.NoError(t, err)
	assert.Equal(t, "clang", clang.Compiler)

	c, err := r.Get("c")
	require.NoError(t, err)
	assert.Equal(t, "cc", c.Compiler)
	assert.Len(t, r.List(), 3)
}

func TestRegistry_LoadDirMissing(t *testing.T) {
	r := NewRegistry(quietLogger())

	n, err := r.LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = r.LoadDir("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, C().Fingerprint(), C().Fingerprint())
	assert.NotEqual(t, C().Fingerprint(), C().WithCompiler("clang").Fingerprint())
	assert.NotEqual(t, C().Fingerprint(), CPP().Fingerprint())
}
