package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skerr "github.com/msto63/skriptc/pkg/core/error"
)

type env struct {
	dir      string
	compiler string
	failing  string
}

// newEnv writes a config that keeps history and backends inside a temp dir
// and two fake compilers
func newEnv(t *testing.T) *env {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compilers are shell scripts")
	}

	e := &env{dir: t.TempDir()}
	e.compiler = e.script(t, "fakecc", "#!/bin/sh\necho binary > \"$2\"\n")
	e.failing = e.script(t, "badcc", "#!/bin/sh\necho \"syntax error\" >&2\nexit 2\n")

	backends := filepath.Join(e.dir, "backends")
	require.NoError(t, os.Mkdir(backends, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(backends, "puts.yaml"), []byte(
		"name: puts\ndescription: puts instead of printf\nrules:\n  - pattern: print\n    replacement: puts\n"), 0644))

	cfg := fmt.Sprintf(`[general]
log_level = "error"
log_format = "text"

[build]
compiler = %q

[backends]
dir = %q

[history]
enabled = true
path = %q
`, e.compiler, backends, filepath.Join(e.dir, "history.db"))
	cfgPath := filepath.Join(e.dir, "skriptc.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	t.Setenv("SKRIPTC_CONFIG", cfgPath)
	return e
}

func (e *env) script(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0755))
	return path
}

func (e *env) source(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func resetFlags() {
	cfgFile = ""
	verbose = false
	logFormat = ""
	buildOpts = buildOptions{}
	watchOpts = buildOptions{}
	translateBackend = ""
	historyLimit = 20
}

func execute(args ...string) (string, string, error) {
	var stdout, stderr syncBuffer
	err := executeContext(context.Background(), &stdout, &stderr, args...)
	return stdout.String(), stderr.String(), err
}

func executeContext(ctx context.Context, stdout, stderr *syncBuffer, args ...string) error {
	resetFlags()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	return Execute(ctx)
}

// syncBuffer is a bytes.Buffer safe for a writer and a reader goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute("version")
	require.NoError(t, err)
	assert.Contains(t, out, "skriptc v")
	assert.Contains(t, out, "Go Version:")
}

func TestTranslateCommand(t *testing.T) {
	e := newEnv(t)
	input := e.source(t, "hello.py", "print(\"hi\")\n")

	out, _, err := execute("translate", input)
	require.NoError(t, err)
	assert.Equal(t, "#include <stdio.h>\nint main() {\nprintf(\"hi\");\n;return 0;}\n", out)
	assert.NoFileExists(t, filepath.Join(e.dir, "hello.c"))
}

func TestTranslateCommand_YAMLBackend(t *testing.T) {
	e := newEnv(t)
	input := e.source(t, "hello.py", "print(\"hi\")\n")

	out, _, err := execute("translate", "--backend", "puts", input)
	require.NoError(t, err)
	assert.Contains(t, out, "\nputs(\"hi\");\n")
}

func TestBuildCommand(t *testing.T) {
	e := newEnv(t)
	input := e.source(t, "hello.py", "print(\"hi\")\n")
	binary := filepath.Join(e.dir, "hello")

	out, _, err := execute("build", input)
	require.NoError(t, err)
	assert.Contains(t, out, binary)
	assert.FileExists(t, binary)
	assert.NoFileExists(t, binary+".c")

	out, _, err = execute("build", input)
	require.NoError(t, err)
	assert.Contains(t, out, "aktuell")

	out, _, err = execute("history")
	require.NoError(t, err)
	assert.Contains(t, out, "succeeded")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, binary)
}

func TestBuildCommand_OutputAndKeepIntermediate(t *testing.T) {
	e := newEnv(t)
	input := e.source(t, "hello.py", "print(\"hi\")\n")
	binary := filepath.Join(e.dir, "custom")

	_, _, err := execute("build", "-o", binary, "--keep-intermediate", input)
	require.NoError(t, err)
	assert.FileExists(t, binary)
	assert.FileExists(t, filepath.Join(e.dir, "hello.c"))
}

func TestBuildCommand_CompilerFailure(t *testing.T) {
	e := newEnv(t)
	input := e.source(t, "hello.py", "print(\"hi\")\n")

	_, stderr, err := execute("build", "--compiler", e.failing, input)
	require.Error(t, err)
	assert.True(t, skerr.HasCode(err, skerr.CodeCompilerFailed))
	assert.Contains(t, stderr, "error:")
	assert.Contains(t, stderr, "status 2")
	assert.Contains(t, stderr, "syntax error")
	assert.NoFileExists(t, filepath.Join(e.dir, "hello.c"))

	out, _, err := execute("history", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "COMPILER_FAILED")
}

func TestBuildCommand_Errors(t *testing.T) {
	e := newEnv(t)
	input := e.source(t, "hello.py", "print(\"hi\")\n")

	tests := []struct {
		name string
		args []string
		code skerr.Code
	}{
		{"unknown backend", []string{"build", "--backend", "cobol", input}, skerr.CodeBackendNotFound},
		{"missing source", []string{"build", filepath.Join(e.dir, "missing.py")}, skerr.CodeSourceNotFound},
		{"wrong extension", []string{"build", filepath.Join(e.dir, "skriptc.toml")}, skerr.CodeInvalidInput},
		{"compiler not found", []string{"build", "--compiler", "no-such-compiler-xyz", input}, skerr.CodeCompilerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := execute(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, skerr.GetCode(err))
			assert.Contains(t, stderr, "error:")
		})
	}
}

func TestBuildCommand_RequiresOneArgument(t *testing.T) {
	newEnv(t)
	_, _, err := execute("build")
	require.Error(t, err)
}

func TestBackendsCommand(t *testing.T) {
	newEnv(t)

	out, _, err := execute("backends")
	require.NoError(t, err)
	assert.Contains(t, out, "c ")
	assert.Contains(t, out, "cpp")
	assert.Contains(t, out, "puts")
	assert.Contains(t, out, "yaml")
}

func TestConfigFlag_MissingFile(t *testing.T) {
	newEnv(t)

	_, _, err := execute("--config", "/nonexistent/skriptc.toml", "backends")
	require.Error(t, err)
	assert.True(t, skerr.HasCode(err, skerr.CodeInvalidConfig))
}

func TestDoctorCommand(t *testing.T) {
	newEnv(t)

	out, _, err := execute("doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "compiler:c")
	assert.Contains(t, out, "backends-dir")
	assert.Contains(t, out, "history")
}

func TestDoctorCommand_MissingDefaultCompiler(t *testing.T) {
	e := newEnv(t)
	cfgPath := filepath.Join(e.dir, "missing-cc.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[build]\ncompiler = \"no-such-compiler-xyz\"\n[history]\nenabled = false\n"), 0644))

	out, _, err := execute("--config", cfgPath, "doctor")
	require.Error(t, err)
	assert.True(t, skerr.HasCode(err, skerr.CodeInvalidConfig))
	assert.Contains(t, out, "no-such-compiler-xyz not found")
}

func TestBuildCommand_DefaultsLeaveOnlyBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a shell script")
	}
	compiler := filepath.Join(t.TempDir(), "fakecc")
	require.NoError(t, os.WriteFile(compiler, []byte("#!/bin/sh\necho binary > \"$2\"\n"), 0755))

	dir := t.TempDir()
	testChdir(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("SKRIPTC_CONFIG", "")
	require.NoError(t, os.WriteFile("hello.py", []byte("print(\"hi\")\n"), 0644))

	_, _, err := execute("build", "--compiler", compiler, "hello.py")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"hello", "hello.py"}, names)
}

func TestExitCode(t *testing.T) {
	e := newEnv(t)
	input := e.source(t, "hello.py", "print(\"hi\")\n")

	_, _, err := execute("build", "--compiler", e.failing, input)
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))

	_, _, err = execute("build", filepath.Join(e.dir, "missing.py"))
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(skerr.New("compiler exited").WithCode(skerr.CodeCompilerFailed)))
}

func TestWatchCommand_ReportsFailureOnce(t *testing.T) {
	e := newEnv(t)
	input := e.source(t, "hello.py", "print(\"hi\")\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var stdout, stderr syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- executeContext(ctx, &stdout, &stderr, "watch", "--compiler", e.failing, input)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "Build failed")
	}, 5*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 1, strings.Count(stderr.String(), "status 2"))
	assert.NotContains(t, stderr.String(), "error: build")
	assert.NoFileExists(t, filepath.Join(e.dir, "hello.c"))
}

// testChdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
