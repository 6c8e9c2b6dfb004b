// Package source reads scripts and derives module names from their paths.
package source

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	skerr "github.com/msto63/skriptc/pkg/core/error"
)

// ModuleName strips ext from path. The path must end in ext and have
// something before it.
func ModuleName(path, ext string) (string, error) {
	if !strings.HasSuffix(path, ext) || len(path) == len(ext) {
		return "", skerr.Newf("input %q does not end in %s", path, ext).
			WithCode(skerr.CodeInvalidInput).
			WithOperation("source.ModuleName").
			WithDetail("path", path).
			WithDetail("ext", ext)
	}
	return strings.TrimSuffix(path, ext), nil
}

// File is a source file split into trimmed, non-blank lines
type File struct {
	Path  string
	Lines []string
	// Data is the raw file content
	Data []byte
}

// Read loads path and splits it into lines
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := skerr.CodeSourceNotFound
		if !os.IsNotExist(err) && !os.IsPermission(err) {
			code = skerr.CodeIOError
		}
		return nil, skerr.Wrap(err, "cannot read source").
			WithCode(code).
			WithSeverity(skerr.SeverityHigh).
			WithOperation("source.Read").
			WithDetail("path", path)
	}
	return &File{Path: path, Lines: SplitLines(data), Data: data}, nil
}

// SplitLines trims every line and drops the blank ones, keeping order
func SplitLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
