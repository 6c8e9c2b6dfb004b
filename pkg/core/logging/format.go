package logging

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Format selects the output encoding of log entries
type Format int

const (
	FormatConsole Format = iota
	FormatText
	FormatJSON
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatConsole:
		return "console"
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		return FormatConsole, nil
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatConsole, fmt.Errorf("invalid log format: %q", format)
	}
}

// Fields represents custom key-value pairs for structured logging
type Fields map[string]interface{}

// Entry is a single log record
type Entry struct {
	Timestamp time.Time
	Level     Level
	Logger    string
	Message   string
	Fields    Fields
}

// Formatter turns an entry into one line of output
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// GetFormatter returns the formatter for a format
func GetFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{TimestampFormat: time.RFC3339}
	case FormatText:
		return &TextFormatter{TimestampFormat: time.RFC3339}
	default:
		return NewConsoleFormatter()
	}
}

// JSONFormatter formats log entries as JSON objects
type JSONFormatter struct {
	TimestampFormat string
}

// Format formats a log entry as JSON
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}
	data["timestamp"] = entry.Timestamp.Format(f.TimestampFormat)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message
	if entry.Logger != "" {
		data["logger"] = entry.Logger
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// TextFormatter formats log entries as plain key=value text
type TextFormatter struct {
	TimestampFormat string
}

// Format formats a log entry as a single text line
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b strings.Builder
	if f.TimestampFormat != "" {
		b.WriteString(entry.Timestamp.Format(f.TimestampFormat))
		b.WriteByte(' ')
	}
	b.WriteString(entry.Level.ShortString())
	b.WriteByte(' ')
	if entry.Logger != "" {
		b.WriteString("[" + entry.Logger + "] ")
	}
	b.WriteString(entry.Message)
	writeFields(&b, entry.Fields)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

var levelStyles = map[Level]lipgloss.Style{
	LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
	LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
	LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
	LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
}

var mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

// ConsoleFormatter formats log entries for a terminal with coloured level tags
type ConsoleFormatter struct {
	DisableColors bool
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// Format formats a log entry for console output
func (f *ConsoleFormatter) Format(entry *Entry) ([]byte, error) {
	tag := entry.Level.ShortString()
	if !f.DisableColors {
		if style, ok := levelStyles[entry.Level]; ok {
			tag = style.Render(tag)
		}
	}

	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	var fields strings.Builder
	writeFields(&fields, entry.Fields)
	if fields.Len() > 0 {
		if f.DisableColors {
			b.WriteString(fields.String())
		} else {
			b.WriteString(mutedStyle.Render(fields.String()))
		}
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// writeFields appends fields in sorted key order
func writeFields(b *strings.Builder, fields Fields) {
	if len(fields) == 0 {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fields[k]
		if s, ok := v.(string); ok && strings.ContainsAny(s, " \t\"=") {
			fmt.Fprintf(b, " %s=%q", k, s)
			continue
		}
		fmt.Fprintf(b, " %s=%v", k, v)
	}
}
