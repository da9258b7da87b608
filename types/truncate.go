package types

import "strings"

const (
	// MessageLimit is the rune cap for failure and error messages.
	MessageLimit = 500
	// SkipReasonLimit is the rune cap for skip reasons.
	SkipReasonLimit = 200

	// TraceElisionMarker separates the head and tail of a truncated trace.
	TraceElisionMarker = "..."

	traceHeadLines = 10
	traceTailLines = 10
)

// TruncateMessage caps a message at limit runes. The cut is made on rune
// boundaries so a multi-byte character is never split.
func TruncateMessage(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// TruncateTrace reduces a trace longer than twenty lines to its first ten and
// last ten lines with an elision marker between them. Shorter traces pass
// through unchanged.
func TruncateTrace(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= traceHeadLines+traceTailLines {
		return s
	}
	truncated := make([]string, 0, traceHeadLines+traceTailLines+1)
	truncated = append(truncated, lines[:traceHeadLines]...)
	truncated = append(truncated, TraceElisionMarker)
	truncated = append(truncated, lines[len(lines)-traceTailLines:]...)
	return strings.Join(truncated, "\n")
}
