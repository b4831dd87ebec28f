// Package termtext makes untrusted text (email senders, subjects, bodies,
// backend error messages) safe to write to a terminal.
package termtext

import (
	"regexp"
	"strings"
	"unicode"
)

// escapePattern matches ANSI escape sequences (colors, cursor movement, etc.)
// Handles CSI sequences (\x1b[...X) and OSC sequences terminated by BEL (\x07) or ST (\x1b\\)
var escapePattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]|\x1b\]([^\x07\x1b]|\x1b[^\\])*(\x07|\x1b\\)`)

// StripANSI removes escape sequences and leaves everything else alone.
func StripANSI(s string) string {
	return escapePattern.ReplaceAllString(s, "")
}

// Sanitize strips escape sequences and control characters except newline
// and tab. Use it for multi-line display such as an email body.
func Sanitize(s string) string {
	s = StripANSI(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SingleLine strips escape sequences and every control character,
// including C0, DEL and C1, so the text cannot spoof lines or columns.
func SingleLine(s string) string {
	s = StripANSI(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Flatten sanitizes s and collapses all whitespace runs, newlines
// included, to single spaces. Use it for table cells.
func Flatten(s string) string {
	return strings.Join(strings.Fields(Sanitize(s)), " ")
}
