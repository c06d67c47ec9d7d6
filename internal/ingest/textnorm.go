package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	horizontalRuns = regexp.MustCompile(` {2,}`)
	trailingSpace  = regexp.MustCompile(` +\n`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText canonicalizes ingested contract text: control
// characters stripped, tabs and full-width spaces mapped to spaces, runs
// of horizontal whitespace collapsed, three or more consecutive blank
// lines collapsed to one, surrounding whitespace trimmed.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\t' || r == '　':
			b.WriteByte(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}

	out := horizontalRuns.ReplaceAllString(b.String(), " ")
	out = trailingSpace.ReplaceAllString(out, "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
