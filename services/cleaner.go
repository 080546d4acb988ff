package services

import (
	"regexp"
	"strings"
)

var (
	reTOC          = regexp.MustCompile(`(?i)^.*table of contents.*$`)
	rePageNumber   = regexp.MustCompile(`(?i)^.*page[^\d]*\d+.*$`)
	reSpecialLines = regexp.MustCompile(`^[\s\W\d]*$`)
	reMultiNewLine = regexp.MustCompile(`\n{2,}`)
)

// PreCleanText strips table-of-contents lines, page numbers, junk lines
// and runs of blank lines from extracted document text before it is
// stored as resource content.
func PreCleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		switch {
		case reTOC.MatchString(line):
		case rePageNumber.MatchString(line):
		case reSpecialLines.MatchString(line):
		default:
			kept = append(kept, line)
		}
	}
	cleaned := strings.Join(kept, "\n")
	cleaned = reMultiNewLine.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned)
}
