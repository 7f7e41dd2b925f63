package extract

import "strings"

var footerPrefixes = []string{"Page", "©"}

// FilterFooter drops boilerplate lines such as page numbers and copyright
// notices. Order is preserved and no other normalisation is applied.
func FilterFooter(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isFooter(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func isFooter(line string) bool {
	for _, p := range footerPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// CleanText applies the footer filter to raw page text and trims the result.
func CleanText(raw string) string {
	lines := FilterFooter(strings.Split(raw, "\n"))
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
