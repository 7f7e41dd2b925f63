package extract

import "strings"

// TitleFromText guesses a title as the trimmed first line of text. It does no
// plausibility checks, so a blank first line yields an empty title. Empty
// text has no title.
func TitleFromText(text string) *string {
	if text == "" {
		return nil
	}
	first, _, _ := strings.Cut(text, "\n")
	title := strings.TrimSpace(first)
	return &title
}
