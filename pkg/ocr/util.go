package ocr

import "strings"

// Snippet returns a shortened version of text for logging.
func Snippet(s string, max int) string {
	s = normalizeOCRText(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// normalizeOCRText collapses whitespace and replaces newlines/tabs.
func normalizeOCRText(t string) string {
	t = strings.ReplaceAll(t, "\n", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	return strings.Join(strings.Fields(t), " ")
}

// cleanText trims trailing blanks on every line and surrounding blank lines,
// keeping the line layout a person reads in the text area.
func cleanText(t string) string {
	t = strings.ReplaceAll(t, "\r\n", "\n")
	lines := strings.Split(t, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
