package notes

import "strings"

// FileName converts a character name into a note file name stem.
// Path separators and characters most file systems reject are dropped, and
// surrounding spaces and dots are trimmed.
//
// Postcondition: the result contains none of `/\:*?"<>|` or control characters,
// and FileName(FileName(s)) == FileName(s).
func FileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`/\:*?"<>|`, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), " .")
}
