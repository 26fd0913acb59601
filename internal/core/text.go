package core

// DescriptionPreviewLen is how many characters the transaction table shows.
const DescriptionPreviewLen = 30

const ellipsis = "..."

// Truncate shortens s to its first n characters followed by "..." when it is
// longer than n characters. Counting is by rune, not byte.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + ellipsis
}
