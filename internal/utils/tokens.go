package utils

// charsPerToken is the prompt-sizing heuristic: roughly one token per four
// characters of English text.
const charsPerToken = 4

// CountTokens estimates how many tokens text will consume. Any non-empty
// text counts as at least one token.
func CountTokens(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	if n < charsPerToken {
		return 1
	}
	return n / charsPerToken
}

// TruncateToTokenLimit cuts text so its estimate stays within limit tokens.
// The cut lands on a rune boundary; a non-positive limit yields "".
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	budgeted := limit * charsPerToken
	if len(runes) <= budgeted {
		return text
	}
	return string(runes[:budgeted])
}
