package slack

import (
	"fmt"
	"strings"
	"unicode"
)

// maxChannelNameLength is Slack's hard cap on channel names.
const maxChannelNameLength = 80

// prohibitedSymbols are the non-ASCII punctuation marks Slack rejects.
// Most other non-ASCII characters (Japanese, accented letters) are
// valid channel name characters.
var prohibitedSymbols = map[rune]bool{
	'。': true, '、': true, '!': true, '?': true,
	'/': true, '\\': true, '.': true, ',': true,
	'@': true, '#': true, '$': true, '%': true, '^': true, '&': true,
	'*': true, '(': true, ')': true, '[': true, ']': true,
	'{': true, '}': true, '<': true, '>': true, '|': true, '~': true,
	'`': true, '\'': true, '"': true, ';': true, ':': true,
	'+': true, '=': true,
}

// NormalizeChannelName converts free text into a valid Slack channel
// name: spaces become hyphens, ASCII letters are lowercased, ASCII
// symbols other than hyphen and underscore are dropped, and non-ASCII
// characters survive unless Slack prohibits them.
func NormalizeChannelName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteRune('-')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		case r > 127 && !prohibitedSymbols[r]:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// GenerateRiskChannelName builds the channel name for a risk as
// {prefix}-{id}-{normalized-title}, capped at Slack's length limit.
// Both the prefix and the title go through NormalizeChannelName.
func GenerateRiskChannelName(riskID int64, riskName string, prefix string) string {
	name := fmt.Sprintf("%s-%d-%s", NormalizeChannelName(prefix), riskID, NormalizeChannelName(riskName))

	if len(name) > maxChannelNameLength {
		name = name[:maxChannelNameLength]
	}

	// Truncation or an empty title can leave a dangling separator
	return strings.TrimRight(name, "-")
}
