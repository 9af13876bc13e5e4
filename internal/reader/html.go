package reader

import (
	"regexp"
	"strings"
)

var (
	scriptRe     = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// entityReplacer decodes the handful of entities that actually show up in
// feed descriptions. Anything rarer passes through untouched.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// StripHTML reduces an HTML fragment to plain text: script and style blocks
// are dropped entirely, remaining tags collapse to spaces, common entities
// are decoded, and whitespace runs collapse to a single space.
func StripHTML(s string) string {
	s = scriptRe.ReplaceAllString(s, " ")
	s = styleRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// The four YouTube URL shapes we recognize, each capturing the 11-character
// video id. Checked in order; first match wins.
var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`watch\?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/v/([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID scans text for an embedded YouTube URL and returns the
// video id, or "" if no recognized shape is present.
func ExtractVideoID(text string) string {
	for _, re := range videoPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
