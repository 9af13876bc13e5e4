package similarity

import (
	"strings"
	"unicode"
)

// Checker detects near-duplicate headlines within a single run, so the same
// story picked up by both of the day's feeds is only published once.
type Checker struct {
	threshold float64
	ngramSize int
	seen      []map[string]struct{}
}

func New(threshold float64, ngramSize int) *Checker {
	return &Checker{threshold: threshold, ngramSize: ngramSize}
}

// normalize lowercases, removes punctuation, and collapses whitespace.
func (c *Checker) normalize(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			sb.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// Trigrams extracts all character n-grams from the text.
func (c *Checker) Trigrams(text string) map[string]struct{} {
	normalized := c.normalize(text)
	set := make(map[string]struct{})
	runes := []rune(normalized)
	for i := 0; i <= len(runes)-c.ngramSize; i++ {
		gram := string(runes[i : i+c.ngramSize])
		set[gram] = struct{}{}
	}
	return set
}

// JaccardSimilarity computes |A intersection B| / |A union B|.
func (c *Checker) JaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// TooSimilar reports whether the title is a near-duplicate of any title
// recorded this run. It does not record: only accepted candidates enter
// the comparison set, via Record.
func (c *Checker) TooSimilar(title string) bool {
	grams := c.Trigrams(title)
	for _, prev := range c.seen {
		if c.JaccardSimilarity(grams, prev) >= c.threshold {
			return true
		}
	}
	return false
}

// Record adds an accepted title to the run's comparison set.
func (c *Checker) Record(title string) {
	c.seen = append(c.seen, c.Trigrams(title))
}
