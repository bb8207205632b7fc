// Package keyword extracts salient tokens from free text.
package keyword

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the shortest token kept, in runes
const MinTokenLength = 4

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

// stopwords holds Swedish and English function words, diacritics already folded
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		that this these those with from have been were will would could should
		there their they them what when where which while about after before into
		over under than then also more most some such only other said says very
		just like year years your ours been being does doing done here onto upon
		because during through against between within without again further once
		http https html
		eller inte kommer efter till fran sedan ocksa enligt mellan innan dessa
		detta denna vara varit blev blir hade skulle kunde finns under utan aven
		eftersom medan vilka vilket vilken nagon nagot nagra alla andra samma
		mycket bara dock inom kring samt sina sitt sin enda just idag igar
	`) {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether a folded token is in the stopword set
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Fold lower-cases s and strips diacritics via canonical decomposition
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Tokens returns the ordered-unique salient tokens of text. max <= 0 means no cap.
func Tokens(text string, max int) []string {
	text = urlPattern.ReplaceAllString(text, " ")
	text = Fold(text)

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	var out []string
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) < MinTokenLength || IsStopword(tok) || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// DocumentFrequency counts, for every token, how many token lists contain it
func DocumentFrequency(docs [][]string) map[string]int {
	freq := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range doc {
			freq[tok]++
		}
	}
	return freq
}
