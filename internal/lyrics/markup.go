package lyrics

import (
	"regexp"
	"strings"
)

var ignoredPunctuation = regexp.MustCompile(`[/,!—]`)

func isWordBoundary(r rune) bool {
	return r == ' ' || r == LineBreak || r == SpaceBreak
}

// word under the cursor, cursor counted in runes
func CurrentWord(body string, cursor int) string {
	runes := []rune(body)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}

	left, right := cursor, cursor
	for left > 0 && !isWordBoundary(runes[left-1]) {
		left--
	}
	for right < len(runes) && !isWordBoundary(runes[right]) {
		right++
	}

	return string(runes[left:right])
}

// SlashifyAll applies the syllable split of slashed (e.g. "al/chem/y") to
// every occurrence of word in lyrics. Matching ignores case and the
// characters / , ! and —, and the original casing and separators are kept.
func SlashifyAll(lyrics, word, slashed string) string {
	var result strings.Builder
	var current []rune

	flush := func() {
		w := string(current)
		if equivalentWords(w, word) {
			result.WriteString(applySlashes(w, slashed))
		} else {
			result.WriteString(w)
		}
		current = current[:0]
	}

	for _, r := range lyrics {
		if isWordBoundary(r) {
			flush()
			result.WriteRune(r)
			continue
		}
		current = append(current, r)
	}
	flush()

	return result.String()
}

func equivalentWords(a, b string) bool {
	a = ignoredPunctuation.ReplaceAllString(strings.ToLower(a), "")
	b = ignoredPunctuation.ReplaceAllString(strings.ToLower(b), "")
	return a == b
}

// inserts '/' into word at the positions template has them
func applySlashes(word, template string) string {
	result := []rune(strings.ReplaceAll(word, string(SubBreak), ""))
	for i, r := range []rune(template) {
		if r != SubBreak {
			continue
		}
		at := i
		if at > len(result) {
			at = len(result)
		}
		result = append(result[:at], append([]rune{SubBreak}, result[at:]...)...)
	}
	return string(result)
}
