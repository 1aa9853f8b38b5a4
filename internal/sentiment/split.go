package sentiment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// abbreviations end in a period but do not end a sentence.
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {}, "st": {},
	"gen": {}, "gov": {}, "sen": {}, "rep": {}, "lt": {}, "col": {}, "capt": {},
	"inc": {}, "corp": {}, "ltd": {}, "co": {}, "vs": {}, "etc": {}, "no": {},
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "jun": {}, "jul": {}, "aug": {},
	"sep": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
}

// SplitSentences breaks text at '.', '!' or '?' (plus any closing quotes or brackets)
// followed by whitespace. Known abbreviations, single-letter initials and dotted
// acronyms such as "U.S." do not end a sentence.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		for end < len(runes) && strings.ContainsRune(".!?\"')]”’", runes[end]) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			continue
		}
		if r == '.' && end-i == 1 && isAbbreviation(runes[start:i]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isAbbreviation(before []rune) bool {
	j := len(before)
	for j > 0 && !unicode.IsSpace(before[j-1]) {
		j--
	}
	word := string(before[j:])
	if word == "" {
		return false
	}
	if strings.Contains(word, ".") {
		return true
	}
	if utf8.RuneCountInString(word) == 1 && unicode.IsUpper([]rune(word)[0]) {
		return true
	}
	_, ok := abbreviations[strings.ToLower(word)]
	return ok
}
