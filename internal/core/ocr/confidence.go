package ocr

import (
	"unicode"
	"unicode/utf8"
)

// LowConfidence is the score under which recognized text gets a warning.
const LowConfidence = 0.5

// HeuristicConfidence scores recognized text in 0..1 from its shape alone:
// the share of letters, digits, spaces and common punctuation, with a
// penalty for very short output.
func HeuristicConfidence(txt string) float32 {
	total := utf8.RuneCountInString(txt)
	if total == 0 {
		return 0
	}
	var good int
	for _, r := range txt {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			good++
			continue
		}
		switch r {
		case '.', ',', ';', ':', '\'', '"', '(', ')', '-', '$', '%', '/', '&', '?', '!':
			good++
		}
	}
	score := float32(good) / float32(total)
	if total < 40 {
		score *= 0.6
	}
	return score
}
