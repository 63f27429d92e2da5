package chunk

const (
	// DefaultMaxChars is used when Split is given a non-positive size.
	DefaultMaxChars = 1600
	// MinBreakOffset is how far into a chunk a '.' must sit before we break there.
	MinBreakOffset = 300
)

// Split cuts text into consecutive chunks of at most maxChars runes. A chunk
// that is not the last one ends just after its final '.' when that '.' lies
// more than MinBreakOffset runes into the chunk. Joining the chunks gives
// back text exactly; empty text yields no chunks.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	runes := []rune(text)
	var chunks []string
	for cursor := 0; cursor < len(runes); {
		end := min(cursor+maxChars, len(runes))
		if end < len(runes) {
			if dot := lastDot(runes[cursor:end]); dot > MinBreakOffset {
				end = cursor + dot + 1
			}
		}
		chunks = append(chunks, string(runes[cursor:end]))
		cursor = end
	}
	return chunks
}

func lastDot(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == '.' {
			return i
		}
	}
	return -1
}
