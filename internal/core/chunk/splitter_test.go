package chunk

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Basics(t *testing.T) {
	assert.Empty(t, Split("", 100))
	assert.Equal(t, []string{"short."}, Split("short.", 100))
	assert.Equal(t, []string{"abcd", "ef"}, Split("abcdef", 4))
}

func TestSplit_DefaultSize(t *testing.T) {
	text := strings.Repeat("x", DefaultMaxChars+10)
	chunks := Split(text, 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, DefaultMaxChars, len(chunks[0]))
}

func TestSplit_BreaksAfterSentence(t *testing.T) {
	head := strings.Repeat("a", 400) + "."
	text := head + strings.Repeat("b", 300)
	chunks := Split(text, 500)
	require.Len(t, chunks, 2)
	assert.Equal(t, head, chunks[0])
	assert.Equal(t, strings.Repeat("b", 300), chunks[1])
}

func TestSplit_IgnoresEarlyDot(t *testing.T) {
	// '.' at offset 300 is not beyond MinBreakOffset, so the hard cut wins.
	text := strings.Repeat("a", 300) + "." + strings.Repeat("b", 400)
	chunks := Split(text, 500)
	require.Len(t, chunks, 2)
	assert.Equal(t, 500, utf8.RuneCountInString(chunks[0]))
}

func TestSplit_LastChunkNotShortened(t *testing.T) {
	text := strings.Repeat("a", 350) + "." + "tail"
	assert.Equal(t, []string{text}, Split(text, 1000))
}

func TestSplit_CountsRunes(t *testing.T) {
	text := strings.Repeat("é", 10)
	chunks := Split(text, 4)
	assert.Equal(t, []string{"éééé", "éééé", "éé"}, chunks)
}

func TestSplit_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abc .\nü")
	for i := 0; i < 300; i++ {
		n := rng.Intn(3000)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		text := b.String()
		maxChars := 1 + rng.Intn(900)

		chunks := Split(text, maxChars)
		assert.Equal(t, text, strings.Join(chunks, ""))
		for _, c := range chunks {
			assert.NotEmpty(t, c)
			assert.LessOrEqual(t, utf8.RuneCountInString(c), maxChars)
			assert.Equal(t, []string{c}, Split(c, maxChars), "re-splitting a chunk is a no-op")
		}
	}
}
