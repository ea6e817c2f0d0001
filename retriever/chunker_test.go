package retriever

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "This is sentence number %d of the test document. ", i)
	}
	return strings.TrimSuffix(b.String(), " ")
}

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	chunks := Split("short text", 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	assert.Nil(t, Split("", 1000, 200))
}

func TestSplitRespectsMaxSize(t *testing.T) {
	text := buildText(100)
	chunks := Split(text, 200, 40)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 200, "chunk %d", i)
	}
}

func TestSplitOverlapAndReconstruction(t *testing.T) {
	const overlap = 40
	text := buildText(100)
	chunks := Split(text, 200, overlap)
	require.Greater(t, len(chunks), 1)

	// Each chunk begins with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-overlap:]
		assert.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d", i)
	}

	// Dropping the overlaps reconstructs the input.
	var b strings.Builder
	b.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		b.WriteString(chunks[i][overlap:])
	}
	assert.Equal(t, text, b.String())
}

func TestSplitPrefersParagraphBreaks(t *testing.T) {
	text := strings.Repeat("alpha beta gamma.\n\n", 20)
	chunks := Split(strings.TrimSpace(text), 100, 10)

	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, "\n\n"), "chunk should end on a paragraph break: %q", chunk)
	}
}
