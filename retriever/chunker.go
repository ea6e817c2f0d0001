package retriever

import "strings"

// Split points in order of preference: paragraph break, line break,
// sentence end, word boundary, hard cut.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split performs recursive character splitting: chunks of at most size
// bytes, each following chunk starting overlap bytes before the previous
// cut so context survives the boundary. Concatenating the chunks minus
// the overlaps reconstructs the input exactly.
func Split(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	if overlap >= size {
		overlap = size / 2
	}

	var chunks []string
	start := 0
	for {
		remaining := len(text) - start
		if remaining <= size {
			chunks = append(chunks, text[start:])
			return chunks
		}

		cut := findCut(text[start : start+size])
		chunks = append(chunks, text[start:start+cut])

		next := start + cut - overlap
		if next <= start {
			next = start + cut
		}
		start = next
	}
}

// findCut returns the end offset of the best split inside the window,
// trying each separator in preference order and keeping its last
// occurrence. Falls back to a hard cut at the window edge.
func findCut(window string) int {
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i > 0 {
			return i + len(sep)
		}
	}
	return len(window)
}
