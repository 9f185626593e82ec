// Package chunker splits extracted document text into fixed-size word windows.
package chunker

import "strings"

// DefaultSize is the default number of words per chunk.
const DefaultSize = 400

// Chunk splits text on whitespace and groups consecutive words into segments of
// exactly size words, the last one possibly shorter. Segments never overlap and
// words keep their original order, re-joined with single spaces. A size of zero
// or less falls back to DefaultSize. Blank input yields no segments.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
