package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%d", i)
	}
	return out
}

func TestChunk_SegmentCountAndReconstruction(t *testing.T) {
	tests := []struct {
		name  string
		words int
		size  int
		want  int
	}{
		{name: "exact multiple", words: 800, size: 400, want: 2},
		{name: "remainder", words: 801, size: 400, want: 3},
		{name: "smaller than size", words: 7, size: 400, want: 1},
		{name: "size one", words: 5, size: 1, want: 5},
		{name: "odd sizes", words: 23, size: 4, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := words(tt.words)
			chunks := Chunk(strings.Join(in, " "), tt.size)
			require.Len(t, chunks, tt.want)

			var rebuilt []string
			for i, c := range chunks {
				got := strings.Fields(c)
				if i < len(chunks)-1 {
					assert.Len(t, got, tt.size, "chunk %d", i)
				} else {
					assert.LessOrEqual(t, len(got), tt.size)
					assert.NotEmpty(t, got)
				}
				rebuilt = append(rebuilt, got...)
			}
			assert.Equal(t, in, rebuilt)
		})
	}
}

func TestChunk_NormalisesWhitespace(t *testing.T) {
	text := "  Appointments\tcan be\n\ncancelled   24 hours\r\nin advance.  "
	chunks := Chunk(text, 3)
	assert.Equal(t, []string{"Appointments can be", "cancelled 24 hours", "in advance."}, chunks)
}

func TestChunk_BlankInput(t *testing.T) {
	assert.Nil(t, Chunk("", 400))
	assert.Nil(t, Chunk(" \n\t ", 400))
}

func TestChunk_DefaultSize(t *testing.T) {
	in := strings.Join(words(DefaultSize+1), " ")
	chunks := Chunk(in, 0)
	require.Len(t, chunks, 2)
	assert.Len(t, strings.Fields(chunks[0]), DefaultSize)
	assert.Equal(t, fmt.Sprintf("w%d", DefaultSize), chunks[1])
}

func TestChunk_Deterministic(t *testing.T) {
	in := strings.Join(words(1234), " ")
	assert.Equal(t, Chunk(in, 97), Chunk(in, 97))
}
