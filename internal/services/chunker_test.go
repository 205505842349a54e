package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	chunker := NewTextChunker()

	chunks := chunker.ChunkText("A short rubric paragraph.", 1000, 200)
	assert.Equal(t, []string{"A short rubric paragraph."}, chunks)
}

func TestChunkText_SplitsLongText(t *testing.T) {
	chunker := NewTextChunker()

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("Candidates are scored on education, skills and experience against the posted requirements.\n\n")
	}

	chunks := chunker.ChunkText(sb.String(), 300, 50)
	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 400, "chunk plus overlap stays near the limit")
	}
}

func TestChunkText_EmptyInput(t *testing.T) {
	chunker := NewTextChunker()

	assert.Empty(t, chunker.ChunkText("", 1000, 200))
	assert.Empty(t, chunker.ChunkText("\n\n  \n\n", 1000, 200))
}
