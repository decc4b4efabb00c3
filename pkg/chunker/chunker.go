// Package chunker splits combined page text into overlapping word windows
// sized for embedding, keeping chunk-to-page provenance.
package chunker

import (
	"strings"

	"clinidoc-be/internal/entity"
)

// DefaultWindow is the default chunk size in words.
const DefaultWindow = 512

// DefaultOverlap is the default overlap between consecutive chunks in words.
const DefaultOverlap = 100

// MinChunkChars drops near-empty tail fragments: a chunk whose trimmed text
// is shorter than this is not worth embedding.
const MinChunkChars = 50

type Chunker struct {
	window  int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithWindow sets the chunk size in words.
func WithWindow(window int) Option {
	return func(c *Chunker) {
		if window > 0 {
			c.window = window
		}
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

func New(opts ...Option) *Chunker {
	c := &Chunker{
		window:  DefaultWindow,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.window {
		c.overlap = c.window / 4
	}
	return c
}

// pageSpan records the global word offset where a page's text begins, so a
// chunk can always be traced back to its source pages.
type pageSpan struct {
	pageNumber int
	startWord  int
	wordCount  int
}

// ChunkPages combines the page texts with offset bookkeeping and slides a
// word window over the result. Chunk boundaries are a pure function of the
// input text, which is what makes checkpointed resume deterministic.
func (c *Chunker) ChunkPages(pages []entity.Page) []entity.Chunk {
	words, spans := combinePages(pages)
	total := len(words)
	if total == 0 {
		return nil
	}

	step := c.window - c.overlap
	chunks := make([]entity.Chunk, 0, total/step+1)

	index := 0
	for start := 0; start < total; start += step {
		end := start + c.window
		if end > total {
			end = total
		}

		text := strings.Join(words[start:end], " ")
		if len(strings.TrimSpace(text)) < MinChunkChars {
			continue
		}

		chunks = append(chunks, entity.Chunk{
			Index:     index,
			Text:      text,
			StartPage: pageForWord(spans, start),
			EndPage:   pageForWord(spans, end-1),
			WordCount: end - start,
		})
		index++
	}
	return chunks
}

func combinePages(pages []entity.Page) ([]string, []pageSpan) {
	var words []string
	var spans []pageSpan

	for _, page := range pages {
		fields := strings.Fields(page.Text)
		if len(fields) == 0 {
			continue
		}
		spans = append(spans, pageSpan{
			pageNumber: page.PageNumber,
			startWord:  len(words),
			wordCount:  len(fields),
		})
		words = append(words, fields...)
	}
	return words, spans
}

func pageForWord(spans []pageSpan, wordIndex int) int {
	for i := len(spans) - 1; i >= 0; i-- {
		if wordIndex >= spans[i].startWord {
			return spans[i].pageNumber
		}
	}
	if len(spans) > 0 {
		return spans[0].pageNumber
	}
	return 0
}
