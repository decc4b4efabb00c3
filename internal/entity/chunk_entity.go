package entity

// Chunk is an immutable span of combined document text sized for embedding.
// StartPage/EndPage record which source pages the span overlaps.
type Chunk struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
	WordCount int    `json:"word_count"`
}
