package dto

import "github.com/google/uuid"

type KnowledgeSearchResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	StartPage  int       `json:"start_page"`
	EndPage    int       `json:"end_page"`
	Similarity float64   `json:"similarity"`
}
