package entity

import (
	"time"

	"github.com/google/uuid"
)

// Page is the text of a single PDF page, produced once by the extractor.
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	WordCount  int    `json:"word_count"`
}

type Document struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Filename    string
	ContentHash string `gorm:"uniqueIndex"`
	SizeBytes   int64
	PageCount   int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
