package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document stores the immutable raw upload plus the extraction snapshot.
// The payload is kept so a resumed job can re-derive chunks deterministically.
type Document struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Filename    string
	ContentHash string `gorm:"uniqueIndex;size:64"`
	Content     []byte `gorm:"type:bytea"`
	SizeBytes   int64
	PageCount   int
	// Extraction holds the ClinicalExtractionResult JSON produced at intake.
	Extraction datatypes.JSON
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
