package mapper

import (
	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	updatedAt := d.UpdatedAt
	return &entity.Document{
		Id:          d.Id,
		Filename:    d.Filename,
		ContentHash: d.ContentHash,
		SizeBytes:   d.SizeBytes,
		PageCount:   d.PageCount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   &updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:          d.Id,
		Filename:    d.Filename,
		ContentHash: d.ContentHash,
		SizeBytes:   d.SizeBytes,
		PageCount:   d.PageCount,
	}
}
