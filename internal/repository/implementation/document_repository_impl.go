package implementation

import (
	"context"
	"errors"

	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/mapper"
	"clinidoc-be/internal/model"
	"clinidoc-be/internal/repository/contract"
	"clinidoc-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *entity.Document, content []byte, extractionJSON []byte) error {
	m := r.mapper.ToModel(document)
	m.Content = content
	m.Extraction = datatypes.JSON(extractionJSON)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	// Raw payload and extraction JSON are large; FindOne serves metadata only.
	if err := query.Omit("content", "extraction").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) Payload(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var m model.Document
	if err := r.db.WithContext(ctx).Select("content").Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return m.Content, nil
}

func (r *DocumentRepositoryImpl) ExtractionJSON(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var m model.Document
	if err := r.db.WithContext(ctx).Select("extraction").Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return []byte(m.Extraction), nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}
