package implementation

import (
	"context"
	"errors"

	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/mapper"
	"clinidoc-be/internal/model"
	"clinidoc-be/internal/repository/contract"
	"clinidoc-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngestionJobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IngestionJobMapper
}

func NewIngestionJobRepository(db *gorm.DB) contract.IngestionJobRepository {
	return &IngestionJobRepositoryImpl{
		db:     db,
		mapper: mapper.NewIngestionJobMapper(),
	}
}

func (r *IngestionJobRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IngestionJobRepositoryImpl) Create(ctx context.Context, job *entity.IngestionJob) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *IngestionJobRepositoryImpl) Save(ctx context.Context, job *entity.IngestionJob) error {
	m := r.mapper.ToModel(job)
	// Upsert keeps Save safe whether the pipeline or the API created the row.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *IngestionJobRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IngestionJob, error) {
	var m model.IngestionJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *IngestionJobRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IngestionJob, error) {
	var models []*model.IngestionJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	jobs := make([]*entity.IngestionJob, len(models))
	for i, m := range models {
		jobs[i] = r.mapper.ToEntity(m)
	}
	return jobs, nil
}
