package mapper

import (
	"encoding/json"

	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/model"

	"gorm.io/datatypes"
)

type IngestionJobMapper struct{}

func NewIngestionJobMapper() *IngestionJobMapper {
	return &IngestionJobMapper{}
}

func (m *IngestionJobMapper) ToEntity(j *model.IngestionJob) *entity.IngestionJob {
	if j == nil {
		return nil
	}

	var skipped []int
	if len(j.SkippedChunks) > 0 {
		// A malformed column value is treated as no skipped chunks.
		_ = json.Unmarshal(j.SkippedChunks, &skipped)
	}

	updatedAt := j.UpdatedAt
	return &entity.IngestionJob{
		Id:                  j.Id,
		DocumentId:          j.DocumentId,
		State:               entity.JobState(j.State),
		TotalChunks:         j.TotalChunks,
		ChunksCommitted:     j.ChunksCommitted,
		EmbeddingsCreated:   j.EmbeddingsCreated,
		LastCheckpointIndex: j.LastCheckpointIndex,
		SkippedChunks:       skipped,
		TotalPages:          j.TotalPages,
		PagesDone:           j.PagesDone,
		Error:               j.Error,
		StartedAt:           j.StartedAt,
		UpdatedAt:           &updatedAt,
	}
}

func (m *IngestionJobMapper) ToModel(j *entity.IngestionJob) *model.IngestionJob {
	if j == nil {
		return nil
	}

	skipped, _ := json.Marshal(j.SkippedChunks)

	return &model.IngestionJob{
		Id:                  j.Id,
		DocumentId:          j.DocumentId,
		State:               string(j.State),
		TotalChunks:         j.TotalChunks,
		ChunksCommitted:     j.ChunksCommitted,
		EmbeddingsCreated:   j.EmbeddingsCreated,
		LastCheckpointIndex: j.LastCheckpointIndex,
		SkippedChunks:       datatypes.JSON(skipped),
		TotalPages:          j.TotalPages,
		PagesDone:           j.PagesDone,
		Error:               j.Error,
		StartedAt:           j.StartedAt,
	}
}
