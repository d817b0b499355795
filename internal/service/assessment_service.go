package service

import (
	"context"
	"fmt"

	"damage-assessment/internal/domain"
	"damage-assessment/internal/events"
	"damage-assessment/internal/mapping"
	"damage-assessment/internal/repository"

	"go.uber.org/zap"
)

// AssessmentService 按任务号抓取/编辑损伤记录
// 配置在每次调用时显式传入，服务本身不持有默认配置
type AssessmentService struct {
	stores    repository.RowStoreFactory
	publisher events.Publisher
	logger    *zap.Logger
}

// NewAssessmentService 创建服务；publisher 可为 nil
func NewAssessmentService(stores repository.RowStoreFactory, publisher events.Publisher, logger *zap.Logger) *AssessmentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &AssessmentService{
		stores:    stores,
		publisher: publisher,
		logger:    logger,
	}
}

// LoadJob fetches every row of jobID and returns the normalized, ordered
// records. An empty result is not an error.
func (s *AssessmentService) LoadJob(ctx context.Context, jobID string, cfg domain.Configuration) ([]domain.Record, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := s.stores.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreQueryFailed, err)
	}

	rows, err := store.Select(ctx, cfg.TableName, cfg.Columns.JobID, jobID)
	if err != nil {
		s.logger.Error("Failed to load job",
			zap.String("job_id", jobID),
			zap.String("table", cfg.TableName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreQueryFailed, err)
	}
	if len(rows) == 0 {
		s.logger.Info("Job has no rows", zap.String("job_id", jobID))
		return []domain.Record{}, nil
	}

	// 计数必须在排序前完成：序号取决于存储返回的顺序
	records := mapping.MapRows(rows, cfg)
	records = mapping.ResolveCounts(records, cfg.EffectiveCountSource())
	records = mapping.OrderRecords(records)

	s.logger.Info("Loaded job",
		zap.String("job_id", jobID),
		zap.Int("record_count", len(records)),
	)
	return records, nil
}

// UpdateField writes one logical field of one record. The caller applies the
// change locally first and keeps it even when this returns an error.
func (s *AssessmentService) UpdateField(ctx context.Context, recordID string, field domain.LogicalField, value any, cfg domain.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	column, ok := cfg.Columns.Column(field)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}

	store, err := s.stores.Open(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUpdateFailed, err)
	}

	idColumn := cfg.PrimaryKeyColumn()
	if err := store.Update(ctx, cfg.TableName, idColumn, recordID, map[string]any{column: value}); err != nil {
		s.logger.Error("Failed to update field",
			zap.String("record_id", recordID),
			zap.String("field", string(field)),
			zap.String("column", column),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", domain.ErrStoreUpdateFailed, err)
	}

	s.logger.Info("Updated field",
		zap.String("record_id", recordID),
		zap.String("field", string(field)),
		zap.String("column", column),
	)

	evt := events.NewRecordUpdated(recordID, string(field), column, cfg.TableName, value)
	if err := s.publisher.PublishRecordUpdated(ctx, evt); err != nil {
		s.logger.Warn("Failed to publish edit event",
			zap.String("record_id", recordID),
			zap.Error(err),
		)
	}
	return nil
}
