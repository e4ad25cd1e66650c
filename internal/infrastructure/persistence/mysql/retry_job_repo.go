package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/critical/catalog-service/internal/scheduler"
	apperrors "github.com/critical/catalog-service/pkg/errors"
)

// retryJobRepository 重试任务仓储实现(MySQL)
// 设计说明:
// 1. 认领采用两步CAS:先查询到期任务,再按id+status条件UPDATE为running,
//    RowsAffected=0表示被其他实例抢先,跳过即可
// 2. 认领UPDATE同时自增attempts,计数与状态变更原子完成
type retryJobRepository struct {
	db *gorm.DB
}

// NewRetryJobRepository 创建重试任务仓储
func NewRetryJobRepository(db *gorm.DB) scheduler.JobRepository {
	return &retryJobRepository{db: db}
}

// Enqueue 创建一个延迟重试任务
func (r *retryJobRepository) Enqueue(ctx context.Context, bookID uint, delta int, runAt time.Time) error {
	model := &RetryJobModel{
		BookID: bookID,
		Delta:  delta,
		Status: scheduler.StatusPending,
		RunAt:  runAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建重试任务失败")
	}
	return nil
}

// ClaimDue 认领一批到期任务
// 返回的任务状态已置为running,attempts已自增
func (r *retryJobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]scheduler.Job, error) {
	var models []RetryJobModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND run_at <= ?", scheduler.StatusPending, now).
		Order("run_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询到期任务失败")
	}

	claimed := make([]scheduler.Job, 0, len(models))
	for i := range models {
		m := &models[i]

		// CAS认领:只有仍处于pending的任务才会被本实例拿走
		result := r.db.WithContext(ctx).Model(&RetryJobModel{}).
			Where("id = ? AND status = ?", m.ID, scheduler.StatusPending).
			Updates(map[string]interface{}{
				"status":   scheduler.StatusRunning,
				"attempts": gorm.Expr("attempts + 1"),
			})
		if result.Error != nil {
			return claimed, apperrors.Wrap(result.Error, "认领任务失败")
		}
		if result.RowsAffected == 0 {
			continue // 被其他实例抢先
		}

		claimed = append(claimed, scheduler.Job{
			ID:        m.ID,
			BookID:    m.BookID,
			Delta:     m.Delta,
			Attempts:  m.Attempts + 1,
			Status:    scheduler.StatusRunning,
			RunAt:     m.RunAt,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}

	return claimed, nil
}

// Reschedule 重新排期:状态回到pending,更新下次执行时间
func (r *retryJobRepository) Reschedule(ctx context.Context, jobID uint, runAt time.Time) error {
	return r.setStatus(ctx, jobID, map[string]interface{}{
		"status": scheduler.StatusPending,
		"run_at": runAt,
	})
}

// MarkDone 标记任务成功完成
func (r *retryJobRepository) MarkDone(ctx context.Context, jobID uint) error {
	return r.setStatus(ctx, jobID, map[string]interface{}{"status": scheduler.StatusDone})
}

// MarkFailed 标记任务失败(重试耗尽或不可恢复错误)
func (r *retryJobRepository) MarkFailed(ctx context.Context, jobID uint) error {
	return r.setStatus(ctx, jobID, map[string]interface{}{"status": scheduler.StatusFailed})
}

// CountPending 统计待执行任务数(监控用)
func (r *retryJobRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RetryJobModel{}).
		Where("status = ?", scheduler.StatusPending).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计待执行任务失败")
	}
	return count, nil
}

func (r *retryJobRepository) setStatus(ctx context.Context, jobID uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&RetryJobModel{}).
		Where("id = ?", jobID).
		Updates(updates)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新任务状态失败")
	}
	return nil
}
