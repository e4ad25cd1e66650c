package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/critical/catalog-service/internal/domain/reference"
	apperrors "github.com/critical/catalog-service/pkg/errors"
)

// referenceRepository 参考实体仓储实现(MySQL)
// 设计说明:
// 1. 六种参考实体(作者/出版社/体裁/语言/装帧/标签)CRUD形态完全一致,
//    用泛型统一实现,按类型参数实例化六次
// 2. 参考实体自身携带gorm tag,无需model/entity转换
type referenceRepository[T any] struct {
	db *gorm.DB
}

// NewReferenceRepository 创建参考实体仓储
func NewReferenceRepository[T any](db *gorm.DB) reference.Repository[T] {
	return &referenceRepository[T]{db: db}
}

// Create 创建实体
func (r *referenceRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if isDuplicateError(err) {
			return reference.ErrDuplicateName
		}
		return apperrors.Wrap(err, "创建记录失败")
	}
	return nil
}

// FindByID 根据ID查找实体
func (r *referenceRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reference.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "查询记录失败")
	}

	return &entity, nil
}

// FindAll 查询全部实体
func (r *referenceRepository[T]) FindAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	if err := r.db.WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询列表失败")
	}
	return entities, nil
}

// Update 更新实体(全字段)
func (r *referenceRepository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		if isDuplicateError(err) {
			return reference.ErrDuplicateName
		}
		return apperrors.Wrap(err, "更新记录失败")
	}
	return nil
}

// Delete 删除实体(软删除)
func (r *referenceRepository[T]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除记录失败")
	}

	if result.RowsAffected == 0 {
		return reference.ErrNotFound
	}

	return nil
}
