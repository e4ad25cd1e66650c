package reference

import (
	"context"
)

// Service 参考实体通用领域服务
// 校验后委托仓储,六种实体各实例化一个
type Service[T any] struct {
	repo Repository[T]
}

// NewService 创建参考实体服务
func NewService[T any](repo Repository[T]) *Service[T] {
	return &Service[T]{repo: repo}
}

// Create 创建记录
func (s *Service[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if v, ok := any(entity).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

// GetByID 根据ID获取
func (s *Service[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	return s.repo.FindByID(ctx, id)
}

// List 查询全部
func (s *Service[T]) List(ctx context.Context) ([]*T, error) {
	return s.repo.FindAll(ctx)
}

// Update 更新记录
func (s *Service[T]) Update(ctx context.Context, id uint, entity *T) error {
	if v, ok := any(entity).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	// 确认记录存在,避免Update悄悄变成Insert
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	return s.repo.Update(ctx, entity)
}

// Delete 删除记录
func (s *Service[T]) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
