package reference

import (
	"context"

	apperrors "github.com/critical/catalog-service/pkg/errors"
)

// 参考实体通用错误
var (
	// ErrNameRequired 名称必填
	ErrNameRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "名称不能为空")

	// ErrDuplicateName 名称已存在
	ErrDuplicateName = apperrors.New(apperrors.ErrCodeDuplicateEntry, "名称已存在")

	// ErrNotFound 记录不存在(通用,各实体仓储返回各自的细分错误)
	ErrNotFound = apperrors.New(apperrors.ErrCodeNotFound, "记录不存在")
)

// Validatable 可校验实体
type Validatable interface {
	Validate() error
}

// Repository 参考实体通用仓储接口
// 设计说明:六种参考实体CRUD形态完全一致,用泛型约束统一接口,
// infrastructure层提供一个泛型实现,按实体实例化六次
type Repository[T any] interface {
	// Create 创建记录
	Create(ctx context.Context, entity *T) error

	// FindByID 根据ID查找
	FindByID(ctx context.Context, id uint) (*T, error)

	// FindAll 查询全部
	FindAll(ctx context.Context) ([]*T, error)

	// Update 更新记录
	Update(ctx context.Context, entity *T) error

	// Delete 删除记录(软删除)
	Delete(ctx context.Context, id uint) error
}
