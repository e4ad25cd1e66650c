package book

import (
	"context"
	"log"

	"github.com/critical/catalog-service/internal/domain/book"
)

// UpdateBookUseCase 更新/删除图书用例
// 写路径统一在此处失效缓存:更新数据库成功后删除缓存,
// 下次查询重新加载(删除比更新可靠,避免并发写导致的脏缓存)
type UpdateBookUseCase struct {
	svc   book.Service
	cache Cache
}

// NewUpdateBookUseCase 创建用例
func NewUpdateBookUseCase(svc book.Service, cache Cache) *UpdateBookUseCase {
	return &UpdateBookUseCase{svc: svc, cache: cache}
}

// Execute 整单更新图书
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, in BookInput) (*book.Book, error) {
	b := in.toEntity(id)
	if err := uc.svc.UpdateBook(ctx, b); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, id)
	return b, nil
}

// Delete 删除图书
func (uc *UpdateBookUseCase) Delete(ctx context.Context, id uint) error {
	if err := uc.svc.DeleteBook(ctx, id); err != nil {
		return err
	}

	uc.invalidate(ctx, id)
	return nil
}

// invalidate 缓存失效
// 失败只记警告:缓存有TTL兜底,不让缓存故障影响写路径结果
func (uc *UpdateBookUseCase) invalidate(ctx context.Context, id uint) {
	if err := uc.cache.Delete(ctx, id); err != nil {
		log.Printf("[book] WARN invalidate cache failed: book_id=%d err=%v", id, err)
	}
}
