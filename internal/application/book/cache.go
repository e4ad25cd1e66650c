package book

import (
	"context"

	"github.com/critical/catalog-service/internal/domain/book"
)

// Cache 图书详情缓存接口
// 由infrastructure/persistence/redis.BookCache实现
// Get未命中返回(nil, nil),调用方回源数据库
type Cache interface {
	Get(ctx context.Context, bookID uint) (*book.Book, error)
	Set(ctx context.Context, b *book.Book) error
	Delete(ctx context.Context, bookID uint) error
}
