package book

import (
	"context"
	"log"

	"github.com/critical/catalog-service/internal/domain/book"
)

// QueryBooksUseCase 图书查询用例
// 设计说明:
// 1. 详情查询(按ID)走Cache-Aside:先查缓存,未命中查库并回填
// 2. 列表/搜索查询结果集不定,直接查库,不做缓存
type QueryBooksUseCase struct {
	svc   book.Service
	cache Cache
}

// NewQueryBooksUseCase 创建用例
func NewQueryBooksUseCase(svc book.Service, cache Cache) *QueryBooksUseCase {
	return &QueryBooksUseCase{svc: svc, cache: cache}
}

// GetByID 根据ID获取图书详情(带缓存)
func (uc *QueryBooksUseCase) GetByID(ctx context.Context, id uint) (*book.Book, error) {
	if cached, err := uc.cache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	b, err := uc.svc.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 回填失败只记警告,不影响查询结果
	if err := uc.cache.Set(ctx, b); err != nil {
		log.Printf("[book] WARN fill cache failed: book_id=%d err=%v", id, err)
	}

	return b, nil
}

// GetByISBN 根据ISBN获取图书
func (uc *QueryBooksUseCase) GetByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	return uc.svc.GetBookByISBN(ctx, isbn)
}

// GetByTitle 根据书名获取图书
func (uc *QueryBooksUseCase) GetByTitle(ctx context.Context, title string) ([]*book.Book, error) {
	return uc.svc.GetBooksByTitle(ctx, title)
}

// GetByOriginalTitle 根据原版书名获取图书
func (uc *QueryBooksUseCase) GetByOriginalTitle(ctx context.Context, originalTitle string) ([]*book.Book, error) {
	return uc.svc.GetBooksByOriginalTitle(ctx, originalTitle)
}

// GetBySynopsis 根据简介关键词获取图书
func (uc *QueryBooksUseCase) GetBySynopsis(ctx context.Context, keyword string) ([]*book.Book, error) {
	return uc.svc.GetBooksBySynopsis(ctx, keyword)
}

// List 查询全部图书
func (uc *QueryBooksUseCase) List(ctx context.Context) ([]*book.Book, error) {
	return uc.svc.ListBooks(ctx)
}

// ListAvailable 查询全部现货图书
func (uc *QueryBooksUseCase) ListAvailable(ctx context.Context) ([]*book.Book, error) {
	return uc.svc.ListAvailableBooks(ctx)
}

// Search 按属性组合搜索图书
func (uc *QueryBooksUseCase) Search(ctx context.Context, params book.SearchParams) ([]*book.Book, error) {
	return uc.svc.SearchBooks(ctx, params)
}
