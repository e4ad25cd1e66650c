package book

import (
	"context"
	"errors"
	"regexp"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
// 3. 库存事件的应用不走本服务,由stock.Applier在事务内完成
type Service interface {
	// CreateBook 创建图书
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 价格必须>0,促销价>=0
	// - 库存必须>=0
	// - ISBN不能重复
	CreateBook(ctx context.Context, b *Book) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetBookByISBN 根据ISBN获取图书
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)

	// GetBooksByTitle 根据书名获取图书
	GetBooksByTitle(ctx context.Context, title string) ([]*Book, error)

	// GetBooksByOriginalTitle 根据原版书名获取图书
	GetBooksByOriginalTitle(ctx context.Context, originalTitle string) ([]*Book, error)

	// GetBooksBySynopsis 根据简介关键词获取图书
	GetBooksBySynopsis(ctx context.Context, keyword string) ([]*Book, error)

	// ListBooks 查询全部图书
	ListBooks(ctx context.Context) ([]*Book, error)

	// ListAvailableBooks 查询全部现货图书
	ListAvailableBooks(ctx context.Context) ([]*Book, error)

	// SearchBooks 按属性组合搜索图书
	SearchBooks(ctx context.Context, params SearchParams) ([]*Book, error)

	// UpdateBook 更新图书信息(整单更新)
	UpdateBook(ctx context.Context, b *Book) error

	// DeleteBook 删除图书
	DeleteBook(ctx context.Context, id uint) error
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, b *Book) (*Book, error) {
	// 1. 业务规则校验
	if err := validateBook(b); err != nil {
		return nil, err
	}

	// 2. 检查ISBN是否已存在
	existing, err := s.repo.FindByISBN(ctx, b.ISBN)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	// 3. 持久化
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBookByISBN 根据ISBN获取图书
func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	return s.repo.FindByISBN(ctx, isbn)
}

// GetBooksByTitle 根据书名获取图书
func (s *service) GetBooksByTitle(ctx context.Context, title string) ([]*Book, error) {
	books, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrBookNotFound
	}
	return books, nil
}

// GetBooksByOriginalTitle 根据原版书名获取图书
func (s *service) GetBooksByOriginalTitle(ctx context.Context, originalTitle string) ([]*Book, error) {
	books, err := s.repo.FindByOriginalTitle(ctx, originalTitle)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrBookNotFound
	}
	return books, nil
}

// GetBooksBySynopsis 根据简介关键词获取图书
func (s *service) GetBooksBySynopsis(ctx context.Context, keyword string) ([]*Book, error) {
	books, err := s.repo.FindBySynopsis(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrBookNotFound
	}
	return books, nil
}

// ListBooks 查询全部图书
func (s *service) ListBooks(ctx context.Context) ([]*Book, error) {
	return s.repo.FindAll(ctx)
}

// ListAvailableBooks 查询全部现货图书
func (s *service) ListAvailableBooks(ctx context.Context) ([]*Book, error) {
	return s.repo.FindAllAvailable(ctx)
}

// SearchBooks 按属性组合搜索图书
func (s *service) SearchBooks(ctx context.Context, params SearchParams) ([]*Book, error) {
	books, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrBookNotFound
	}
	return books, nil
}

// UpdateBook 更新图书信息
// HTTP PUT路径:整单覆盖更新,与库存事件的行级锁互斥
func (s *service) UpdateBook(ctx context.Context, b *Book) error {
	if err := validateBook(b); err != nil {
		return err
	}

	// 确认图书存在
	existing, err := s.repo.FindByID(ctx, b.ID)
	if err != nil {
		return err
	}

	// ISBN变更时检查重复
	if existing.ISBN != b.ISBN {
		other, err := s.repo.FindByISBN(ctx, b.ISBN)
		if err == nil && other != nil && other.ID != b.ID {
			return ErrISBNDuplicate
		}
		if err != nil && !errors.Is(err, ErrBookNotFound) {
			return err
		}
	}

	return s.repo.Update(ctx, b)
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

// validateBook 图书字段校验
func validateBook(b *Book) error {
	if !isValidISBN(b.ISBN) {
		return ErrInvalidISBN
	}
	if b.Price <= 0 || b.PromotionalPrice < 0 {
		return ErrInvalidPrice
	}
	if b.StockAvailable < 0 {
		return ErrInvalidStock
	}
	if !b.Availability.Valid() {
		return ErrInvalidAvailability
	}
	return nil
}

// isValidISBN 校验ISBN格式
// 支持:
// - ISBN-10: 10位数字
// - ISBN-13: 13位数字
// 简化实现:只检查位数和是否全为数字(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	// 去除可能的分隔符(如978-7-115-42802-8 → 9787115428028)
	re := regexp.MustCompile(`[^0-9Xx]`)
	clean := re.ReplaceAllString(isbn, "")

	length := len(clean)
	return length == 10 || length == 13
}
