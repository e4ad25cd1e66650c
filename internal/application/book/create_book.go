package book

import (
	"context"
	"time"

	"github.com/critical/catalog-service/internal/domain/book"
)

// CreateBookUseCase 创建图书用例
type CreateBookUseCase struct {
	svc book.Service
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(svc book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{svc: svc}
}

// BookInput 图书写入参数(创建与更新共用)
type BookInput struct {
	Title            string
	OriginalTitle    string
	ISBN             string
	Edition          string
	Synopsis         string
	IsSeries         bool
	Availability     int
	ReleaseDate      time.Time
	EditionDate      time.Time
	Price            int64 // 分
	PromotionalPrice int64 // 分,0表示无促销
	StockAvailable   int
	PublisherID      uint
	AuthorIDs        []uint
	LanguageIDs      []uint
	GenreIDs         []uint
	TagIDs           []uint
	FormatIDs        []uint
}

// toEntity 写入参数 → 领域实体
func (in BookInput) toEntity(id uint) *book.Book {
	return &book.Book{
		ID:               id,
		Title:            in.Title,
		OriginalTitle:    in.OriginalTitle,
		ISBN:             in.ISBN,
		Edition:          in.Edition,
		Synopsis:         in.Synopsis,
		IsSeries:         in.IsSeries,
		Availability:     book.Availability(in.Availability),
		ReleaseDate:      in.ReleaseDate,
		EditionDate:      in.EditionDate,
		Price:            in.Price,
		PromotionalPrice: in.PromotionalPrice,
		StockAvailable:   in.StockAvailable,
		PublisherID:      in.PublisherID,
		AuthorIDs:        in.AuthorIDs,
		LanguageIDs:      in.LanguageIDs,
		GenreIDs:         in.GenreIDs,
		TagIDs:           in.TagIDs,
		FormatIDs:        in.FormatIDs,
	}
}

// Execute 执行创建
// 业务规则校验(ISBN格式、价格、库存、状态取值)在领域服务内完成
func (uc *CreateBookUseCase) Execute(ctx context.Context, in BookInput) (*book.Book, error) {
	return uc.svc.CreateBook(ctx, in.toEntity(0))
}
