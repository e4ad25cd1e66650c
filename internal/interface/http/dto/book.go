package dto

import (
	"fmt"
	"time"

	appbook "github.com/critical/catalog-service/internal/application/book"
	"github.com/critical/catalog-service/internal/domain/book"
)

// dateLayout 请求/响应中的日期格式
const dateLayout = "2006-01-02"

// BookRequest HTTP图书写入请求(创建与更新共用)
// validator tag说明:
// - required: 必填字段
// - min/max: 数值范围校验
// - datetime: 日期格式校验
type BookRequest struct {
	Title            string `json:"title" binding:"required,max=200" example:"明室"`
	OriginalTitle    string `json:"original_title" binding:"max=200" example:"La chambre claire"`
	ISBN             string `json:"isbn" binding:"required" example:"9787549555510"`
	Edition          string `json:"edition" binding:"max=50" example:"第1版"`
	Synopsis         string `json:"synopsis" binding:"max=5000"`
	IsSeries         bool   `json:"is_series"`
	Availability     int    `json:"availability" binding:"min=0,max=3" example:"3"` // 0待发布1预售2可订3现货
	ReleaseDate      string `json:"release_date" binding:"omitempty,datetime=2006-01-02" example:"1980-01-01"`
	EditionDate      string `json:"edition_date" binding:"omitempty,datetime=2006-01-02" example:"2011-03-01"`
	Price            int64  `json:"price" binding:"required,min=1" example:"4500"` // 价格(分)
	PromotionalPrice int64  `json:"promotional_price" binding:"min=0" example:"0"`
	StockAvailable   int    `json:"stock_available" binding:"min=0" example:"100"`
	PublisherID      uint   `json:"publisher_id"`
	AuthorIDs        []uint `json:"author_ids"`
	LanguageIDs      []uint `json:"language_ids"`
	GenreIDs         []uint `json:"genre_ids"`
	TagIDs           []uint `json:"tag_ids"`
	FormatIDs        []uint `json:"format_ids"`
}

// ToInput HTTP请求 → 应用层写入参数
// 日期格式已由binding校验,这里的解析不会失败
func (r BookRequest) ToInput() appbook.BookInput {
	releaseDate, _ := time.Parse(dateLayout, r.ReleaseDate)
	editionDate, _ := time.Parse(dateLayout, r.EditionDate)

	return appbook.BookInput{
		Title:            r.Title,
		OriginalTitle:    r.OriginalTitle,
		ISBN:             r.ISBN,
		Edition:          r.Edition,
		Synopsis:         r.Synopsis,
		IsSeries:         r.IsSeries,
		Availability:     r.Availability,
		ReleaseDate:      releaseDate,
		EditionDate:      editionDate,
		Price:            r.Price,
		PromotionalPrice: r.PromotionalPrice,
		StockAvailable:   r.StockAvailable,
		PublisherID:      r.PublisherID,
		AuthorIDs:        r.AuthorIDs,
		LanguageIDs:      r.LanguageIDs,
		GenreIDs:         r.GenreIDs,
		TagIDs:           r.TagIDs,
		FormatIDs:        r.FormatIDs,
	}
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	OriginalTitle    string `json:"original_title,omitempty"`
	ISBN             string `json:"isbn"`
	Edition          string `json:"edition,omitempty"`
	Synopsis         string `json:"synopsis,omitempty"`
	IsSeries         bool   `json:"is_series"`
	Availability     string `json:"availability"`
	ReleaseDate      string `json:"release_date,omitempty"`
	EditionDate      string `json:"edition_date,omitempty"`
	Price            int64  `json:"price"`         // 价格(分)
	PriceDisplay     string `json:"price_display"` // 价格(元),方便前端显示
	PromotionalPrice int64  `json:"promotional_price,omitempty"`
	InPromotion      bool   `json:"in_promotion"`
	StockAvailable   int    `json:"stock_available"`
	PublisherID      uint   `json:"publisher_id,omitempty"`
	AuthorIDs        []uint `json:"author_ids,omitempty"`
	LanguageIDs      []uint `json:"language_ids,omitempty"`
	GenreIDs         []uint `json:"genre_ids,omitempty"`
	TagIDs           []uint `json:"tag_ids,omitempty"`
	FormatIDs        []uint `json:"format_ids,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// ToBookResponse 领域实体 → HTTP响应
func ToBookResponse(b *book.Book) *BookResponse {
	resp := &BookResponse{
		ID:               b.ID,
		Title:            b.Title,
		OriginalTitle:    b.OriginalTitle,
		ISBN:             b.ISBN,
		Edition:          b.Edition,
		Synopsis:         b.Synopsis,
		IsSeries:         b.IsSeries,
		Availability:     b.Availability.String(),
		Price:            b.Price,
		PriceDisplay:     FormatPrice(b.Price),
		PromotionalPrice: b.PromotionalPrice,
		InPromotion:      b.InPromotion(),
		StockAvailable:   b.StockAvailable,
		PublisherID:      b.PublisherID,
		AuthorIDs:        b.AuthorIDs,
		LanguageIDs:      b.LanguageIDs,
		GenreIDs:         b.GenreIDs,
		TagIDs:           b.TagIDs,
		FormatIDs:        b.FormatIDs,
		CreatedAt:        b.CreatedAt.Format(time.DateTime),
		UpdatedAt:        b.UpdatedAt.Format(time.DateTime),
	}

	if !b.ReleaseDate.IsZero() {
		resp.ReleaseDate = b.ReleaseDate.Format(dateLayout)
	}
	if !b.EditionDate.IsZero() {
		resp.EditionDate = b.EditionDate.Format(dateLayout)
	}

	return resp
}

// ToBookResponses 批量转换
func ToBookResponses(books []*book.Book) []*BookResponse {
	resps := make([]*BookResponse, len(books))
	for i, b := range books {
		resps[i] = ToBookResponse(b)
	}
	return resps
}

// SearchBooksRequest HTTP组合搜索请求(query参数)
// 未传的参数不参与过滤
type SearchBooksRequest struct {
	Author       string `form:"author" binding:"omitempty,max=100"`
	Tag          string `form:"tag" binding:"omitempty,max=100"`
	Genre        string `form:"genre" binding:"omitempty,max=100"`
	Language     string `form:"language" binding:"omitempty,max=100"`
	IsSeries     *bool  `form:"is_series"`
	MinPrice     int64  `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice     int64  `form:"max_price" binding:"omitempty,min=0"`
	InPromotion  *bool  `form:"in_promotion"`
	Availability *int   `form:"availability" binding:"omitempty,min=0,max=3"`
}

// ToSearchParams HTTP搜索请求 → 领域搜索参数
func (r SearchBooksRequest) ToSearchParams() book.SearchParams {
	params := book.SearchParams{
		Author:      r.Author,
		Tag:         r.Tag,
		Genre:       r.Genre,
		Language:    r.Language,
		IsSeries:    r.IsSeries,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
		InPromotion: r.InPromotion,
	}
	if r.Availability != nil {
		a := book.Availability(*r.Availability)
		params.Availability = &a
	}
	return params
}

// FormatPrice 格式化价格(分→元)
// 例如:4500分 → "45.00"
func FormatPrice(priceFen int64) string {
	return fmt.Sprintf("%.2f", float64(priceFen)/100.0)
}
