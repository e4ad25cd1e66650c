package dto

import (
	"time"

	"github.com/critical/catalog-service/internal/domain/reference"
)

// AuthorRequest HTTP作者写入请求
type AuthorRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	OriginalName string `json:"original_name" binding:"max=100"`
	DateOfBirth  string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	PlaceOfBirth string `json:"place_of_birth" binding:"max=100"`
	DateOfDeath  string `json:"date_of_death" binding:"omitempty,datetime=2006-01-02"`
	PlaceOfDeath string `json:"place_of_death" binding:"max=100"`
	About        string `json:"about" binding:"max=5000"`
}

// ToEntity HTTP请求 → 实体
func (r AuthorRequest) ToEntity() *reference.Author {
	a := &reference.Author{
		Name:         r.Name,
		OriginalName: r.OriginalName,
		PlaceOfBirth: r.PlaceOfBirth,
		PlaceOfDeath: r.PlaceOfDeath,
		About:        r.About,
	}
	if r.DateOfBirth != "" {
		t, _ := time.Parse(dateLayout, r.DateOfBirth)
		a.DateOfBirth = &t
	}
	if r.DateOfDeath != "" {
		t, _ := time.Parse(dateLayout, r.DateOfDeath)
		a.DateOfDeath = &t
	}
	return a
}

// NameRequest 只有名称的写入请求(出版社/体裁/装帧/标签共用)
type NameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// LanguageRequest HTTP语言写入请求
type LanguageRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Culture string `json:"culture" binding:"max=20" example:"pt-PT"`
}

// ToEntity HTTP请求 → 实体
func (r LanguageRequest) ToEntity() *reference.Language {
	return &reference.Language{Name: r.Name, Culture: r.Culture}
}
