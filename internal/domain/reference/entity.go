// Package reference 图书参考实体(作者/出版社/体裁/语言/装帧/标签)
//
// 设计说明:
// 1. 六种实体共享同一套CRUD形态,仓储与服务使用泛型统一实现
// 2. 参考实体结构简单,实体直接携带gorm tag(与services风格一致),
//    不再做model/entity双层转换
// 3. 图书与参考实体是多对多关联,关联关系由图书侧的连接表维护
package reference

import (
	"time"

	"gorm.io/gorm"
)

// Author 作者
type Author struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	OriginalName string         `gorm:"size:100" json:"original_name"`
	DateOfBirth  *time.Time     `json:"date_of_birth,omitempty"`
	PlaceOfBirth string         `gorm:"size:100" json:"place_of_birth"`
	DateOfDeath  *time.Time     `json:"date_of_death,omitempty"`
	PlaceOfDeath string         `gorm:"size:100" json:"place_of_death"`
	About        string         `gorm:"type:text" json:"about"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Author) TableName() string { return "authors" }

// Validate 字段校验
func (a *Author) Validate() error {
	if a.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Publisher 出版社
type Publisher struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Publisher) TableName() string { return "publishers" }

// Validate 字段校验
func (p *Publisher) Validate() error {
	if p.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Genre 体裁
type Genre struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Genre) TableName() string { return "genres" }

// Validate 字段校验
func (g *Genre) Validate() error {
	if g.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Language 语言
type Language struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Culture   string         `gorm:"size:20" json:"culture"` // 区域代码(如pt-PT)
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Language) TableName() string { return "languages" }

// Validate 字段校验
func (l *Language) Validate() error {
	if l.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Format 装帧(精装/平装/电子书等)
type Format struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Format) TableName() string { return "formats" }

// Validate 字段校验
func (f *Format) Validate() error {
	if f.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Tag 标签
type Tag struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Tag) TableName() string { return "tags" }

// Validate 字段校验
func (t *Tag) Validate() error {
	if t.Name == "" {
		return ErrNameRequired
	}
	return nil
}
