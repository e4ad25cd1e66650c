package book

import (
	"time"
)

// Availability 图书可售状态
// 与生产方约定的取值（按整数存储）：
// 0=待发布 1=预售 2=可订 3=现货
type Availability int

const (
	ToBeLaunched Availability = iota
	OnPreOrder
	OnOrder
	Available
)

// String 状态转字符串（便于日志与响应）
func (a Availability) String() string {
	switch a {
	case ToBeLaunched:
		return "TO_BE_LAUNCHED"
	case OnPreOrder:
		return "ON_PRE_ORDER"
	case OnOrder:
		return "ON_ORDER"
	case Available:
		return "AVAILABLE"
	default:
		return "UNKNOWN"
	}
}

// Valid 判断是否为合法取值
func (a Availability) Valid() bool {
	return a >= ToBeLaunched && a <= Available
}

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,包含图书的核心属性
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. ISBN作为业务唯一标识(数据库层保证唯一性)
// 4. StockAvailable是库存更新事件的目标列,任何时刻都不允许为负
// 5. 作者/语言/体裁/标签/装帧与图书是多对多关联,实体只持有ID列表
type Book struct {
	ID               uint
	Title            string // 书名
	OriginalTitle    string // 原版书名
	ISBN             string // ISBN号(国际标准书号)
	Edition          string // 版次
	Synopsis         string // 内容简介
	IsSeries         bool   // 是否系列作品
	Availability     Availability
	ReleaseDate      time.Time // 首发日期
	EditionDate      time.Time // 本版发行日期
	Price            int64     // 价格(单位:分)
	PromotionalPrice int64     // 促销价(分,0表示无促销)
	StockAvailable   int       // 可售库存,恒>=0
	PublisherID      uint      // 出版社ID
	AuthorIDs        []uint
	LanguageIDs      []uint
	GenreIDs         []uint
	TagIDs           []uint
	FormatIDs        []uint
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ApplyStockDelta 应用一次库存增量(领域行为)
// 业务规则:应用后库存不能为负数;delta为0是合法的空操作
func (b *Book) ApplyStockDelta(delta int) error {
	newStock := b.StockAvailable + delta
	if newStock < 0 {
		return ErrStockUnderflow
	}
	b.StockAvailable = newStock
	b.UpdatedAt = time.Now()
	return nil
}

// InPromotion 是否在促销中
func (b *Book) InPromotion() bool {
	return b.PromotionalPrice > 0
}
