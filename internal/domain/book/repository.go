package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. LockByID/UpdateStock必须在TxManager的事务内调用才具备隔离语义
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// FindByTitle 根据书名查找图书(精确匹配,可能多本)
	FindByTitle(ctx context.Context, title string) ([]*Book, error)

	// FindByOriginalTitle 根据原版书名查找图书
	FindByOriginalTitle(ctx context.Context, originalTitle string) ([]*Book, error)

	// FindBySynopsis 根据简介关键词查找图书(模糊匹配)
	FindBySynopsis(ctx context.Context, keyword string) ([]*Book, error)

	// FindAll 查询全部图书
	FindAll(ctx context.Context) ([]*Book, error)

	// FindAllAvailable 查询全部现货图书(Availability=AVAILABLE且库存>0)
	FindAllAvailable(ctx context.Context) ([]*Book, error)

	// Search 按属性组合搜索图书
	Search(ctx context.Context, params SearchParams) ([]*Book, error)

	// Update 更新图书信息
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书(软删除)
	Delete(ctx context.Context, id uint) error

	// LockByID 悲观锁查询图书(SELECT FOR UPDATE)
	// 库存事件应用路径使用:锁定行,串行化并发的读-改-写
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateStock 原子更新库存
	// delta为正数表示增加,负数表示减少
	// 带stock_available + delta >= 0守卫,不足则返回ErrStockUnderflow
	UpdateStock(ctx context.Context, id uint, delta int) error
}

// SearchParams 组合搜索参数
// 零值字段表示不参与过滤
type SearchParams struct {
	Author       string        // 作者名
	Tag          string        // 标签名
	Genre        string        // 体裁名
	Language     string        // 语言名
	IsSeries     *bool         // 是否系列作品
	MinPrice     int64         // 最低价(分),0表示不限
	MaxPrice     int64         // 最高价(分),0表示不限
	InPromotion  *bool         // 是否在促销
	Availability *Availability // 可售状态
}
