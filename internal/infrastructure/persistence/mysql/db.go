package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/critical/catalog-service/internal/domain/reference"
	"github.com/critical/catalog-service/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数(MaxOpenConns、MaxIdleConns、ConnMaxLifetime)
// 3. 开发环境开启SQL日志,生产环境关闭
// 4. 自动迁移表结构(AutoMigrate)
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // 把驱动错误翻译为gorm.ErrDuplicatedKey等
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 注意:生产环境应使用版本化迁移脚本,不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&reference.Author{},
		&reference.Publisher{},
		&reference.Genre{},
		&reference.Language{},
		&reference.Format{},
		&reference.Tag{},
		&BookModel{},
		&RetryJobModel{},
	)
}

// BookModel GORM图书模型
// 设计说明:
// 1. 这是infrastructure层的数据模型,domain/book/entity.go是领域实体,
//    Repository负责两者之间的转换
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. ISBN有唯一索引,防止重复
// 4. StockAvailable由带守卫的原子UPDATE维护,任何时刻不允许为负
// 5. 与作者/语言/体裁/标签/装帧是多对多关联,连接表由GORM维护
type BookModel struct {
	ID               uint                 `gorm:"primaryKey"`
	Title            string               `gorm:"index;size:200;not null;comment:书名"`
	OriginalTitle    string               `gorm:"index;size:200;comment:原版书名"`
	ISBN             string               `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Edition          string               `gorm:"size:50;comment:版次"`
	Synopsis         string               `gorm:"type:text;comment:内容简介"`
	IsSeries         bool                 `gorm:"comment:是否系列作品"`
	Availability     int                  `gorm:"index;type:tinyint;default:0;comment:可售状态(0待发布1预售2可订3现货)"`
	ReleaseDate      time.Time            `gorm:"comment:首发日期"`
	EditionDate      time.Time            `gorm:"comment:本版发行日期"`
	Price            int64                `gorm:"index;not null;comment:价格(分)"`
	PromotionalPrice int64                `gorm:"default:0;comment:促销价(分,0表示无促销)"`
	StockAvailable   int                  `gorm:"default:0;comment:可售库存"`
	PublisherID      uint                 `gorm:"index;comment:出版社ID"`
	Authors          []reference.Author   `gorm:"many2many:book_authors;joinForeignKey:BookID;joinReferences:AuthorID"`
	Languages        []reference.Language `gorm:"many2many:book_languages;joinForeignKey:BookID;joinReferences:LanguageID"`
	Genres           []reference.Genre    `gorm:"many2many:book_genres;joinForeignKey:BookID;joinReferences:GenreID"`
	Tags             []reference.Tag      `gorm:"many2many:book_tags;joinForeignKey:BookID;joinReferences:TagID"`
	Formats          []reference.Format   `gorm:"many2many:book_formats;joinForeignKey:BookID;joinReferences:FormatID"`
	CreatedAt        time.Time            `gorm:"comment:创建时间"`
	UpdatedAt        time.Time            `gorm:"comment:更新时间"`
	DeletedAt        gorm.DeletedAt       `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// RetryJobModel GORM延迟重试任务模型
// 设计说明:
// 1. 持久化在业务数据库,进程重启后任务不丢失
// 2. (status, run_at)复合索引支撑到期任务的轮询查询
// 3. Attempts在认领时自增,随任务存储以精确限制最大次数
type RetryJobModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"index;not null;comment:目标图书ID"`
	Delta     int       `gorm:"not null;comment:库存增量"`
	Attempts  int       `gorm:"default:0;comment:已执行次数"`
	Status    string    `gorm:"index:idx_due;size:16;not null;default:pending;comment:任务状态"`
	RunAt     time.Time `gorm:"index:idx_due;not null;comment:下次执行时间"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (RetryJobModel) TableName() string {
	return "stock_retry_jobs"
}
