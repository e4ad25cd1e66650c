package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/critical/catalog-service/internal/domain/book"
	"github.com/critical/catalog-service/internal/domain/reference"
	apperrors "github.com/critical/catalog-service/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
// 4. LockByID/UpdateStock通过getDB(ctx)参与TxManager的事务
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	// Omit("X.*")只写连接表,不回写参考实体本身
	err := r.db.WithContext(ctx).
		Omit("Authors.*", "Languages.*", "Genres.*", "Tags.*", "Formats.*").
		Create(model).Error
	if err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.withAssociations(r.db.WithContext(ctx)).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := r.withAssociations(r.db.WithContext(ctx)).Where("isbn = ?", isbn).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByTitle 根据书名查找图书(精确匹配)
func (r *bookRepository) FindByTitle(ctx context.Context, title string) ([]*book.Book, error) {
	return r.findWhere(ctx, "title = ?", title)
}

// FindByOriginalTitle 根据原版书名查找图书(精确匹配)
func (r *bookRepository) FindByOriginalTitle(ctx context.Context, originalTitle string) ([]*book.Book, error) {
	return r.findWhere(ctx, "original_title = ?", originalTitle)
}

// FindBySynopsis 根据简介关键词查找图书(模糊匹配)
func (r *bookRepository) FindBySynopsis(ctx context.Context, keyword string) ([]*book.Book, error) {
	return r.findWhere(ctx, "synopsis LIKE ?", "%"+keyword+"%")
}

// FindAll 查询全部图书
func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	return r.findWhere(ctx, "")
}

// FindAllAvailable 查询全部现货图书
func (r *bookRepository) FindAllAvailable(ctx context.Context) ([]*book.Book, error) {
	return r.findWhere(ctx, "availability = ? AND stock_available > 0", int(book.Available))
}

// Search 按属性组合搜索图书
// 零值参数不参与过滤;参考实体按名称通过连接表子查询匹配
func (r *bookRepository) Search(ctx context.Context, params book.SearchParams) ([]*book.Book, error) {
	query := r.db.WithContext(ctx).Model(&BookModel{})

	if params.Author != "" {
		query = query.Where("books.id IN (SELECT ba.book_id FROM book_authors ba JOIN authors a ON a.id = ba.author_id WHERE a.name = ?)", params.Author)
	}
	if params.Tag != "" {
		query = query.Where("books.id IN (SELECT bt.book_id FROM book_tags bt JOIN tags t ON t.id = bt.tag_id WHERE t.name = ?)", params.Tag)
	}
	if params.Genre != "" {
		query = query.Where("books.id IN (SELECT bg.book_id FROM book_genres bg JOIN genres g ON g.id = bg.genre_id WHERE g.name = ?)", params.Genre)
	}
	if params.Language != "" {
		query = query.Where("books.id IN (SELECT bl.book_id FROM book_languages bl JOIN languages l ON l.id = bl.language_id WHERE l.name = ?)", params.Language)
	}
	if params.IsSeries != nil {
		query = query.Where("is_series = ?", *params.IsSeries)
	}
	if params.MinPrice > 0 {
		query = query.Where("price >= ?", params.MinPrice)
	}
	if params.MaxPrice > 0 {
		query = query.Where("price <= ?", params.MaxPrice)
	}
	if params.InPromotion != nil {
		if *params.InPromotion {
			query = query.Where("promotional_price > 0")
		} else {
			query = query.Where("promotional_price = 0")
		}
	}
	if params.Availability != nil {
		query = query.Where("availability = ?", int(*params.Availability))
	}

	var models []BookModel
	if err := r.withAssociations(query).Order("title ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "搜索图书失败")
	}

	return toBookEntities(models), nil
}

// Update 更新图书信息
// 标量列用Save更新,多对多关联用Replace整体替换
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "更新图书失败")
	}

	// 关联替换:连接表按新的ID列表重建
	assocs := map[string]interface{}{
		"Authors":   refsByID[reference.Author](b.AuthorIDs),
		"Languages": refsByID[reference.Language](b.LanguageIDs),
		"Genres":    refsByID[reference.Genre](b.GenreIDs),
		"Tags":      refsByID[reference.Tag](b.TagIDs),
		"Formats":   refsByID[reference.Format](b.FormatIDs),
	}
	for name, values := range assocs {
		if err := db.Model(model).Association(name).Replace(values); err != nil {
			return apperrors.Wrapf(err, "更新图书关联失败: %s", name)
		}
	}

	b.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除图书(软删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&BookModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// LockByID 悲观锁查询图书
// SELECT FOR UPDATE锁定行,必须在TxManager事务内调用
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}

	return toBookEntity(&model), nil
}

// UpdateStock 原子更新库存
// UPDATE books SET stock_available = stock_available + delta
// WHERE id = ? AND stock_available + delta >= 0
// 守卫条件在数据库侧拦截负库存,与行锁共同保证不变式
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := r.getDB(ctx)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock_available + ? >= 0", delta).
		Update("stock_available", gorm.Expr("stock_available + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是图书不存在,或者库存不足,再查一次确定原因
		var model BookModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		return book.ErrStockUnderflow
	}

	return nil
}

// =========================================
// 辅助函数
// =========================================

// findWhere 带关联预加载的条件查询
func (r *bookRepository) findWhere(ctx context.Context, cond string, args ...interface{}) ([]*book.Book, error) {
	query := r.withAssociations(r.db.WithContext(ctx))
	if cond != "" {
		query = query.Where(cond, args...)
	}

	var models []BookModel
	if err := query.Order("title ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}

	return toBookEntities(models), nil
}

// withAssociations 预加载全部多对多关联
func (r *bookRepository) withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Authors").
		Preload("Languages").
		Preload("Genres").
		Preload("Tags").
		Preload("Formats")
}

// toBookModel 领域实体 → GORM模型
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:               b.ID,
		Title:            b.Title,
		OriginalTitle:    b.OriginalTitle,
		ISBN:             b.ISBN,
		Edition:          b.Edition,
		Synopsis:         b.Synopsis,
		IsSeries:         b.IsSeries,
		Availability:     int(b.Availability),
		ReleaseDate:      b.ReleaseDate,
		EditionDate:      b.EditionDate,
		Price:            b.Price,
		PromotionalPrice: b.PromotionalPrice,
		StockAvailable:   b.StockAvailable,
		PublisherID:      b.PublisherID,
		Authors:          refsByID[reference.Author](b.AuthorIDs),
		Languages:        refsByID[reference.Language](b.LanguageIDs),
		Genres:           refsByID[reference.Genre](b.GenreIDs),
		Tags:             refsByID[reference.Tag](b.TagIDs),
		Formats:          refsByID[reference.Format](b.FormatIDs),
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	b := &book.Book{
		ID:               model.ID,
		Title:            model.Title,
		OriginalTitle:    model.OriginalTitle,
		ISBN:             model.ISBN,
		Edition:          model.Edition,
		Synopsis:         model.Synopsis,
		IsSeries:         model.IsSeries,
		Availability:     book.Availability(model.Availability),
		ReleaseDate:      model.ReleaseDate,
		EditionDate:      model.EditionDate,
		Price:            model.Price,
		PromotionalPrice: model.PromotionalPrice,
		StockAvailable:   model.StockAvailable,
		PublisherID:      model.PublisherID,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
	for _, a := range model.Authors {
		b.AuthorIDs = append(b.AuthorIDs, a.ID)
	}
	for _, l := range model.Languages {
		b.LanguageIDs = append(b.LanguageIDs, l.ID)
	}
	for _, g := range model.Genres {
		b.GenreIDs = append(b.GenreIDs, g.ID)
	}
	for _, t := range model.Tags {
		b.TagIDs = append(b.TagIDs, t.ID)
	}
	for _, f := range model.Formats {
		b.FormatIDs = append(b.FormatIDs, f.ID)
	}
	return b
}

// toBookEntities 批量转换
func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}

// refsByID 把ID列表转成只含主键的参考实体列表(用于连接表写入)
func refsByID[T interface {
	reference.Author | reference.Language | reference.Genre | reference.Tag | reference.Format
}](ids []uint) []T {
	refs := make([]T, 0, len(ids))
	for _, id := range ids {
		var ref T
		switch v := any(&ref).(type) {
		case *reference.Author:
			v.ID = id
		case *reference.Language:
			v.ID = id
		case *reference.Genre:
			v.ID = id
		case *reference.Tag:
			v.ID = id
		case *reference.Format:
			v.ID = id
		}
		refs = append(refs, ref)
	}
	return refs
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
