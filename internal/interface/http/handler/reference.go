package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/critical/catalog-service/internal/domain/reference"
	"github.com/critical/catalog-service/internal/interface/http/dto"
	apperrors "github.com/critical/catalog-service/pkg/errors"
	"github.com/critical/catalog-service/pkg/response"
)

// ReferenceHandler 参考实体HTTP处理器(泛型)
// 设计说明:
// 1. 六种参考实体的CRUD路由形态一致,一个泛型处理器实例化六次
// 2. bind与setID因实体而异,由构造方注入
// 3. notFound把通用的"记录不存在"细化为各实体的错误码
type ReferenceHandler[T any] struct {
	svc      *reference.Service[T]
	notFound *apperrors.AppError
	bind     func(c *gin.Context) (*T, error)
	setID    func(entity *T, id uint)
}

// NewReferenceHandler 创建参考实体处理器
func NewReferenceHandler[T any](
	svc *reference.Service[T],
	notFound *apperrors.AppError,
	bind func(c *gin.Context) (*T, error),
	setID func(entity *T, id uint),
) *ReferenceHandler[T] {
	return &ReferenceHandler[T]{
		svc:      svc,
		notFound: notFound,
		bind:     bind,
		setID:    setID,
	}
}

// Register 注册路由
// singular用于单实体操作(/author/:id),plural用于列表(/authors)
func (h *ReferenceHandler[T]) Register(rg *gin.RouterGroup, singular, plural string) {
	rg.POST("/"+singular, h.Create)
	rg.GET("/"+singular+"/:id", h.Get)
	rg.PUT("/"+singular+"/:id", h.Update)
	rg.DELETE("/"+singular+"/:id", h.Delete)
	rg.GET("/"+plural, h.List)
}

// Create 创建实体
func (h *ReferenceHandler[T]) Create(c *gin.Context) {
	entity, err := h.bind(c)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	created, err := h.svc.Create(c.Request.Context(), entity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, created)
}

// Get 根据ID获取实体
func (h *ReferenceHandler[T]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	entity, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, entity)
}

// List 查询全部实体
func (h *ReferenceHandler[T]) List(c *gin.Context) {
	entities, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, entities)
}

// Update 更新实体
func (h *ReferenceHandler[T]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	entity, err := h.bind(c)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}
	h.setID(entity, id)

	if err := h.svc.Update(c.Request.Context(), id, entity); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, entity)
}

// Delete 删除实体
func (h *ReferenceHandler[T]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, nil)
}

// respondError 错误响应,把通用"记录不存在"细化为本实体的错误码
func (h *ReferenceHandler[T]) respondError(c *gin.Context, err error) {
	if errors.Is(err, reference.ErrNotFound) {
		response.Error(c, h.notFound)
		return
	}
	response.Error(c, err)
}

// =========================================
// 各实体的处理器构造(绑定函数+错误码)
// =========================================

// NewAuthorHandler 作者处理器
func NewAuthorHandler(svc *reference.Service[reference.Author]) *ReferenceHandler[reference.Author] {
	return NewReferenceHandler(svc,
		apperrors.New(apperrors.ErrCodeAuthorNotFound, "作者不存在"),
		func(c *gin.Context) (*reference.Author, error) {
			var req dto.AuthorRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, err
			}
			return req.ToEntity(), nil
		},
		func(a *reference.Author, id uint) { a.ID = id },
	)
}

// NewPublisherHandler 出版社处理器
func NewPublisherHandler(svc *reference.Service[reference.Publisher]) *ReferenceHandler[reference.Publisher] {
	return NewReferenceHandler(svc,
		apperrors.New(apperrors.ErrCodePublisherNotFound, "出版社不存在"),
		func(c *gin.Context) (*reference.Publisher, error) {
			var req dto.NameRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, err
			}
			return &reference.Publisher{Name: req.Name}, nil
		},
		func(p *reference.Publisher, id uint) { p.ID = id },
	)
}

// NewGenreHandler 体裁处理器
func NewGenreHandler(svc *reference.Service[reference.Genre]) *ReferenceHandler[reference.Genre] {
	return NewReferenceHandler(svc,
		apperrors.New(apperrors.ErrCodeGenreNotFound, "体裁不存在"),
		func(c *gin.Context) (*reference.Genre, error) {
			var req dto.NameRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, err
			}
			return &reference.Genre{Name: req.Name}, nil
		},
		func(g *reference.Genre, id uint) { g.ID = id },
	)
}

// NewLanguageHandler 语言处理器
func NewLanguageHandler(svc *reference.Service[reference.Language]) *ReferenceHandler[reference.Language] {
	return NewReferenceHandler(svc,
		apperrors.New(apperrors.ErrCodeLanguageNotFound, "语言不存在"),
		func(c *gin.Context) (*reference.Language, error) {
			var req dto.LanguageRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, err
			}
			return req.ToEntity(), nil
		},
		func(l *reference.Language, id uint) { l.ID = id },
	)
}

// NewFormatHandler 装帧处理器
func NewFormatHandler(svc *reference.Service[reference.Format]) *ReferenceHandler[reference.Format] {
	return NewReferenceHandler(svc,
		apperrors.New(apperrors.ErrCodeFormatNotFound, "装帧不存在"),
		func(c *gin.Context) (*reference.Format, error) {
			var req dto.NameRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, err
			}
			return &reference.Format{Name: req.Name}, nil
		},
		func(f *reference.Format, id uint) { f.ID = id },
	)
}

// NewTagHandler 标签处理器
func NewTagHandler(svc *reference.Service[reference.Tag]) *ReferenceHandler[reference.Tag] {
	return NewReferenceHandler(svc,
		apperrors.New(apperrors.ErrCodeTagNotFound, "标签不存在"),
		func(c *gin.Context) (*reference.Tag, error) {
			var req dto.NameRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, err
			}
			return &reference.Tag{Name: req.Name}, nil
		},
		func(t *reference.Tag, id uint) { t.ID = id },
	)
}
