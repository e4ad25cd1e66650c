package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/critical/catalog-service/internal/application/book"
	"github.com/critical/catalog-service/internal/interface/http/dto"
	apperrors "github.com/critical/catalog-service/pkg/errors"
	"github.com/critical/catalog-service/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	createUC *appbook.CreateBookUseCase
	updateUC *appbook.UpdateBookUseCase
	queryUC  *appbook.QueryBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createUC *appbook.CreateBookUseCase,
	updateUC *appbook.UpdateBookUseCase,
	queryUC *appbook.QueryBooksUseCase,
) *BookHandler {
	return &BookHandler{
		createUC: createUC,
		updateUC: updateUC,
		queryUC:  queryUC,
	}
}

// Register 注册图书路由
func (h *BookHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/book", h.CreateBook)
	rg.GET("/book/:id", h.GetBook)
	rg.PUT("/book/:id", h.UpdateBook)
	rg.DELETE("/book/:id", h.DeleteBook)

	rg.GET("/books", h.ListBooks)
	rg.GET("/availableBooks", h.ListAvailableBooks)
	rg.GET("/searchBooks", h.SearchBooks)
	rg.GET("/searchBookByIsbn/:isbn", h.SearchByISBN)
	rg.GET("/searchBookByTitle/:title", h.SearchByTitle)
	rg.GET("/searchBookByOriginalTitle/:originalTitle", h.SearchByOriginalTitle)
	rg.GET("/searchBookBySynopsis/:synopsis", h.SearchBySynopsis)
}

// CreateBook 创建图书
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	b, err := h.createUC.Execute(c.Request.Context(), req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponse(b))
}

// GetBook 获取图书详情
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.queryUC.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponse(b))
}

// UpdateBook 整单更新图书
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	b, err := h.updateUC.Execute(c.Request.Context(), id, req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponse(b))
}

// DeleteBook 删除图书
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.updateUC.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// ListBooks 查询全部图书
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.queryUC.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponses(books))
}

// ListAvailableBooks 查询全部现货图书
func (h *BookHandler) ListAvailableBooks(c *gin.Context) {
	books, err := h.queryUC.ListAvailable(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponses(books))
}

// SearchBooks 按属性组合搜索图书
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var req dto.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	books, err := h.queryUC.Search(c.Request.Context(), req.ToSearchParams())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponses(books))
}

// SearchByISBN 根据ISBN查询图书
func (h *BookHandler) SearchByISBN(c *gin.Context) {
	b, err := h.queryUC.GetByISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponse(b))
}

// SearchByTitle 根据书名查询图书
func (h *BookHandler) SearchByTitle(c *gin.Context) {
	books, err := h.queryUC.GetByTitle(c.Request.Context(), c.Param("title"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponses(books))
}

// SearchByOriginalTitle 根据原版书名查询图书
func (h *BookHandler) SearchByOriginalTitle(c *gin.Context) {
	books, err := h.queryUC.GetByOriginalTitle(c.Request.Context(), c.Param("originalTitle"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponses(books))
}

// SearchBySynopsis 根据简介关键词查询图书
func (h *BookHandler) SearchBySynopsis(c *gin.Context) {
	books, err := h.queryUC.GetBySynopsis(c.Request.Context(), c.Param("synopsis"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponses(books))
}

// parseID 解析路径中的ID参数,非法时直接写入错误响应
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的ID: "+c.Param("id"))
		return 0, false
	}
	return uint(id), true
}
