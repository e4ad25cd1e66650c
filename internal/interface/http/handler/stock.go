package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	apperrors "github.com/critical/catalog-service/pkg/errors"
	"github.com/critical/catalog-service/pkg/response"
)

// StockRequester 库存请求事件发布接口(由mq.BookStockProducer满足)
type StockRequester interface {
	RequestStock(ctx context.Context, bookID uint, stockDelta int) error
}

// StockHandler 库存请求HTTP处理器
// 面向运营/补货系统:把补货请求转成出站事件发给库存方
type StockHandler struct {
	requester StockRequester
}

// NewStockHandler 创建库存请求处理器
func NewStockHandler(requester StockRequester) *StockHandler {
	return &StockHandler{requester: requester}
}

// Register 注册路由
func (h *StockHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/book/:id/requestStock", h.RequestStock)
}

// requestStockBody 补货请求体
type requestStockBody struct {
	Stock int `json:"stock" binding:"required"` // 请求的库存数量,正数
}

// RequestStock 发布库存请求事件
func (h *StockHandler) RequestStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body requestStockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}
	if body.Stock <= 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "请求库存数量必须为正数")
		return
	}

	if err := h.requester.RequestStock(c.Request.Context(), id, body.Stock); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
