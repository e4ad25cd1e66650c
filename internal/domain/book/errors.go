package book

import (
	apperrors "github.com/critical/catalog-service/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInvalidAvailability 无效的可售状态
	ErrInvalidAvailability = apperrors.New(apperrors.ErrCodeInvalidParams, "可售状态取值非法")

	// ErrStockUnderflow 库存增量会导致库存为负
	// 属于不变式违反:说明生产方有bug或补偿事件丢失,重投无意义
	ErrStockUnderflow = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存增量会导致库存为负")
)
