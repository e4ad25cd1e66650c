// Package stock 库存更新管道:事件解码、增量应用与结果分类
//
// 处理一条事件的完整路径:
//
//	broker → Listener(解码) → Applier(事务内读-改-写) → Ack/Nack
//	                             └─ 目标缺失 → Scheduler(延迟重试) → Applier
package stock

import (
	"encoding/json"
	"fmt"
	"math"
)

// UpdateBookStockEvent 库存更新事件(线上格式)
//
// 线上JSON: {"id": <int>, "stock": <int>}
// - id: 目标图书ID,必填,>0
// - stock: 库存增量,必填,有符号;正数=到货,负数=消耗,0=合法空操作
// - 未知字段必须忽略;事件不携带幂等ID
type UpdateBookStockEvent struct {
	ID    uint `json:"id"`
	Stock int  `json:"stock"`
}

// DecodeUpdateBookStockEvent 解码并校验事件体
//
// 解码失败(JSON非法、缺少必填字段、数值越界)返回错误,
// 调用方应将消息按毒消息处理:确认并告警,绝不能阻塞队列
func DecodeUpdateBookStockEvent(body []byte) (*UpdateBookStockEvent, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("事件体为空")
	}

	// 用指针字段区分"字段缺失"和"字段为0"
	var raw struct {
		ID    *int64 `json:"id"`
		Stock *int64 `json:"stock"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("事件体JSON解析失败: %w", err)
	}

	if raw.ID == nil {
		return nil, fmt.Errorf("事件缺少必填字段: id")
	}
	if raw.Stock == nil {
		return nil, fmt.Errorf("事件缺少必填字段: stock")
	}

	if *raw.ID <= 0 || *raw.ID > math.MaxInt32 {
		return nil, fmt.Errorf("事件字段id越界: %d", *raw.ID)
	}
	if *raw.Stock < math.MinInt32 || *raw.Stock > math.MaxInt32 {
		return nil, fmt.Errorf("事件字段stock越界: %d", *raw.Stock)
	}

	return &UpdateBookStockEvent{
		ID:    uint(*raw.ID),
		Stock: int(*raw.Stock),
	}, nil
}

// Encode 序列化为线上格式(生产方使用)
func (e *UpdateBookStockEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}
