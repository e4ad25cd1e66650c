// Package mq 消息队列接口层:库存更新事件的消费与库存请求事件的发布
package mq

import (
	"context"
	"log"
	"time"

	"github.com/critical/catalog-service/internal/domain/stock"
	"github.com/critical/catalog-service/pkg/metrics"
	"github.com/critical/catalog-service/pkg/mq"
)

// StockEventProcessor 库存事件处理入口(由stock.Applier满足)
type StockEventProcessor interface {
	Process(ctx context.Context, bookID uint, delta int) stock.Outcome
}

// StockListener 库存更新事件监听器
// 设计说明:
// 1. 解码失败(毒消息)直接ACK并记警告,重投无意义且会阻塞队列
// 2. 处理结果到消息去向的映射:
//    - Applied / MissingTarget(已移交调度器) / InvariantViolation / UnknownError → ACK
//    - TransientError → NACK+Requeue,broker重新投递
// 3. PrefetchCount=1由底层Consumer保证,单实例内事件按序处理
type StockListener struct {
	consumer  *mq.Consumer
	processor StockEventProcessor
	done      chan struct{}
}

// NewStockListener 创建监听器
func NewStockListener(consumer *mq.Consumer, processor StockEventProcessor) *StockListener {
	return &StockListener{
		consumer:  consumer,
		processor: processor,
	}
}

// Start 启动消费goroutine
func (l *StockListener) Start(ctx context.Context) {
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)
		if err := l.consumer.Consume(ctx, func(body []byte) mq.Disposition {
			return l.handle(ctx, body)
		}); err != nil {
			log.Printf("[listener] ERROR consume loop exited: %v", err)
		}
	}()
}

// Wait 等待消费循环退出(ctx取消后调用)
func (l *StockListener) Wait() {
	if l.done != nil {
		<-l.done
	}
}

// handle 处理单条消息
func (l *StockListener) handle(ctx context.Context, body []byte) mq.Disposition {
	start := time.Now()

	event, err := stock.DecodeUpdateBookStockEvent(body)
	if err != nil {
		// 毒消息:确认并丢弃,只记警告
		log.Printf("[listener] WARN discard malformed event: %v body=%q", err, truncate(body, 256))
		metrics.ObserveStockEvent("decode_error", time.Since(start).Seconds())
		return mq.Ack
	}

	outcome := l.processor.Process(ctx, event.ID, event.Stock)
	metrics.ObserveStockEvent(outcome.String(), time.Since(start).Seconds())

	if outcome == stock.OutcomeTransientError {
		return mq.NackRequeue
	}
	return mq.Ack
}

// truncate 截断日志中的消息体,避免超长日志
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
