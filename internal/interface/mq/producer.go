package mq

import (
	"context"
	"log"

	"github.com/critical/catalog-service/internal/domain/stock"
	apperrors "github.com/critical/catalog-service/pkg/errors"
	"github.com/critical/catalog-service/pkg/metrics"
	"github.com/critical/catalog-service/pkg/mq"
)

// BookStockProducer 库存请求事件生产者
// 向下游库存方发布补货/调拨请求,出站格式与入站事件一致:
// {"id": <int>, "stock": <int>}
// 发布走Publisher Confirm,broker未确认视为发送失败并上抛
type BookStockProducer struct {
	publisher  *mq.Publisher
	exchange   string
	routingKey string
}

// NewBookStockProducer 创建生产者
func NewBookStockProducer(publisher *mq.Publisher, exchange, routingKey string) *BookStockProducer {
	return &BookStockProducer{
		publisher:  publisher,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

// RequestStock 发布一条库存请求事件
func (p *BookStockProducer) RequestStock(ctx context.Context, bookID uint, stockDelta int) error {
	event := &stock.UpdateBookStockEvent{ID: bookID, Stock: stockDelta}
	body, err := event.Encode()
	if err != nil {
		return apperrors.Wrap(err, "序列化库存请求失败")
	}

	if err := p.publisher.Publish(ctx, p.routingKey, body); err != nil {
		metrics.IncMessagePublishFailure(p.exchange, p.routingKey)
		log.Printf("[producer] ERROR publish stock request: book_id=%d stock=%d err=%v", bookID, stockDelta, err)
		return apperrors.Wrap(err, "发布库存请求失败")
	}

	metrics.IncMessagePublished(p.exchange, p.routingKey)
	log.Printf("[producer] stock request published: book_id=%d stock=%d", bookID, stockDelta)
	return nil
}
