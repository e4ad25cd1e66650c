package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/critical/catalog-service/internal/domain/book"
	"github.com/critical/catalog-service/pkg/circuitbreaker"
)

// BookCache 图书详情缓存(Cache-Aside)
// 设计说明:
// 1. 先查缓存,未命中再查数据库并回填
// 2. 更新/删除图书后删除缓存,下次查询重新加载(删除比更新可靠)
// 3. 库存事件路径不走缓存读,但应用成功后同样删除缓存,
//    避免详情接口返回过期库存
// 4. Redis访问包在熔断器里,Redis故障时直接降级查数据库,
//    不让缓存层故障拖垮主链路
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
	cb     *circuitbreaker.CircuitBreaker
}

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	cb := circuitbreaker.NewCircuitBreaker("book-cache", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("[cache] circuit breaker %s: %s -> %s", name, from, to)
	})

	return &BookCache{
		client: client,
		ttl:    ttl,
		cb:     cb,
	}
}

// Get 获取图书详情缓存
// 未命中返回(nil, nil);熔断打开或Redis故障也按未命中处理
func (c *BookCache) Get(ctx context.Context, bookID uint) (*book.Book, error) {
	var b *book.Book

	err := c.cb.Execute(func() error {
		val, err := c.client.Get(ctx, c.detailKey(bookID)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil // 未命中不算故障
			}
			return err
		}

		var decoded book.Book
		if err := json.Unmarshal([]byte(val), &decoded); err != nil {
			// 缓存内容损坏,当作未命中,等回填覆盖
			log.Printf("[cache] WARN corrupt cache entry, book_id=%d: %v", bookID, err)
			return nil
		}
		b = &decoded
		return nil
	})

	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpenState) {
			return nil, nil // 熔断降级,调用方直接查库
		}
		return nil, nil // Redis故障同样降级,错误已计入熔断统计
	}

	return b, nil
}

// Set 回填图书详情缓存
func (c *BookCache) Set(ctx context.Context, b *book.Book) error {
	val, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}

	return c.cb.Execute(func() error {
		return c.client.Set(ctx, c.detailKey(b.ID), val, c.ttl).Err()
	})
}

// Delete 删除图书详情缓存(写路径调用)
func (c *BookCache) Delete(ctx context.Context, bookID uint) error {
	return c.cb.Execute(func() error {
		return c.client.Del(ctx, c.detailKey(bookID)).Err()
	})
}

// detailKey 缓存键:book:detail:{id}
func (c *BookCache) detailKey(bookID uint) string {
	return fmt.Sprintf("book:detail:%d", bookID)
}
