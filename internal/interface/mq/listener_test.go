package mq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/critical/catalog-service/internal/domain/stock"
	"github.com/critical/catalog-service/pkg/mq"
)

// fakeProcessor 记录调用并返回预设结果
type fakeProcessor struct {
	outcome stock.Outcome
	calls   []processCall
}

type processCall struct {
	bookID uint
	delta  int
}

func (p *fakeProcessor) Process(ctx context.Context, bookID uint, delta int) stock.Outcome {
	p.calls = append(p.calls, processCall{bookID: bookID, delta: delta})
	return p.outcome
}

// TestStockListener_Handle 测试消息去向映射
func TestStockListener_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("应用成功确认消息", func(t *testing.T) {
		proc := &fakeProcessor{outcome: stock.OutcomeApplied}
		l := &StockListener{processor: proc}

		d := l.handle(ctx, []byte(`{"id": 1, "stock": 5}`))

		assert.Equal(t, mq.Ack, d)
		assert.Equal(t, []processCall{{bookID: 1, delta: 5}}, proc.calls)
	})

	t.Run("目标缺失确认消息", func(t *testing.T) {
		// 重试已移交调度器,broker不再负责这条消息
		proc := &fakeProcessor{outcome: stock.OutcomeMissingTarget}
		l := &StockListener{processor: proc}

		d := l.handle(ctx, []byte(`{"id": 99, "stock": 5}`))

		assert.Equal(t, mq.Ack, d)
	})

	t.Run("不变式违反确认消息", func(t *testing.T) {
		proc := &fakeProcessor{outcome: stock.OutcomeInvariantViolation}
		l := &StockListener{processor: proc}

		d := l.handle(ctx, []byte(`{"id": 1, "stock": -999}`))

		assert.Equal(t, mq.Ack, d, "重投无意义的失败不应回到队列")
	})

	t.Run("瞬时错误拒绝并重新入队", func(t *testing.T) {
		proc := &fakeProcessor{outcome: stock.OutcomeTransientError}
		l := &StockListener{processor: proc}

		d := l.handle(ctx, []byte(`{"id": 1, "stock": 5}`))

		assert.Equal(t, mq.NackRequeue, d)
	})

	t.Run("未知错误确认消息", func(t *testing.T) {
		proc := &fakeProcessor{outcome: stock.OutcomeUnknownError}
		l := &StockListener{processor: proc}

		d := l.handle(ctx, []byte(`{"id": 1, "stock": 5}`))

		assert.Equal(t, mq.Ack, d, "不透明失败不能无限重投")
	})

	t.Run("毒消息确认且不进入处理流程", func(t *testing.T) {
		proc := &fakeProcessor{outcome: stock.OutcomeApplied}
		l := &StockListener{processor: proc}

		for _, body := range [][]byte{
			[]byte(`{not json`),
			[]byte(`{"stock": 5}`),
			[]byte(`{"id": 0, "stock": 5}`),
			nil,
		} {
			d := l.handle(ctx, body)
			assert.Equal(t, mq.Ack, d)
		}

		assert.Empty(t, proc.calls, "毒消息不应触发库存应用")
	})
}
