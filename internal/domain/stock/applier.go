package stock

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/critical/catalog-service/internal/domain/book"
)

// TxManager 事务抽象
// Applier的读-改-写在同一事务内执行,由infrastructure层实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CacheInvalidator 图书详情缓存失效接口
// 库存应用成功后删除缓存,避免详情接口返回过期库存
type CacheInvalidator interface {
	Delete(ctx context.Context, bookID uint) error
}

// RetryScheduler 延迟重试调度器抽象
// 要求(由实现方保证):
// - 持久化,进程重启后任务不丢失
// - 到期后至少执行一次
// - 按任务计数,超过maxAttempts后不再执行
type RetryScheduler interface {
	// Schedule 创建一个延迟重试任务:在runAt之后重新应用(bookID, delta)
	Schedule(ctx context.Context, bookID uint, delta int, runAt time.Time) error
}

// Applier 库存增量应用器(管道核心)
//
// 把一条(book_id, delta)原子地应用到图书行并分类结果:
// 1. 事务内SELECT FOR UPDATE锁定图书行,串行化并发应用
// 2. 行不存在 → MissingTarget(由调用方决定是否移交调度器)
// 3. 新库存<0 → InvariantViolation(记error,确认消息)
// 4. 瞬时存储错误 → TransientError(请求broker重投)
// 5. 其他异常 → UnknownError(确认消息,避免无限重投)
type Applier struct {
	books       book.Repository
	tx          TxManager
	scheduler   RetryScheduler
	cache       CacheInvalidator
	retryDelay  time.Duration
	isTransient func(error) bool
	now         func() time.Time
}

// NewApplier 创建库存应用器
//
// 参数:
//
//	books: 图书仓储(LockByID/UpdateStock须支持事务传递)
//	tx: 事务管理器
//	scheduler: 延迟重试调度器
//	cache: 详情缓存失效(可为nil,表示无缓存)
//	retryDelay: 目标缺失时的重试延迟(默认20s)
//	isTransient: 存储错误的瞬时性判定(如mysql.IsTransientError)
func NewApplier(books book.Repository, tx TxManager, scheduler RetryScheduler, cache CacheInvalidator, retryDelay time.Duration, isTransient func(error) bool) *Applier {
	if retryDelay <= 0 {
		retryDelay = 20 * time.Second
	}
	if isTransient == nil {
		isTransient = func(error) bool { return false }
	}
	return &Applier{
		books:       books,
		tx:          tx,
		scheduler:   scheduler,
		cache:       cache,
		retryDelay:  retryDelay,
		isTransient: isTransient,
		now:         time.Now,
	}
}

// Apply 原子应用一次库存增量并分类结果
// 不做任何调度:MissingTarget的后续处理由调用方决定
// (Listener首次投递时移交调度器,调度器重试时自行计数)
func (a *Applier) Apply(ctx context.Context, bookID uint, delta int) Outcome {
	outcome := OutcomeApplied

	err := a.tx.Transaction(ctx, func(ctx context.Context) error {
		// 1. 锁定图书行(SELECT FOR UPDATE)
		b, err := a.books.LockByID(ctx, bookID)
		if err != nil {
			if errors.Is(err, book.ErrBookNotFound) {
				outcome = OutcomeMissingTarget
				return nil
			}
			return err
		}

		// 2. 不变式检查走领域行为:应用后库存不能为负
		// (只改内存副本,实际写回由第4步的守卫UPDATE完成)
		if aerr := b.ApplyStockDelta(delta); aerr != nil {
			outcome = OutcomeInvariantViolation
			return nil
		}

		// 3. delta为0是合法空操作,无需写库
		if delta == 0 {
			return nil
		}

		// 4. 写回(带守卫的原子UPDATE,行已锁定)
		return a.books.UpdateStock(ctx, bookID, delta)
	})

	if err != nil {
		switch {
		case errors.Is(err, book.ErrStockUnderflow):
			// UpdateStock守卫兜底触发(正常情况下第2步已拦截)
			outcome = OutcomeInvariantViolation
		case a.isTransient(err):
			outcome = OutcomeTransientError
		default:
			outcome = OutcomeUnknownError
		}
	}

	switch outcome {
	case OutcomeApplied:
		// 事务已提交,失效详情缓存,失败只记警告(缓存有TTL兜底)
		if a.cache != nil {
			if cerr := a.cache.Delete(ctx, bookID); cerr != nil {
				log.Printf("[stock] WARN invalidate cache failed: book_id=%d err=%v", bookID, cerr)
			}
		}
		log.Printf("[stock] applied: book_id=%d delta=%d", bookID, delta)
	case OutcomeMissingTarget:
		log.Printf("[stock] WARN book not found: book_id=%d delta=%d", bookID, delta)
	case OutcomeInvariantViolation:
		log.Printf("[stock] ERROR stock underflow rejected: book_id=%d delta=%d", bookID, delta)
	case OutcomeTransientError:
		log.Printf("[stock] WARN transient store error, requeue: book_id=%d delta=%d err=%v", bookID, delta, err)
	case OutcomeUnknownError:
		log.Printf("[stock] ERROR apply failed: book_id=%d delta=%d err=%v", bookID, delta, err)
	}

	return outcome
}

// Process 处理一条新投递的事件(Listener入口)
// 在Apply之上补一步:目标缺失时移交调度器延迟重试,
// 使broker队列不承担长期等待(等待是调度器的职责)
func (a *Applier) Process(ctx context.Context, bookID uint, delta int) Outcome {
	outcome := a.Apply(ctx, bookID, delta)
	if outcome != OutcomeMissingTarget {
		return outcome
	}

	runAt := a.now().Add(a.retryDelay)
	if err := a.scheduler.Schedule(ctx, bookID, delta, runAt); err != nil {
		// 调度器不可用视为瞬时失败,让broker重投,事件不丢失
		log.Printf("[stock] ERROR schedule retry failed: book_id=%d delta=%d err=%v", bookID, delta, err)
		return OutcomeTransientError
	}

	log.Printf("[stock] retry scheduled: book_id=%d delta=%d run_at=%s", bookID, delta, runAt.Format(time.RFC3339))
	return OutcomeMissingTarget
}
