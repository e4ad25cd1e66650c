// Package scheduler 提供基于数据库的延迟重试调度器
//
// 为什么不用broker延迟队列：
// 1. 任务持久化在业务数据库,进程重启后不丢失
// 2. 重试计数随任务存储,可精确限制最大次数
// 3. 轮询worker单goroutine执行,实现简单且可观测
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/critical/catalog-service/internal/domain/stock"
	"github.com/critical/catalog-service/pkg/metrics"
)

// Job 一个延迟重试任务:在RunAt之后重新应用(BookID, Delta)
type Job struct {
	ID        uint
	BookID    uint
	Delta     int
	Attempts  int
	Status    string
	RunAt     time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// 任务状态
// pending → running(已认领) → done / failed / pending(重新排期)
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// JobRepository 重试任务仓储
// ClaimDue负责认领到期任务并自增attempts,认领必须是原子的
// (状态CAS),保证多实例部署下同一任务不被重复执行
type JobRepository interface {
	Enqueue(ctx context.Context, bookID uint, delta int, runAt time.Time) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]Job, error)
	Reschedule(ctx context.Context, jobID uint, runAt time.Time) error
	MarkDone(ctx context.Context, jobID uint) error
	MarkFailed(ctx context.Context, jobID uint) error
	CountPending(ctx context.Context) (int64, error)
}

// Applier 库存应用入口(由stock.Applier满足)
type Applier interface {
	Apply(ctx context.Context, bookID uint, delta int) stock.Outcome
}

// Scheduler 轮询式重试调度器
// 同时实现stock.RetryScheduler:Schedule入队,worker出队执行
// applier在Start时注入(Applier与Scheduler互相引用,构造无法一步完成)
type Scheduler struct {
	jobs         JobRepository
	applier      Applier
	delay        time.Duration
	maxAttempts  int
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler 创建调度器
// delay: 重试间隔(目标仍缺失时下次执行的延迟)
// maxAttempts: 单任务最大执行次数,超过后放弃并记error
func NewScheduler(jobs JobRepository, delay time.Duration, maxAttempts int, pollInterval time.Duration) *Scheduler {
	if delay <= 0 {
		delay = 20 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Scheduler{
		jobs:         jobs,
		delay:        delay,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		batchSize:    50,
		now:          time.Now,
	}
}

// Schedule 实现stock.RetryScheduler:持久化一个延迟重试任务
func (s *Scheduler) Schedule(ctx context.Context, bookID uint, delta int, runAt time.Time) error {
	if err := s.jobs.Enqueue(ctx, bookID, delta, runAt); err != nil {
		return err
	}
	metrics.IncRetryScheduled()
	return nil
}

// Start 启动轮询worker
// 每个pollInterval认领一批到期任务并逐个执行,直到Stop被调用
func (s *Scheduler) Start(ctx context.Context, ap Applier) {
	s.applier = ap
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		log.Printf("[scheduler] started: poll_interval=%s delay=%s max_attempts=%d",
			s.pollInterval, s.delay, s.maxAttempts)

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[scheduler] stopped")
				return
			case <-ticker.C:
				s.runDue(ctx)
			}
		}
	}()
}

// Stop 停止worker并等待当前批次执行完毕
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// runDue 认领并执行一批到期任务
func (s *Scheduler) runDue(ctx context.Context) {
	jobs, err := s.jobs.ClaimDue(ctx, s.now(), s.batchSize)
	if err != nil {
		log.Printf("[scheduler] ERROR claim due jobs: %v", err)
		return
	}

	for i := range jobs {
		if ctx.Err() != nil {
			return
		}
		s.runJob(ctx, &jobs[i])
	}

	if pending, err := s.jobs.CountPending(ctx); err == nil {
		metrics.SetRetryJobsPending(pending)
	}
}

// runJob 执行单个任务并按结果收尾
// 认领时attempts已自增,本次执行即第job.Attempts次
func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	outcome := s.applier.Apply(ctx, job.BookID, job.Delta)

	switch outcome {
	case stock.OutcomeApplied:
		if err := s.jobs.MarkDone(ctx, job.ID); err != nil {
			log.Printf("[scheduler] ERROR mark job done: job_id=%d err=%v", job.ID, err)
		}
		log.Printf("[scheduler] retry succeeded: job_id=%d book_id=%d delta=%d attempt=%d",
			job.ID, job.BookID, job.Delta, job.Attempts)

	case stock.OutcomeMissingTarget, stock.OutcomeTransientError:
		// 目标仍缺失或存储瞬时故障,消耗一次尝试后继续等
		if job.Attempts >= s.maxAttempts {
			s.giveUp(ctx, job, outcome)
			return
		}
		runAt := s.now().Add(s.delay)
		if err := s.jobs.Reschedule(ctx, job.ID, runAt); err != nil {
			log.Printf("[scheduler] ERROR reschedule job: job_id=%d err=%v", job.ID, err)
			return
		}
		log.Printf("[scheduler] retry rescheduled: job_id=%d book_id=%d attempt=%d/%d run_at=%s",
			job.ID, job.BookID, job.Attempts, s.maxAttempts, runAt.Format(time.RFC3339))

	case stock.OutcomeInvariantViolation:
		// 业务上不可恢复,重试无意义,直接放弃
		if err := s.jobs.MarkFailed(ctx, job.ID); err != nil {
			log.Printf("[scheduler] ERROR mark job failed: job_id=%d err=%v", job.ID, err)
		}
		log.Printf("[scheduler] ERROR retry rejected, stock would go negative: job_id=%d book_id=%d delta=%d",
			job.ID, job.BookID, job.Delta)

	default:
		if err := s.jobs.MarkFailed(ctx, job.ID); err != nil {
			log.Printf("[scheduler] ERROR mark job failed: job_id=%d err=%v", job.ID, err)
		}
		log.Printf("[scheduler] ERROR retry failed: job_id=%d book_id=%d delta=%d outcome=%s",
			job.ID, job.BookID, job.Delta, outcome)
	}
}

// giveUp 重试次数耗尽,放弃任务
func (s *Scheduler) giveUp(ctx context.Context, job *Job, outcome stock.Outcome) {
	if err := s.jobs.MarkFailed(ctx, job.ID); err != nil {
		log.Printf("[scheduler] ERROR mark job failed: job_id=%d err=%v", job.ID, err)
	}
	metrics.IncRetryExhausted()
	log.Printf("[scheduler] ERROR retries exhausted, giving up: job_id=%d book_id=%d delta=%d attempts=%d outcome=%s",
		job.ID, job.BookID, job.Delta, job.Attempts, outcome)
}
