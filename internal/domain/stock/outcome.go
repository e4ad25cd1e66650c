package stock

// Outcome 单次库存应用的结果分类
// 每种结果对应确定的消息去向(见Listener):
//
//	Applied            → Ack
//	MissingTarget      → Ack(重试已移交调度器,broker不再负责)
//	InvariantViolation → Ack(重投无意义,记error日志)
//	TransientError     → Nack+Requeue(broker重新投递)
//	UnknownError       → Ack(避免不透明失败无限重投,记error日志)
type Outcome int

const (
	// OutcomeApplied 增量已提交
	OutcomeApplied Outcome = iota

	// OutcomeMissingTarget 目标图书不存在(跨服务最终一致:图书可能稍后创建)
	OutcomeMissingTarget

	// OutcomeInvariantViolation 应用后库存为负,违反不变式
	OutcomeInvariantViolation

	// OutcomeTransientError 瞬时存储错误(死锁、超时、连接中断)
	OutcomeTransientError

	// OutcomeUnknownError 其他未预期失败
	OutcomeUnknownError
)

// String 结果转字符串(日志与指标label)
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeMissingTarget:
		return "missing_target"
	case OutcomeInvariantViolation:
		return "invariant_violation"
	case OutcomeTransientError:
		return "transient_error"
	case OutcomeUnknownError:
		return "unknown_error"
	default:
		return "unknown"
	}
}
