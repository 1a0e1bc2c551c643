package playback

import (
	"context"
	"sync"
	"time"

	"caresense-playback/internal/classifier"
	"caresense-playback/internal/location"
	"caresense-playback/internal/models"

	"go.uber.org/zap"
)

// Timing 回放节奏配置
type Timing struct {
	Gaps               GapBounds     // 批内相邻事件的间隔约束
	BatchObservePause  time.Duration // 批次流完后的观察停顿
	ResultDisplayPause time.Duration // 结果展示停顿
}

// EventType 引擎推送给订阅者的事件类型
type EventType string

const (
	EventStageChanged EventType = "stage_changed" // 状态机阶段变化
	EventLogLine      EventType = "log_line"      // 新的实时日志行
	EventResultAdded  EventType = "result_added"  // 新的分类结果
)

// Event 引擎推送事件
// Snapshot 是推送时刻状态的只读副本，订阅者不能反向修改引擎状态
type Event struct {
	Type     EventType
	Line     string                        // EventLogLine 时有效
	Result   *models.ClassificationResult  // EventResultAdded 时有效
	Snapshot Snapshot
}

// Snapshot 回放状态的只读快照
type Snapshot struct {
	Stage        models.Stage
	Cursor       int
	Total        int
	Busy         bool
	LiveLogLines []string
	Results      []models.ClassificationResult
}

// Listener 事件订阅回调
type Listener func(Event)

// Engine 回放状态机
// 一个周期 = 提取批次 → 按真实节奏流式展示 → 分类 → 展示结果 → 推进游标，
// 循环直到日志耗尽（Finished）。单飞：同一时刻至多一个批次在处理，
// Busy 期间的再次触发是 no-op。所有停顿都响应上下文取消，
// 调用方销毁时不会留下悬挂的定时器
type Engine struct {
	records    []models.SensorRecord
	resolver   *location.Resolver
	classifier classifier.Classifier
	batchSize  int
	timing     Timing
	logger     *zap.Logger

	mu             sync.Mutex
	state          models.PlaybackState
	listeners      map[int]Listener
	nextListenerID int
}

// NewEngine 创建回放引擎
// records 为启动时一次性加载的只读日志；初始状态 cursor=0、Stage=Idle
func NewEngine(
	records []models.SensorRecord,
	resolver *location.Resolver,
	cls classifier.Classifier,
	batchSize int,
	timing Timing,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		records:    records,
		resolver:   resolver,
		classifier: cls,
		batchSize:  batchSize,
		timing:     timing,
		logger:     logger,
		state: models.PlaybackState{
			Stage: models.StageIdle,
		},
		listeners: make(map[int]Listener),
	}
}

// Subscribe 订阅引擎事件，返回取消订阅句柄
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners[id] = l
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Snapshot 返回当前状态的只读快照
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// LatestResult 返回最近一次分类结果（供"查看详情"类外部动作只读消费）
func (e *Engine) LatestResult() (*models.ClassificationResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.state.Results) == 0 {
		return nil, false
	}
	result := e.state.Results[len(e.state.Results)-1]
	return &result, true
}

// Run 自动驱动周期直到日志耗尽或上下文取消
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("Playback started",
		zap.Int("total_records", len(e.records)),
		zap.Int("batch_size", e.batchSize),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		more, err := e.TriggerCycle(ctx)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	e.logger.Info("Playback finished",
		zap.Int("cursor", e.Snapshot().Cursor),
		zap.Int("results", len(e.Snapshot().Results)),
	)
	return nil
}

// TriggerCycle 触发一个完整周期
// Busy 期间或已 Finished 时为 no-op，返回 (false, nil)；
// 返回的 more 表示处理后是否还有剩余日志
func (e *Engine) TriggerCycle(ctx context.Context) (more bool, err error) {
	e.mu.Lock()
	if e.state.Busy {
		e.mu.Unlock()
		e.logger.Debug("Cycle trigger ignored: batch already in flight")
		return false, nil
	}
	if e.state.Stage == models.StageFinished {
		e.mu.Unlock()
		return false, nil
	}

	batch, nextCursor := NextBatch(e.records, e.state.Cursor, e.batchSize)
	if len(batch) == 0 {
		// 日志耗尽：终止态，不再处理任何触发
		e.state.Stage = models.StageFinished
		e.mu.Unlock()
		e.notify(Event{Type: EventStageChanged})
		return false, nil
	}

	e.state.Busy = true
	e.state.Stage = models.StageStreaming
	e.state.LiveLogLines = nil
	cursor := e.state.Cursor
	e.mu.Unlock()
	e.notify(Event{Type: EventStageChanged})

	e.logger.Debug("Streaming batch",
		zap.Int("cursor", cursor),
		zap.Int("batch_size", len(batch)),
	)

	// 按原始顺序逐条流出，相邻记录间按真实时间差（夹到展示区间）停顿
	for i := range batch {
		line := FormatRecord(batch[i], e.resolver)
		e.mu.Lock()
		e.state.LiveLogLines = append(e.state.LiveLogLines, line)
		e.mu.Unlock()
		e.notify(Event{Type: EventLogLine, Line: line})

		if i < len(batch)-1 {
			gap := EventGap(batch[i], &batch[i+1], e.timing.Gaps)
			if err := sleepContext(ctx, gap); err != nil {
				e.abort()
				return false, err
			}
		}
	}

	// 留出观察整批事件的时间再开始分类
	if err := sleepContext(ctx, e.timing.BatchObservePause); err != nil {
		e.abort()
		return false, err
	}

	e.setStage(models.StageClassifying)

	result, clsErr := e.classifier.Classify(ctx, batch)
	if clsErr != nil {
		if ctx.Err() != nil {
			e.abort()
			return false, ctx.Err()
		}
		// 分类失败不能卡住回放：跳过本周期，照常推进游标
		e.logger.Warn("Classification failed, skipping cycle",
			zap.Int("cursor", cursor),
			zap.Error(clsErr),
		)
	} else {
		e.mu.Lock()
		e.state.Results = append(e.state.Results, *result)
		e.mu.Unlock()
		e.notify(Event{Type: EventResultAdded, Result: result})
	}

	e.setStage(models.StageDisplayingResult)

	if err := sleepContext(ctx, e.timing.ResultDisplayPause); err != nil {
		e.abort()
		return false, err
	}

	// 推进游标，回到 Idle 或进入终止态
	e.mu.Lock()
	e.state.Cursor = nextCursor
	e.state.LiveLogLines = nil
	e.state.Busy = false
	if e.state.Cursor >= len(e.records) {
		e.state.Stage = models.StageFinished
	} else {
		e.state.Stage = models.StageIdle
	}
	finished := e.state.Stage == models.StageFinished
	e.mu.Unlock()
	e.notify(Event{Type: EventStageChanged})

	return !finished, nil
}

// abort 上下文取消时复位单飞标志
// 会话状态随调用方一起销毁，这里只保证引擎可安全丢弃
func (e *Engine) abort() {
	e.mu.Lock()
	e.state.Busy = false
	e.mu.Unlock()
}

// setStage 切换阶段并通知订阅者
func (e *Engine) setStage(stage models.Stage) {
	e.mu.Lock()
	e.state.Stage = stage
	e.mu.Unlock()
	e.notify(Event{Type: EventStageChanged})
}

// snapshotLocked 在持锁状态下构造快照（切片均为副本）
func (e *Engine) snapshotLocked() Snapshot {
	lines := make([]string, len(e.state.LiveLogLines))
	copy(lines, e.state.LiveLogLines)
	results := make([]models.ClassificationResult, len(e.state.Results))
	copy(results, e.state.Results)

	return Snapshot{
		Stage:        e.state.Stage,
		Cursor:       e.state.Cursor,
		Total:        len(e.records),
		Busy:         e.state.Busy,
		LiveLogLines: lines,
		Results:      results,
	}
}

// notify 向所有订阅者推送事件（不持锁调用回调）
func (e *Engine) notify(ev Event) {
	e.mu.Lock()
	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	ev.Snapshot = e.snapshotLocked()
	e.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

// sleepContext 可取消的停顿
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
