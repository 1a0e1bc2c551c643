package playback

import (
	"time"

	"caresense-playback/internal/models"
)

// GapBounds 事件间隔的展示节拍约束
type GapBounds struct {
	Min     time.Duration // 最小可感知间隔
	Max     time.Duration // 最大等待间隔
	Default time.Duration // next 缺失（批内末条）时的固定间隔
}

// EventGap 由相邻记录的时间差计算展示间隔
// 真实传感器的时间差被夹到 [Min, Max]，回放节奏不受数据疏密影响；
// next 为 nil 时返回 Default；任一记录时间戳解析失败时返回 0，
// 坏记录只是立即流过，不会卡住回放
func EventGap(current models.SensorRecord, next *models.SensorRecord, bounds GapBounds) time.Duration {
	if next == nil {
		return bounds.Default
	}

	currentInstant, err := current.Instant()
	if err != nil {
		return 0
	}
	nextInstant, err := next.Instant()
	if err != nil {
		return 0
	}

	diff := nextInstant.Sub(currentInstant)
	if diff < bounds.Min {
		return bounds.Min
	}
	if diff > bounds.Max {
		return bounds.Max
	}
	return diff
}
