package models

import (
	"fmt"
	"time"
)

// 传感器状态值（门磁传感器还会出现 OPEN/CLOSE，按非 ON 处理）
const (
	StateOn  = "ON"
	StateOff = "OFF"
)

// SensorRecord 环境传感器日志记录（来自静态 fixture 日志，只读）
// 记录按发生顺序排列，顺序有意义：事件间隔依赖相邻记录的时间差
type SensorRecord struct {
	Date     string `json:"date"`     // 日历日期，如 "2024-01-01"
	Time     string `json:"time"`     // 当日时间，如 "10:00:00.000"（毫秒可省略）
	Sensor   string `json:"sensor"`   // 传感器ID，如 M003 / D002 / T001
	State    string `json:"state"`    // "ON" 或 "OFF"
	Activity string `json:"activity,omitempty"` // 标注活动（可选，仅fixture数据携带）
}

// Instant 解析 Date+Time 为绝对时间点
// 毫秒部分可省略（默认为0）
func (r SensorRecord) Instant() (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05.999", r.Date+" "+r.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse record timestamp: %w", err)
	}
	return t, nil
}

// Batch 一个有界的连续记录窗口（每个周期处理一批）
// 由批量提取器创建后立即被格式化与分类消费，不做持久化
type Batch []SensorRecord
