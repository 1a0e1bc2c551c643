package models

import "time"

// Stage 回放状态机的阶段
type Stage string

const (
	StageIdle             Stage = "Idle"             // 空闲，等待下一周期触发
	StageStreaming        Stage = "Streaming"        // 逐条流式展示当前批次
	StageClassifying      Stage = "Classifying"      // 等待分类结果
	StageDisplayingResult Stage = "DisplayingResult" // 展示分类结果
	StageFinished         Stage = "Finished"         // 日志耗尽，终止态
)

// ClassificationResult 活动分类结果
// 创建后不再修改（correction 字段除外，由复核流程写入）
type ClassificationResult struct {
	ResultID        string       `json:"result_id"`        // UUID
	Timestamp       string       `json:"timestamp"`        // 分类时刻的挂钟显示时间，如 "18:00:31"
	PredictedAt     time.Time    `json:"predicted_at"`     // 分类时刻
	Prediction      string       `json:"prediction"`       // 人类可读的活动标签
	ConfidenceScore string       `json:"confidence_score"` // 置信度，如 "83%"
	SourceBatch     Batch        `json:"source_batch"`     // 产生该结果的批次（日志的非空连续切片）
	CorrectedLabel  string       `json:"corrected_label,omitempty"` // 人工修正的活动标签
	CorrectedAt     *time.Time   `json:"corrected_at,omitempty"`    // 修正时间
}

// PlaybackState 回放状态（仅由回放引擎持有和修改）
// 会话开始时 Cursor=0、Stage=Idle；屏幕销毁时整体丢弃，不持久化
type PlaybackState struct {
	Cursor       int                    // 指向完整日志的索引，单调非减，≤ 日志长度
	Stage        Stage                  // 当前阶段
	Busy         bool                   // 单飞标志：同一时刻至多一个批次在处理
	LiveLogLines []string               // 当前批次已流出的格式化行
	Results      []ClassificationResult // 本会话累计的分类结果（只追加）
}
