package playback

import "caresense-playback/internal/models"

// NextBatch 从完整日志中切出下一批待处理记录
// 纯函数：batch = log[cursor : min(cursor+size, len(log))]，
// nextCursor = cursor + len(batch)；cursor 越界时返回空批次（日志耗尽）
func NextBatch(log []models.SensorRecord, cursor int, size int) (models.Batch, int) {
	if cursor < 0 || cursor >= len(log) || size <= 0 {
		return models.Batch{}, cursor
	}

	end := cursor + size
	if end > len(log) {
		end = len(log)
	}

	return models.Batch(log[cursor:end]), end
}
