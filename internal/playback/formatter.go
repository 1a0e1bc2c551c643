package playback

import (
	"fmt"

	"caresense-playback/internal/location"
	"caresense-playback/internal/models"
)

// FormatRecord 将一条传感器记录格式化为可读状态行
// 纯函数；state 非 "ON" 的任何值（含门磁的 CLOSE 等脏数据）一律按 deactivated 处理
func FormatRecord(record models.SensorRecord, resolver *location.Resolver) string {
	room := resolver.Locate(record.Sensor)
	stateText := "deactivated"
	if record.State == models.StateOn {
		stateText = "activated"
	}
	return fmt.Sprintf("Sensor %s is %s at %s in %s", record.Sensor, stateText, record.Time, room)
}
