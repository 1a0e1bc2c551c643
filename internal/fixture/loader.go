package fixture

import (
	"encoding/json"
	"fmt"
	"os"

	"caresense-playback/internal/models"
)

// RoomSensors 单个房间的传感器集合
type RoomSensors struct {
	Sensors []string `json:"sensors"`
}

// SensorLocationMap 房间名到传感器集合的映射
// fixture 文件沿用数据集的原始形状：包含单个对象的数组
type SensorLocationMap map[string]RoomSensors

// LoadSensorLog 加载传感器日志 fixture（启动时一次性读入，只读）
func LoadSensorLog(path string) ([]models.SensorRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sensor log: %w", err)
	}

	var records []models.SensorRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse sensor log: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("sensor log is empty: %s", path)
	}

	return records, nil
}

// LoadLocationMap 加载传感器位置映射 fixture
func LoadLocationMap(path string) (SensorLocationMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read location map: %w", err)
	}

	// 数据集导出的格式是 [ { room: {sensors:[...]}, ... } ]
	var wrapped []SensorLocationMap
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped) > 0 {
		return wrapped[0], nil
	}

	// 兼容直接的对象形式 { room: {sensors:[...]}, ... }
	var direct SensorLocationMap
	if err := json.Unmarshal(data, &direct); err != nil {
		return nil, fmt.Errorf("failed to parse location map: %w", err)
	}

	return direct, nil
}
