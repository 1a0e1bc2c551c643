package location

import (
	"sort"

	"caresense-playback/internal/fixture"
)

// UnknownLocation 未映射传感器的兜底位置
// fixture 数据里的脏数据不能中断回放，所以 Locate 是全函数，永不失败
const UnknownLocation = "Unknown Location"

// Resolver 传感器位置解析器
// 启动时由位置映射构建一次索引，之后只读
type Resolver struct {
	sensorToRoom map[string]string
}

// NewResolver 由位置映射构建解析器
// 同一传感器出现在多个房间时，按房间名排序后先出现的房间生效（保证确定性）
func NewResolver(locations fixture.SensorLocationMap) *Resolver {
	rooms := make([]string, 0, len(locations))
	for room := range locations {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)

	index := make(map[string]string)
	for _, room := range rooms {
		for _, sensor := range locations[room].Sensors {
			if _, exists := index[sensor]; !exists {
				index[sensor] = room
			}
		}
	}

	return &Resolver{sensorToRoom: index}
}

// Locate 返回传感器所在的房间名，未映射时返回 UnknownLocation
func (r *Resolver) Locate(sensorID string) string {
	if room, ok := r.sensorToRoom[sensorID]; ok {
		return room
	}
	return UnknownLocation
}
