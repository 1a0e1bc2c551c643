package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSensorLog(t *testing.T) {
	path := writeTempFile(t, "log.json", `[
		{"date":"2010-11-04","time":"05:40:51.303","sensor":"M003","state":"ON","activity":"Bed_to_Toilet"},
		{"date":"2010-11-04","time":"05:40:52.005","sensor":"M002","state":"OFF"}
	]`)

	records, err := LoadSensorLog(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "M003", records[0].Sensor)
	assert.Equal(t, "ON", records[0].State)
	assert.Equal(t, "Bed_to_Toilet", records[0].Activity)
	assert.Equal(t, "OFF", records[1].State)
}

func TestLoadSensorLog_Empty(t *testing.T) {
	path := writeTempFile(t, "log.json", `[]`)

	_, err := LoadSensorLog(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sensor log is empty")
}

func TestLoadSensorLog_MissingFile(t *testing.T) {
	_, err := LoadSensorLog(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read sensor log")
}

func TestLoadLocationMap_WrappedShape(t *testing.T) {
	// 数据集导出的原始形状：包含单个对象的数组
	path := writeTempFile(t, "locations.json", `[
		{
			"Bedroom": {"sensors": ["M001", "M002"]},
			"Kitchen": {"sensors": ["M015"]}
		}
	]`)

	locations, err := LoadLocationMap(path)
	require.NoError(t, err)
	require.Len(t, locations, 2)

	assert.Equal(t, []string{"M001", "M002"}, locations["Bedroom"].Sensors)
	assert.Equal(t, []string{"M015"}, locations["Kitchen"].Sensors)
}

func TestLoadLocationMap_DirectShape(t *testing.T) {
	path := writeTempFile(t, "locations.json", `{"Office": {"sensors": ["M025"]}}`)

	locations, err := LoadLocationMap(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"M025"}, locations["Office"].Sensors)
}

func TestLoadLocationMap_Malformed(t *testing.T) {
	path := writeTempFile(t, "locations.json", `not json`)

	_, err := LoadLocationMap(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse location map")
}
