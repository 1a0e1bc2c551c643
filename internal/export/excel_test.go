package export

import (
	"bytes"
	"testing"
	"time"

	"caresense-playback/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateHistoryExport(t *testing.T) {
	correctedAt := time.Date(2026, 8, 31, 7, 0, 0, 0, time.UTC)
	results := []models.ClassificationResult{
		{
			ResultID:        "result-1",
			Timestamp:       "05:41:00",
			PredictedAt:     time.Date(2026, 8, 31, 5, 41, 0, 0, time.UTC),
			Prediction:      "Activity detected: Bedroom activity",
			ConfidenceScore: "88%",
			SourceBatch: models.Batch{
				{Date: "2010-11-04", Time: "05:40:51.303", Sensor: "M003", State: "ON"},
				{Date: "2010-11-04", Time: "05:40:52.005", Sensor: "M002", State: "OFF"},
			},
			CorrectedLabel: "Bed_to_Toilet",
			CorrectedAt:    &correctedAt,
		},
		{
			ResultID:        "result-2",
			Timestamp:       "08:11:10",
			PredictedAt:     time.Date(2026, 8, 31, 8, 11, 10, 0, time.UTC),
			Prediction:      "Activity detected: Other room activity",
			ConfidenceScore: "73%",
			SourceBatch: models.Batch{
				{Date: "2010-11-04", Time: "08:11:09.333", Sensor: "M015", State: "ON"},
			},
		},
	}

	data, err := GenerateHistoryExport(results)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Activity History")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, HistoryExportHeader, rows[0])

	assert.Equal(t, "2026-08-31 05:41:00", rows[1][0])
	assert.Equal(t, "Activity detected: Bedroom activity", rows[1][1])
	assert.Equal(t, "88%", rows[1][2])
	assert.Equal(t, "Bed_to_Toilet", rows[1][3])
	assert.Equal(t, "2026-08-31 07:00:00", rows[1][4])
	assert.Equal(t, "2", rows[1][5])
	assert.Equal(t, "2010-11-04,05:40:51.303,M003,ON", rows[1][6])
	assert.Equal(t, "2010-11-04,05:40:52.005,M002,OFF", rows[1][7])

	// 单事件批次：首末事件相同，未修正字段留空
	assert.Equal(t, "1", rows[2][5])
	assert.Equal(t, rows[2][6], rows[2][7])
	assert.Equal(t, "Activity detected: Other room activity", rows[2][1])
}

func TestGenerateHistoryExport_Empty(t *testing.T) {
	data, err := GenerateHistoryExport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Activity History")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, HistoryExportHeader, rows[0])
}
