package playback

import (
	"fmt"
	"testing"

	"caresense-playback/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLog(n int) []models.SensorRecord {
	log := make([]models.SensorRecord, n)
	for i := range log {
		log[i] = models.SensorRecord{
			Date:   "2024-01-01",
			Time:   fmt.Sprintf("10:00:%02d.000", i),
			Sensor: fmt.Sprintf("M%03d", i+1),
			State:  "ON",
		}
	}
	return log
}

func TestNextBatch_FullBatch(t *testing.T) {
	log := makeLog(12)

	batch, nextCursor := NextBatch(log, 0, 5)
	require.Len(t, batch, 5)
	assert.Equal(t, 5, nextCursor)
	assert.Equal(t, "M001", batch[0].Sensor)
	assert.Equal(t, "M005", batch[4].Sensor)
}

func TestNextBatch_PartialTail(t *testing.T) {
	log := makeLog(12)

	batch, nextCursor := NextBatch(log, 10, 5)
	require.Len(t, batch, 2)
	assert.Equal(t, 12, nextCursor)
	assert.Equal(t, "M011", batch[0].Sensor)
}

func TestNextBatch_CursorAtEnd(t *testing.T) {
	log := makeLog(12)

	batch, nextCursor := NextBatch(log, 12, 5)
	assert.Empty(t, batch)
	assert.Equal(t, 12, nextCursor)
}

func TestNextBatch_SizeAndCursorProperty(t *testing.T) {
	// 对任意游标：len(batch) = min(size, len-cursor)，nextCursor = cursor+len(batch) ≤ len
	log := makeLog(12)
	size := 5

	for cursor := 0; cursor <= len(log); cursor++ {
		batch, nextCursor := NextBatch(log, cursor, size)

		expected := size
		if remaining := len(log) - cursor; remaining < size {
			expected = remaining
		}
		if expected < 0 {
			expected = 0
		}

		assert.Len(t, batch, expected)
		assert.Equal(t, cursor+len(batch), nextCursor)
		assert.LessOrEqual(t, nextCursor, len(log))
	}
}

func TestNextBatch_Idempotent(t *testing.T) {
	log := makeLog(12)

	batch1, next1 := NextBatch(log, 5, 5)
	batch2, next2 := NextBatch(log, 5, 5)

	assert.Equal(t, batch1, batch2)
	assert.Equal(t, next1, next2)
}
