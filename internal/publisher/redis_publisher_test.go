package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"caresense-playback/internal/config"
	"caresense-playback/internal/models"
	"caresense-playback/internal/playback"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedisPublisher(t *testing.T) (*RedisPublisher, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{}
	cfg.Sinks.LiveStream = "caresense:playback:live"
	cfg.Sinks.ResultStream = "caresense:playback:results"

	return NewRedisPublisher(cfg, client, zap.NewNop()), mr, client
}

func TestRedisPublisher_PublishLogLine(t *testing.T) {
	p, _, client := setupRedisPublisher(t)
	ctx := context.Background()

	err := p.PublishLogLine(ctx, "Sensor M003 is activated at 05:40:51.303 in Bedroom", models.StageStreaming)
	require.NoError(t, err)

	entries, err := client.XRange(ctx, "caresense:playback:live", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "Sensor M003 is activated at 05:40:51.303 in Bedroom", entries[0].Values["line"])
	assert.Equal(t, "Streaming", entries[0].Values["stage"])
}

func TestRedisPublisher_PublishResult(t *testing.T) {
	p, _, client := setupRedisPublisher(t)
	ctx := context.Background()

	result := &models.ClassificationResult{
		ResultID:        "test-result-1",
		Timestamp:       "05:41:00",
		PredictedAt:     time.Now(),
		Prediction:      "Activity detected: Bedroom activity",
		ConfidenceScore: "88%",
	}
	require.NoError(t, p.PublishResult(ctx, result))

	entries, err := client.XRange(ctx, "caresense:playback:results", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var decoded models.ClassificationResult
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["data"].(string)), &decoded))
	assert.Equal(t, "test-result-1", decoded.ResultID)
	assert.Equal(t, "88%", decoded.ConfidenceScore)
}

func TestRedisPublisher_ListenerRoutesEvents(t *testing.T) {
	p, _, client := setupRedisPublisher(t)
	ctx := context.Background()
	listener := p.Listener(ctx)

	listener(playback.Event{
		Type:     playback.EventLogLine,
		Line:     "Sensor M015 is deactivated at 08:06:11.459 in Kitchen",
		Snapshot: playback.Snapshot{Stage: models.StageStreaming},
	})
	listener(playback.Event{
		Type:   playback.EventResultAdded,
		Result: &models.ClassificationResult{ResultID: "r-1", Prediction: "Eating"},
	})
	// 阶段变化事件不产生发布
	listener(playback.Event{Type: playback.EventStageChanged})

	liveLen, err := client.XLen(ctx, "caresense:playback:live").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), liveLen)

	resultLen, err := client.XLen(ctx, "caresense:playback:results").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), resultLen)
}

func TestRedisPublisher_ListenerSurvivesRedisOutage(t *testing.T) {
	// 发布失败只记日志，回调不能 panic、不能阻塞回放
	p, mr, _ := setupRedisPublisher(t)
	listener := p.Listener(context.Background())

	mr.Close()

	assert.NotPanics(t, func() {
		listener(playback.Event{
			Type:     playback.EventLogLine,
			Line:     "Sensor M001 is activated at 09:00:00.000 in Bedroom",
			Snapshot: playback.Snapshot{Stage: models.StageStreaming},
		})
		listener(playback.Event{
			Type:   playback.EventResultAdded,
			Result: &models.ClassificationResult{ResultID: "r-2"},
		})
	})
}
