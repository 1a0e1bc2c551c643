package classifier

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"caresense-playback/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Classifier 活动分类器接口
// 回放引擎只依赖这个接口，mock 实现可以换成真实推理服务而不触碰状态机
type Classifier interface {
	// Classify 对一个非空批次给出活动标签和置信度
	// 空批次属于调用方违约，返回错误；调用方必须跳过该周期并推进游标
	Classify(ctx context.Context, batch models.Batch) (*models.ClassificationResult, error)
}

// StubClassifier 模拟分类器
// 占位实现：固定延迟模拟推理耗时，按首条记录的传感器ID模式给出粗粒度标签，
// 置信度取 [70%, 100%) 的伪随机值
type StubClassifier struct {
	latency time.Duration
	logger  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStubClassifier 创建模拟分类器
func NewStubClassifier(latency time.Duration, logger *zap.Logger) *StubClassifier {
	return &StubClassifier{
		latency: latency,
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Classify 模拟一次推理调用
func (c *StubClassifier) Classify(ctx context.Context, batch models.Batch) (*models.ClassificationResult, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("cannot classify empty batch")
	}

	// 模拟推理延迟（可被上下文取消）
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.latency):
	}

	// 粗粒度标签：按首条记录的传感器ID模式判断
	prediction := "Activity detected: Other room activity"
	if strings.Contains(batch[0].Sensor, "M00") {
		prediction = "Activity detected: Bedroom activity"
	}

	c.mu.Lock()
	confidence := c.rng.Intn(30) + 70
	c.mu.Unlock()

	now := time.Now()
	result := &models.ClassificationResult{
		ResultID:        uuid.New().String(),
		Timestamp:       now.Format("15:04:05"),
		PredictedAt:     now,
		Prediction:      prediction,
		ConfidenceScore: fmt.Sprintf("%d%%", confidence),
		SourceBatch:     batch,
	}

	c.logger.Debug("Stub classification produced",
		zap.String("result_id", result.ResultID),
		zap.String("prediction", result.Prediction),
		zap.String("confidence", result.ConfidenceScore),
		zap.Int("batch_size", len(batch)),
	)

	return result, nil
}
