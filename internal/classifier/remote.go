package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"caresense-playback/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RemoteRequest 推理服务请求
type RemoteRequest struct {
	Events models.Batch `json:"events"`
}

// RemoteResponse 推理服务响应
type RemoteResponse struct {
	Status int             `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

// RemotePrediction 推理服务返回的预测数据
type RemotePrediction struct {
	Prediction string `json:"prediction"`
	Confidence string `json:"confidence"`
}

// RemoteClassifier 远端推理服务客户端
// 与 StubClassifier 实现同一接口，通过配置切换
type RemoteClassifier struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewRemoteClassifier 创建远端分类器客户端
func NewRemoteClassifier(baseURL string, logger *zap.Logger) *RemoteClassifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RemoteClassifier{
		httpClient: client,
		logger:     logger,
	}
}

// Classify 调用推理服务对批次分类
func (c *RemoteClassifier) Classify(ctx context.Context, batch models.Batch) (*models.ClassificationResult, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("cannot classify empty batch")
	}

	c.logger.Info("Calling inference API: classify",
		zap.Int("batch_size", len(batch)),
		zap.String("first_sensor", batch[0].Sensor),
	)

	var response RemoteResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(RemoteRequest{Events: batch}).
		SetResult(&response).
		Post("/activity/classify")

	if err != nil {
		c.logger.Error("Inference API call failed",
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call inference API: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("inference API returned HTTP %d", resp.StatusCode())
	}

	if response.Status != 0 {
		c.logger.Error("Inference API returned error",
			zap.Int("status", response.Status),
			zap.String("msg", response.Msg),
		)
		return nil, fmt.Errorf("inference API error: %s (status: %d)", response.Msg, response.Status)
	}

	var prediction RemotePrediction
	if err := json.Unmarshal(response.Data, &prediction); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prediction: %w", err)
	}

	now := time.Now()
	return &models.ClassificationResult{
		ResultID:        uuid.New().String(),
		Timestamp:       now.Format("15:04:05"),
		PredictedAt:     now,
		Prediction:      prediction.Prediction,
		ConfidenceScore: prediction.Confidence,
		SourceBatch:     batch,
	}, nil
}
