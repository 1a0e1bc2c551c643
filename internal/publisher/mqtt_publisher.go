package publisher

import (
	"encoding/json"

	"caresense-playback/internal/config"
	"caresense-playback/internal/models"
	"caresense-playback/internal/mqttclient"
	"caresense-playback/internal/playback"

	"go.uber.org/zap"
)

// MQTTPublisher 把分类结果推到 MQTT（照护端通知通道）
type MQTTPublisher struct {
	config     *config.Config
	mqttClient *mqttclient.Client
	logger     *zap.Logger
}

// NewMQTTPublisher 创建 MQTT 发布器
func NewMQTTPublisher(cfg *config.Config, client *mqttclient.Client, logger *zap.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		config:     cfg,
		mqttClient: client,
		logger:     logger,
	}
}

// PublishResult 发布一条分类结果到结果主题
func (p *MQTTPublisher) PublishResult(result *models.ClassificationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return p.mqttClient.Publish(p.config.Sinks.ResultTopic, p.config.MQTT.QoS, false, payload)
}

// Listener 返回挂接到回放引擎的事件回调
// 发布失败只记录日志，绝不中断回放周期
func (p *MQTTPublisher) Listener() playback.Listener {
	return func(ev playback.Event) {
		if ev.Type != playback.EventResultAdded {
			return
		}
		if err := p.PublishResult(ev.Result); err != nil {
			p.logger.Warn("Failed to publish result to MQTT",
				zap.String("topic", p.config.Sinks.ResultTopic),
				zap.Error(err),
			)
		}
	}
}
