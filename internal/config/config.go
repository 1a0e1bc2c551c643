package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// Config 回放服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	// 回放配置
	Playback struct {
		LogPath         string // 传感器日志 fixture 路径
		LocationMapPath string // 传感器位置映射 fixture 路径
		BatchSize       int    // 每周期批次大小，默认 5

		// 节奏配置（展示节拍，与真实传感器时间无关的上下限）
		MinEventGap        time.Duration // 相邻事件最小间隔，默认 500ms
		MaxEventGap        time.Duration // 相邻事件最大间隔，默认 5s
		DefaultEventGap    time.Duration // 批内末条记录的固定间隔，默认 1s
		BatchObservePause  time.Duration // 批次流完后的观察停顿，默认 2s
		ResultDisplayPause time.Duration // 结果展示停顿，默认 3s
	}

	// 分类器配置
	Classifier struct {
		Mode    string        // "stub" 或 "remote"
		BaseURL string        // remote 模式的推理服务地址
		Latency time.Duration // stub 模式的模拟推理耗时，默认 1s
	}

	// 输出端配置
	Sinks struct {
		RedisEnabled    bool   // 是否发布到 Redis Streams
		MQTTEnabled     bool   // 是否发布到 MQTT
		PostgresEnabled bool   // 是否持久化结果历史
		LiveStream      string // 实时日志行 Stream，如 "caresense:playback:live"
		ResultStream    string // 分类结果 Stream，如 "caresense:playback:results"
		ResultTopic     string // MQTT 结果主题
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 从环境变量加载（默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "caresense")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "caresense-playback")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	// 回放配置
	cfg.Playback.LogPath = getEnv("PLAYBACK_LOG_PATH", "data/sensor_log.json")
	cfg.Playback.LocationMapPath = getEnv("PLAYBACK_LOCATION_MAP_PATH", "data/sensor_locations.json")
	cfg.Playback.BatchSize = getEnvInt("PLAYBACK_BATCH_SIZE", 5)
	cfg.Playback.MinEventGap = getEnvMillis("PLAYBACK_MIN_EVENT_GAP_MS", 500)
	cfg.Playback.MaxEventGap = getEnvMillis("PLAYBACK_MAX_EVENT_GAP_MS", 5000)
	cfg.Playback.DefaultEventGap = getEnvMillis("PLAYBACK_DEFAULT_EVENT_GAP_MS", 1000)
	cfg.Playback.BatchObservePause = getEnvMillis("PLAYBACK_BATCH_OBSERVE_PAUSE_MS", 2000)
	cfg.Playback.ResultDisplayPause = getEnvMillis("PLAYBACK_RESULT_DISPLAY_PAUSE_MS", 3000)

	// 分类器配置
	cfg.Classifier.Mode = getEnv("CLASSIFIER_MODE", "stub")
	cfg.Classifier.BaseURL = getEnv("CLASSIFIER_BASE_URL", "")
	cfg.Classifier.Latency = getEnvMillis("CLASSIFIER_LATENCY_MS", 1000)

	// 输出端配置
	cfg.Sinks.RedisEnabled = getEnvBool("SINK_REDIS_ENABLED", false)
	cfg.Sinks.MQTTEnabled = getEnvBool("SINK_MQTT_ENABLED", false)
	cfg.Sinks.PostgresEnabled = getEnvBool("SINK_POSTGRES_ENABLED", false)
	cfg.Sinks.LiveStream = getEnv("SINK_LIVE_STREAM", "caresense:playback:live")
	cfg.Sinks.ResultStream = getEnv("SINK_RESULT_STREAM", "caresense:playback:results")
	cfg.Sinks.ResultTopic = getEnv("SINK_RESULT_TOPIC", "caresense/playback/results")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate 校验配置的基本约束
func (c *Config) validate() error {
	if c.Playback.BatchSize <= 0 {
		return fmt.Errorf("invalid batch size: %d", c.Playback.BatchSize)
	}
	if c.Playback.MinEventGap > c.Playback.MaxEventGap {
		return fmt.Errorf("min event gap %v exceeds max event gap %v",
			c.Playback.MinEventGap, c.Playback.MaxEventGap)
	}
	if c.Classifier.Mode != "stub" && c.Classifier.Mode != "remote" {
		return fmt.Errorf("unknown classifier mode: %s", c.Classifier.Mode)
	}
	if c.Classifier.Mode == "remote" && c.Classifier.BaseURL == "" {
		return fmt.Errorf("CLASSIFIER_BASE_URL is required in remote mode")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultMillis int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMillis)) * time.Millisecond
}
