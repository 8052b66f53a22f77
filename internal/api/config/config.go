package config

// Config 配置主体
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Relay  RelayConfig  `mapstructure:"relay"`
	DB     DBConfig     `mapstructure:"database"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	MinIO  MinIOConfig  `mapstructure:"minio"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Logger LoggerConfig `mapstructure:"logger"`
	Upload UploadConfig `mapstructure:"upload"`
	Client ClientConfig `mapstructure:"client"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RelayConfig 消息中继配置
type RelayConfig struct {
	// Broker 房间广播方式: redis (多实例) 或 local (单实例)
	Broker       string `mapstructure:"broker"`
	SendBuffer   int    `mapstructure:"send_buffer"`
	PingInterval int    `mapstructure:"ping_interval"` // 秒
	PongWait     int    `mapstructure:"pong_wait"`     // 秒
	MaxFrameSize int64  `mapstructure:"max_frame_size"`
	SaveWorkers  int    `mapstructure:"save_workers"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	Bucket           string `mapstructure:"bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	ExternalUseSSL   bool   `mapstructure:"external_use_ssl"`
}

type KafkaConfig struct {
	Brokers []string   `mapstructure:"brokers"`
	Topic   string     `mapstructure:"topic"`
	Sasl    SaslConfig `mapstructure:"sasl"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AuthConfig WS 鉴权
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
	Issuer  string `mapstructure:"issuer"`
	TTL     int    `mapstructure:"ttl"` // 小时
}

type LoggerConfig struct {
	Level    string         `mapstructure:"level"`
	Logstash LogstashConfig `mapstructure:"logstash"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// UploadConfig 附件配置
type UploadConfig struct {
	MaxSize        int64  `mapstructure:"max_size"`
	PendingTTL     int    `mapstructure:"pending_ttl"` // 小时
	CleanupPattern string `mapstructure:"cleanup_pattern"`
}

// ClientConfig 聊天客户端配置
type ClientConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	WSURL          string `mapstructure:"ws_url"`
	SessionFile    string `mapstructure:"session_file"`
	Token          string `mapstructure:"token"`
	RequestTimeout int    `mapstructure:"request_timeout"` // 秒
}
