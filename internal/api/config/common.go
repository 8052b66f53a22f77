package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg，环境变量 GYMCHAT_* 可覆盖
func LoadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("GYMCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("relay.broker", "redis")
	v.SetDefault("relay.send_buffer", 256)
	v.SetDefault("relay.ping_interval", 30)
	v.SetDefault("relay.pong_wait", 60)
	v.SetDefault("relay.max_frame_size", 64*1024)
	v.SetDefault("relay.save_workers", 5)
	v.SetDefault("kafka.topic", "gymchat.messages")
	v.SetDefault("auth.issuer", "GymChat")
	v.SetDefault("auth.ttl", 24)
	v.SetDefault("logger.level", "info")
	v.SetDefault("upload.max_size", 10<<20)
	v.SetDefault("upload.pending_ttl", 24)
	v.SetDefault("upload.cleanup_pattern", "0 0 * * * *")
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.ws_url", "ws://localhost:8080/chat/ws")
	v.SetDefault("client.session_file", "./session.json")
	v.SetDefault("client.request_timeout", 10)
}
