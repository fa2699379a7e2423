// Package configs 管理 filevault 的应用配置，包括数据库、会话缓存、内容存储、消息队列与后台任务.
// 支持多种配置格式（YAML、JSON、TOML、dotenv），环境变量前缀为 FILEVAULT，并可启用热重载.
//
// Example:
//
//	if err := configs.InitConfig("./"); err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := configs.GetConfig()
//	fmt.Println(cfg.Server.Port, cfg.Content.Root)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀.
const EnvPrefix = "FILEVAULT"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`
		DB             DBConfig             `mapstructure:"db"`
		KV             KVConfig             `mapstructure:"kv"`
		MQ             MQConfig             `mapstructure:"mq"`
		Content        ContentConfig        `mapstructure:"content"`
		Auth           AuthConfig           `mapstructure:"auth"`
		Worker         WorkerConfig         `mapstructure:"worker"`
		Log            LogConfig            `mapstructure:"log"`
		Metrics        MetricsConfig        `mapstructure:"metrics"`
		Tracing        TracingConfig        `mapstructure:"tracing"`
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
	// mu 保护热重载期间的并发读写.
	mu sync.RWMutex
)

// InitConfig 加载应用程序配置，path 可以是配置文件，也可以是包含 config.* 的目录.
// 目录下不存在配置文件时仅使用默认值与环境变量.
func InitConfig(path string) error {
	v := viper.New()
	setAllDefaults(v)

	hasFile := false

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)

		hasFile = true
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(path)
		v.AddConfigPath(filepath.Join(path, "configs"))

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".filevault"))
		}

		for _, ext := range []string{"yaml", "yml", "json", "toml", "env", "dotenv"} {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				v.SetConfigFile(cfg)

				hasFile = true

				break
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if hasFile || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	mu.Lock()
	globalConfig = cfg
	appViper = v
	mu.Unlock()

	reloadConfigs(v, cfg.Server.ReloadConfig)

	return nil
}

// Default 返回只包含默认值的配置，测试和子命令可直接使用.
func Default() AppConfig {
	v := viper.New()
	setAllDefaults(v)

	var cfg AppConfig
	_ = v.Unmarshal(&cfg)

	return cfg
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		serverConfig  ServerConfig
		dbConfig      DBConfig
		kvConfig      KVConfig
		mqConfig      MQConfig
		contentConfig ContentConfig
		authConfig    AuthConfig
		workerConfig  WorkerConfig
		logConfig     LogConfig
		metricsConfig MetricsConfig
		tracingConfig TracingConfig
		rateLimit     RateLimitConfig
		breaker       CircuitBreakerConfig
	)

	serverConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	contentConfig.setDefaults(v)
	authConfig.setDefaults(v)
	workerConfig.setDefaults(v)
	logConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	rateLimit.setDefaults(v)
	breaker.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload || v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		var cfg AppConfig
		if err := v.Unmarshal(&cfg); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)

			return
		}

		mu.Lock()
		globalConfig = cfg
		mu.Unlock()
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置的快照.
func GetConfig() *AppConfig {
	mu.RLock()
	defer mu.RUnlock()

	cfg := globalConfig

	return &cfg
}

// GetViper 返回全局 Viper 实例.
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()

	return appViper
}
