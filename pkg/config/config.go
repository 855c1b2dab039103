package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the worker configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lmstfy   LmstfyConfig   `mapstructure:"lmstfy"`
	Magento2 Magento2Config `mapstructure:"magento2"`
	Workers  []WorkerConfig `mapstructure:"workers"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig configures the HTTP ingress. An empty port disables it.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// MySQLConfig configures the sync audit log. An empty DSN disables it.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig configures the document cache and the result channel. An empty addr disables both.
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	CachePrefix   string `mapstructure:"cache_prefix"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// Magento2Config holds the target shop defaults and the delivery settings.
type Magento2Config struct {
	ShopURL       string     `mapstructure:"shop_url"`
	ShopAuthToken string     `mapstructure:"shop_auth_token"`
	Rest          RestConfig `mapstructure:"rest"`
}

type RestConfig struct {
	Timeout    time.Duration    `mapstructure:"timeout"`
	Redelivery RedeliveryConfig `mapstructure:"redelivery"`
}

// RedeliveryConfig mirrors magento2.rest.redelivery.{attempts,delay}; delay is in milliseconds.
type RedeliveryConfig struct {
	Attempts int `mapstructure:"attempts"`
	Delay    int `mapstructure:"delay"`
}

// DelayDuration returns the redelivery delay as a time.Duration.
func (r RedeliveryConfig) DelayDuration() time.Duration {
	return time.Duration(r.Delay) * time.Millisecond
}

type WorkerConfig struct {
	Name          string           `mapstructure:"name"`
	QueueName     string           `mapstructure:"queue_name"`
	CallbackQueue string           `mapstructure:"callback_queue"`
	Subscriber    SubscriberConfig `mapstructure:"subscriber"`
	Processor     ProcessorConfig  `mapstructure:"processor"`
}

type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`
	Rate         time.Duration `mapstructure:"rate"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TTR          time.Duration `mapstructure:"ttr"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`
	BufferSize int           `mapstructure:"buffer_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

const envPrefix = "M2SYNC"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "m2sync")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("redis.cache_prefix", "m2sync:cache:")
	v.SetDefault("redis.channel_prefix", "magento2:status:")
	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("magento2.rest.timeout", "30s")
	v.SetDefault("magento2.rest.redelivery.attempts", 2)
	v.SetDefault("magento2.rest.redelivery.delay", 1000)
}

// Load reads the YAML file at configPath. Keys can be overridden by
// M2SYNC_ prefixed environment variables (M2SYNC_MAGENTO2_REST_REDELIVERY_ATTEMPTS).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	cfg.applyWorkerDefaults()
	return &cfg, nil
}

func (c *Config) applyWorkerDefaults() {
	for i := range c.Workers {
		w := &c.Workers[i]
		if w.Subscriber.Threads <= 0 {
			w.Subscriber.Threads = 1
		}
		if w.Subscriber.Timeout <= 0 {
			w.Subscriber.Timeout = 3 * time.Second
		}
		if w.Subscriber.TTR <= 0 {
			w.Subscriber.TTR = 60 * time.Second
		}
		if w.Subscriber.ErrorBackoff <= 0 {
			w.Subscriber.ErrorBackoff = time.Second
		}
		if w.Processor.Threads <= 0 {
			w.Processor.Threads = 4
		}
		if w.Processor.BufferSize <= 0 {
			w.Processor.BufferSize = w.Processor.Threads
		}
		if w.Processor.Timeout <= 0 {
			w.Processor.Timeout = 2 * time.Minute
		}
	}
}

// Validate checks the settings the worker cannot start without.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	for i, w := range c.Workers {
		if w.QueueName == "" {
			return fmt.Errorf("workers[%d].queue_name is required", i)
		}
	}
	if c.Magento2.Rest.Redelivery.Attempts < 0 {
		return fmt.Errorf("magento2.rest.redelivery.attempts must not be negative")
	}
	if c.Magento2.Rest.Redelivery.Delay < 0 {
		return fmt.Errorf("magento2.rest.redelivery.delay must not be negative")
	}
	if c.Magento2.Rest.Timeout <= 0 {
		return fmt.Errorf("magento2.rest.timeout must be positive")
	}
	return nil
}
