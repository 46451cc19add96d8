package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Client  ClientConfig  `mapstructure:"client"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	History HistoryConfig `mapstructure:"history"`
}

type ClientConfig struct {
	DirectoryURL      string        `mapstructure:"directory_url"`
	Nickname          string        `mapstructure:"nickname"`
	EventQueueSize    int           `mapstructure:"event_queue_size"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	DialTimeout       time.Duration `mapstructure:"dial_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// MetricsConfig: an empty address disables the metrics endpoint.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// HistoryConfig: an empty driver disables the history store.
type HistoryConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

const (
	DirectoryURLKey      = "client.directory_url"
	NicknameKey          = "client.nickname"
	EventQueueSizeKey    = "client.event_queue_size"
	HeartbeatIntervalKey = "client.heartbeat_interval"
	DialTimeoutKey       = "client.dial_timeout"
	LogLevelKey          = "log.level"
	LogOutputKey         = "log.output"
	MetricsAddressKey    = "metrics.address"
	HistoryDriverKey     = "history.driver"
	HistoryDSNKey        = "history.dsn"
)

var envReplacer = strings.NewReplacer(".", "_")

func setDefaults() {
	viper.SetDefault(DirectoryURLKey, "ws://localhost:8080/ws")
	viper.SetDefault(NicknameKey, "")
	viper.SetDefault(EventQueueSizeKey, 64)
	viper.SetDefault(HeartbeatIntervalKey, 5*time.Second)
	viper.SetDefault(DialTimeoutKey, 10*time.Second)
	viper.SetDefault(LogLevelKey, "info")
	viper.SetDefault(LogOutputKey, "stderr")
	viper.SetDefault(MetricsAddressKey, "")
	viper.SetDefault(HistoryDriverKey, "sqlite")
	viper.SetDefault(HistoryDSNKey, "lobby.db")
}

// LoadConfig reads config.yaml from path (or file when set) on top of the
// defaults. A missing config file is not an error; env vars such as
// LOBBY_CLIENT_NICKNAME override file values.
func LoadConfig(path, file string) (config *Config, err error) {
	setDefaults()

	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.AddConfigPath(path)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("lobby")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
