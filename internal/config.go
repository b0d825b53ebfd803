package internal

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pavodb/pavodb/internal/storage"
)

type PavoConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		DataDir  string `mapstructure:"data_dir"`
		PageSize int    `mapstructure:"page_size"`
	} `mapstructure:"storage"`

	Pool struct {
		Capacity int  `mapstructure:"capacity"`
		Debug    bool `mapstructure:"debug"`
	} `mapstructure:"pool"`
}

func LoadConfig(path string) (*PavoConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app_name", "pavodb")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.page_size", storage.DefaultPageSize)
	v.SetDefault("pool.capacity", 128)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg PavoConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
