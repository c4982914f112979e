package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/metalagman/taskgraph/internal/config"
)

func loadConfig() (config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		path = filepath.Join(".taskgraph", "config.json")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := config.ValidateSettings(viper.AllSettings()); err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
