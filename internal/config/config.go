package config

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	KeyInputDir     = "input.dir"
	KeyOutputDir    = "output.dir"
	KeyCanvasWidth  = "canvas.width"
	KeyCanvasHeight = "canvas.height"
	KeyLogLevel     = "log.level"
)

type Config struct {
	InputDir     string
	OutputDir    string
	CanvasWidth  int
	CanvasHeight int
	LogLevel     string
}

// SetDefaults registers the fixed run parameters: 854x480 output read from raw_images and written to
// processed_images.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyInputDir, "raw_images")
	v.SetDefault(KeyOutputDir, "processed_images")
	v.SetDefault(KeyCanvasWidth, 854)
	v.SetDefault(KeyCanvasHeight, 480)
	v.SetDefault(KeyLogLevel, "info")
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		InputDir:     v.GetString(KeyInputDir),
		OutputDir:    v.GetString(KeyOutputDir),
		CanvasWidth:  v.GetInt(KeyCanvasWidth),
		CanvasHeight: v.GetInt(KeyCanvasHeight),
		LogLevel:     v.GetString(KeyLogLevel),
	}

	if cfg.InputDir == "" || cfg.OutputDir == "" {
		return nil, errors.New("input and output directories must be set")
	}

	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}

	return cfg, nil
}

func (c *Config) Level() zerolog.Level {
	switch c.LogLevel {
	case "debug":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
