package main

import (
	"context"
	"errors"
	"letterbox/internal/adapters/converter"
	"letterbox/internal/adapters/decoder"
	"letterbox/internal/adapters/file"
	"letterbox/internal/config"
	"letterbox/internal/core/domain"
	"letterbox/internal/core/service"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly})

	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.Load(v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.SetGlobalLevel(cfg.Level())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.Info().
		Str("input", cfg.InputDir).
		Str("output", cfg.OutputDir).
		Int("width", cfg.CanvasWidth).
		Int("height", cfg.CanvasHeight).
		Msg("starting letterbox")

	summary, err := run(ctx, cfg)
	switch {
	case errors.Is(err, domain.ErrMissingInputDirectory):
		log.Warn().Str("input", cfg.InputDir).Msg("input directory does not exist")
		return
	case errors.Is(err, domain.ErrNoEligibleFiles):
		log.Warn().Str("input", cfg.InputDir).Msg("no JPG/PNG/SVG files found")
		return
	case err != nil:
		log.Error().Err(err).Msg("batch stopped early")
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("done")
}

func run(ctx context.Context, cfg *config.Config) (domain.Summary, error) {
	store := file.NewStore()
	imageDecoder := decoder.NewImageDecoder(converter.NewSVGRasterizer())

	processor := service.NewBatchProcessor(store, imageDecoder, store, service.Options{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Target:    domain.Size{Width: cfg.CanvasWidth, Height: cfg.CanvasHeight},
	})

	return processor.Run(ctx)
}
