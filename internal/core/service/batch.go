package service

import (
	"context"
	"fmt"
	"letterbox/internal/core/domain"
	"letterbox/internal/core/port"

	"github.com/rs/zerolog/log"
)

type Options struct {
	InputDir  string
	OutputDir string
	Target    domain.Size
}

// BatchProcessor runs every eligible file of the input directory through decode, letterbox and write, one at a
// time.
type BatchProcessor struct {
	lister  port.SourceLister
	decoder port.ImageDecoder
	writer  port.ArtifactWriter
	opts    Options
}

func NewBatchProcessor(lister port.SourceLister, decoder port.ImageDecoder, writer port.ArtifactWriter,
	opts Options) *BatchProcessor {
	return &BatchProcessor{lister: lister, decoder: decoder, writer: writer, opts: opts}
}

// Run processes the batch. A failing file is recorded in the summary and the loop moves on. Only directory level
// conditions end the run with an error: domain.ErrMissingInputDirectory, domain.ErrNoEligibleFiles, a failed
// directory listing, or cancellation of ctx between files.
func (b *BatchProcessor) Run(ctx context.Context) (domain.Summary, error) {
	var summary domain.Summary

	sources, err := b.lister.Sources(b.opts.InputDir)
	if err != nil {
		return summary, err
	}

	for src, err := range sources {
		if err != nil {
			return summary, err
		}

		if err := ctx.Err(); err != nil {
			log.Warn().Int("processed", summary.Processed).Msg("batch interrupted")
			return summary, err
		}

		summary.Add(b.processFile(src))
	}

	if summary.Processed == 0 {
		return summary, fmt.Errorf("%w in %s", domain.ErrNoEligibleFiles, b.opts.InputDir)
	}

	return summary, nil
}

func (b *BatchProcessor) processFile(src domain.SourceFile) (result domain.Result) {
	l := log.With().
		Str("file", src.Name()).
		Logger()

	l.Info().Msg("processing")

	result.Source = src

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("unexpected failure processing %s: %v", src.Name(), r)
		}

		if result.Err != nil {
			l.Error().Err(result.Err).Msg("failed to process")
			return
		}

		l.Info().Str("output", result.Output).Msg("saved")
	}()

	data, err := b.lister.ReadSource(src)
	if err != nil {
		result.Err = err
		return result
	}

	img, err := b.decoder.Decode(src, data)
	if err != nil {
		result.Err = err
		return result
	}

	canvas, placement := Letterbox(img, b.opts.Target)
	result.Original = domain.SizeOf(img)
	result.Resized = placement.Size

	l.Info().
		Stringer("original", result.Original).
		Stringer("resized", result.Resized).
		Msg("resized")

	out, err := b.writer.WriteArtifact(domain.OutputArtifact{
		Image: canvas,
		Path:  domain.OutputPath(b.opts.OutputDir, src),
	})
	if err != nil {
		result.Err = err
		return result
	}

	result.Output = out

	return result
}
