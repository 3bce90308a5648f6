package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"letterbox/internal/core/domain"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const readBatchSize = 256

// Store reads source images from and writes artifacts to the local filesystem.
type Store struct {
	batchSize int
}

func NewStore() *Store {
	return &Store{batchSize: readBatchSize}
}

// Sources returns a lazy, single-use sequence over the eligible files in dir. Only regular files (or symlinks to
// them) with a supported extension are yielded. Entries are read in batches and each batch is yielded in name
// order. A failure while reading the directory is yielded once and ends the sequence.
func (s *Store) Sources(dir string) (iter.Seq2[domain.SourceFile, error], error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingInputDirectory, dir)
		}
		return nil, fmt.Errorf("error reading input directory %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrMissingInputDirectory, dir)
	}

	consumed := false

	return func(yield func(domain.SourceFile, error) bool) {
		if consumed {
			return
		}
		consumed = true

		f, err := os.Open(dir)
		if err != nil {
			yield(domain.SourceFile{}, fmt.Errorf("error opening input directory %w", err))
			return
		}
		defer f.Close()

		for {
			entries, err := f.ReadDir(s.batchSize)
			slices.SortFunc(entries, func(a, b fs.DirEntry) int {
				return strings.Compare(a.Name(), b.Name())
			})

			for _, entry := range entries {
				src, ok := eligible(dir, entry)
				if !ok {
					log.Debug().Str("entry", entry.Name()).Msg("skipping ineligible entry")
					continue
				}

				if !yield(src, nil) {
					return
				}
			}

			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(domain.SourceFile{}, fmt.Errorf("error listing input directory %w", err))
				}
				return
			}
		}
	}, nil
}

func eligible(dir string, entry fs.DirEntry) (domain.SourceFile, bool) {
	path := filepath.Join(dir, entry.Name())

	src, ok := domain.NewSourceFile(path)
	if !ok {
		return domain.SourceFile{}, false
	}

	mode := entry.Type()
	if mode.IsRegular() {
		return src, true
	}

	if mode&fs.ModeSymlink == 0 {
		return domain.SourceFile{}, false
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return domain.SourceFile{}, false
	}

	return src, true
}

// ReadSource returns the byte content of a source file.
func (s *Store) ReadSource(src domain.SourceFile) ([]byte, error) {
	buf, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, &domain.DecodeError{File: src.Name(), Err: fmt.Errorf("error reading file %w", err)}
	}

	return buf, nil
}

// WriteArtifact encodes the artifact as PNG and moves it into place, so the destination is either the previous
// content or the complete new image. Existing files are overwritten.
func (s *Store) WriteArtifact(artifact domain.OutputArtifact) (string, error) {
	name := filepath.Base(artifact.Path)
	dir := filepath.Dir(artifact.Path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.WriteError{File: name, Err: fmt.Errorf("error creating output directory %w", err)}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, artifact.Image, imaging.PNG); err != nil {
		return "", &domain.WriteError{File: name, Err: fmt.Errorf("error encoding png %w", err)}
	}

	tmp, err := SaveTempFile(dir, buf.Bytes(), ".tmp")
	if err != nil {
		return "", &domain.WriteError{File: name, Err: err}
	}

	if err := os.Rename(tmp, artifact.Path); err != nil {
		RemoveTempFile(tmp)
		return "", &domain.WriteError{File: name, Err: fmt.Errorf("error moving output into place %w", err)}
	}

	log.Debug().Str("path", artifact.Path).Int("bytes", buf.Len()).Msg("wrote artifact")

	return artifact.Path, nil
}

// SaveTempFile saves bytes to a hidden, uniquely named file inside dir and returns the path.
func SaveTempFile(dir string, data []byte, extension string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	log.Debug().Int("bytes", len(data)).Str("extension", extension).Msg("creating temp file")

	path := filepath.Join(dir, fmt.Sprintf(".%s%s", id.String(), extension))

	f, err := os.Create(path)
	if err != nil {
		err = fmt.Errorf("error creating temp file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		RemoveTempFile(path)
		err = fmt.Errorf("error writing temp file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	if err := f.Close(); err != nil {
		RemoveTempFile(path)
		err = fmt.Errorf("error closing temp file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	log.Debug().Str("path", path).Msg("created file")

	return path, nil
}

// RemoveTempFile removes a specified temporary file at the given path and logs success or failure.
func RemoveTempFile(path string) {
	err := os.Remove(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up temp file")
		return
	}
	log.Debug().Str("path", path).Msg("cleaned up temp file")
}
