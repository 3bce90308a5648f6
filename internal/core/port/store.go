package port

import (
	"iter"
	"letterbox/internal/core/domain"
)

type SourceLister interface {
	// Sources lists the eligible files of a directory as a single-use sequence. It fails with
	// domain.ErrMissingInputDirectory when the directory is absent.
	Sources(dir string) (iter.Seq2[domain.SourceFile, error], error)
	// ReadSource returns the full byte content of a source file.
	ReadSource(src domain.SourceFile) ([]byte, error)
}

type ArtifactWriter interface {
	// WriteArtifact encodes the artifact as PNG at its path, creating parent directories, and returns the path
	// written.
	WriteArtifact(artifact domain.OutputArtifact) (string, error)
}
