package domain

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	SVG  Format = "svg"
)

const OutputExtension = ".png"

var formats = map[string]Format{
	".jpg":  JPEG,
	".jpeg": JPEG,
	".png":  PNG,
	".svg":  SVG,
}

// ParseFormat maps a file extension, with or without the leading dot, to a supported Format.
// Matching is case-insensitive.
func ParseFormat(ext string) (Format, bool) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	f, ok := formats[ext]
	return f, ok
}

type SourceFile struct {
	Path   string
	Format Format
}

// NewSourceFile builds a SourceFile from a path, reporting false for unsupported extensions
// and for dotfiles such as ".png" that have no stem.
func NewSourceFile(path string) (SourceFile, bool) {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if ext == name {
		return SourceFile{}, false
	}

	f, ok := ParseFormat(ext)
	if !ok {
		return SourceFile{}, false
	}

	return SourceFile{Path: path, Format: f}, true
}

func (s SourceFile) Name() string {
	return filepath.Base(s.Path)
}

// Stem is the file name without its extension.
func (s SourceFile) Stem() string {
	name := s.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OutputPath derives the destination of a source file inside dir, replacing its extension.
func OutputPath(dir string, src SourceFile) string {
	return filepath.Join(dir, src.Stem()+OutputExtension)
}

type Size struct {
	Width  int
	Height int
}

func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Placement is where a scaled bitmap lands on the canvas.
type Placement struct {
	Size    Size
	OffsetX int
	OffsetY int
}

type OutputArtifact struct {
	Image image.Image
	Path  string
}

// Result is the outcome of one file in a batch.
type Result struct {
	Source   SourceFile
	Original Size
	Resized  Size
	Output   string
	Err      error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

type Summary struct {
	Processed int
	Succeeded int
	Failed    int
	Results   []Result
}

func (s *Summary) Add(r Result) {
	s.Processed++
	if r.Failed() {
		s.Failed++
	} else {
		s.Succeeded++
	}
	s.Results = append(s.Results, r)
}
