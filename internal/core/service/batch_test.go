package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"iter"
	"letterbox/internal/core/domain"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSourceLister struct {
	sources []domain.SourceFile
	listErr error
	iterErr error
	readErr map[string]error
	read    []string
}

func (m *MockSourceLister) Sources(_ string) (iter.Seq2[domain.SourceFile, error], error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	return func(yield func(domain.SourceFile, error) bool) {
		for _, src := range m.sources {
			if !yield(src, nil) {
				return
			}
		}
		if m.iterErr != nil {
			yield(domain.SourceFile{}, m.iterErr)
		}
	}, nil
}

func (m *MockSourceLister) ReadSource(src domain.SourceFile) ([]byte, error) {
	m.read = append(m.read, src.Name())
	if err := m.readErr[src.Name()]; err != nil {
		return nil, err
	}
	return []byte(src.Name()), nil
}

type MockImageDecoder struct {
	sizes map[string]domain.Size
	err   map[string]error
	panic string
}

func (m *MockImageDecoder) Decode(src domain.SourceFile, _ []byte) (*image.NRGBA, error) {
	if src.Name() == m.panic {
		panic("mock panic")
	}
	if err := m.err[src.Name()]; err != nil {
		return nil, &domain.DecodeError{File: src.Name(), Err: err}
	}

	size, ok := m.sizes[src.Name()]
	if !ok {
		size = domain.Size{Width: 10, Height: 10}
	}
	img := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img, nil
}

type MockArtifactWriter struct {
	err       error
	artifacts []domain.OutputArtifact
}

func (m *MockArtifactWriter) WriteArtifact(artifact domain.OutputArtifact) (string, error) {
	if m.err != nil {
		return "", &domain.WriteError{File: filepath.Base(artifact.Path), Err: m.err}
	}
	m.artifacts = append(m.artifacts, artifact)
	return artifact.Path, nil
}

func sources(t *testing.T, names ...string) []domain.SourceFile {
	t.Helper()
	var out []domain.SourceFile
	for _, name := range names {
		src, ok := domain.NewSourceFile(filepath.Join("raw_images", name))
		require.True(t, ok)
		out = append(out, src)
	}
	return out
}

var testOptions = Options{
	InputDir:  "raw_images",
	OutputDir: "processed_images",
	Target:    domain.Size{Width: 854, Height: 480},
}

func TestNewBatchProcessor(t *testing.T) {
	b := NewBatchProcessor(&MockSourceLister{}, &MockImageDecoder{}, &MockArtifactWriter{}, testOptions)

	assert.NotNil(t, b)
	assert.Equal(t, testOptions, b.opts)
}

func TestRunSuccessful(t *testing.T) {
	ml := &MockSourceLister{sources: sources(t, "wide.jpg", "icon.svg")}
	md := &MockImageDecoder{sizes: map[string]domain.Size{
		"wide.jpg": {Width: 1000, Height: 500},
		"icon.svg": {Width: 100, Height: 100},
	}}
	mw := &MockArtifactWriter{}

	summary, err := NewBatchProcessor(ml, md, mw, testOptions).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, domain.Size{Width: 1000, Height: 500}, summary.Results[0].Original)
	assert.Equal(t, domain.Size{Width: 854, Height: 427}, summary.Results[0].Resized)
	assert.Equal(t, filepath.Join("processed_images", "wide.png"), summary.Results[0].Output)
	assert.Equal(t, domain.Size{Width: 480, Height: 480}, summary.Results[1].Resized)
	assert.Equal(t, filepath.Join("processed_images", "icon.png"), summary.Results[1].Output)

	require.Len(t, mw.artifacts, 2)
	for _, a := range mw.artifacts {
		assert.Equal(t, testOptions.Target, domain.SizeOf(a.Image))
	}
}

func TestRunUsesConfiguredTarget(t *testing.T) {
	opts := testOptions
	opts.Target = domain.Size{Width: 64, Height: 32}
	mw := &MockArtifactWriter{}

	_, err := NewBatchProcessor(&MockSourceLister{sources: sources(t, "a.png")}, &MockImageDecoder{}, mw, opts).
		Run(context.Background())
	require.NoError(t, err)

	require.Len(t, mw.artifacts, 1)
	assert.Equal(t, opts.Target, domain.SizeOf(mw.artifacts[0].Image))
}

func TestRunIsolatesFailures(t *testing.T) {
	ml := &MockSourceLister{
		sources: sources(t, "a.png", "corrupt.png", "unreadable.jpg", "boom.png", "z.png"),
		readErr: map[string]error{"unreadable.jpg": &domain.DecodeError{File: "unreadable.jpg", Err: errors.New("eio")}},
	}
	md := &MockImageDecoder{
		err:   map[string]error{"corrupt.png": errors.New("unexpected EOF")},
		panic: "boom.png",
	}
	mw := &MockArtifactWriter{}

	summary, err := NewBatchProcessor(ml, md, mw, testOptions).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 3, summary.Failed)
	assert.Len(t, mw.artifacts, 2)

	var decodeErr *domain.DecodeError
	assert.False(t, summary.Results[0].Failed())
	require.ErrorAs(t, summary.Results[1].Err, &decodeErr)
	assert.Equal(t, "corrupt.png", decodeErr.File)
	require.ErrorAs(t, summary.Results[2].Err, &decodeErr)
	assert.Equal(t, "unreadable.jpg", decodeErr.File)
	assert.ErrorContains(t, summary.Results[3].Err, "mock panic")
	assert.False(t, summary.Results[4].Failed())
}

func TestRunWriteFailure(t *testing.T) {
	mw := &MockArtifactWriter{err: errors.New("disk full")}

	summary, err := NewBatchProcessor(&MockSourceLister{sources: sources(t, "a.png", "b.png")}, &MockImageDecoder{},
		mw, testOptions).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Failed)
	var writeErr *domain.WriteError
	require.ErrorAs(t, summary.Results[0].Err, &writeErr)
	assert.Equal(t, "a.png", writeErr.File)
	assert.Equal(t, domain.Size{Width: 480, Height: 480}, summary.Results[0].Resized)
}

func TestRunDirectoryErrors(t *testing.T) {
	tests := []struct {
		name    string
		lister  *MockSourceLister
		wantErr error
	}{
		{
			name:    "missing input directory",
			lister:  &MockSourceLister{listErr: domain.ErrMissingInputDirectory},
			wantErr: domain.ErrMissingInputDirectory,
		},
		{
			name:    "no eligible files",
			lister:  &MockSourceLister{},
			wantErr: domain.ErrNoEligibleFiles,
		},
		{
			name:    "listing fails",
			lister:  &MockSourceLister{sources: sources(t, "a.png"), iterErr: assert.AnError},
			wantErr: assert.AnError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mw := &MockArtifactWriter{}
			_, err := NewBatchProcessor(tc.lister, &MockImageDecoder{}, mw, testOptions).Run(context.Background())
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ml := &MockSourceLister{sources: sources(t, "a.png", "b.png")}
	mw := &MockArtifactWriter{}

	summary, err := NewBatchProcessor(ml, &MockImageDecoder{}, mw, testOptions).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, ml.read)
	assert.Empty(t, mw.artifacts)
}

func TestRunComposesOverBlack(t *testing.T) {
	md := &MockImageDecoder{sizes: map[string]domain.Size{"a.png": {Width: 100, Height: 100}}}
	mw := &MockArtifactWriter{}

	_, err := NewBatchProcessor(&MockSourceLister{sources: sources(t, "a.png")}, md, mw, testOptions).
		Run(context.Background())
	require.NoError(t, err)

	out, ok := mw.artifacts[0].Image.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(427, 240))
	assert.Equal(t, Background, out.NRGBAAt(10, 240))
}
