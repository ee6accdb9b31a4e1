// Package file reads employee uploads from the local filesystem for the CLI.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var ErrTooLarge = errors.New("upload exceeds size limit")

type Upload struct {
	Name    string
	Content []byte
}

type LocalSource struct {
	BaseDir string
	MaxSize int64
}

func NewLocalSource(baseDir string, maxSize int64) *LocalSource {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalSource{BaseDir: baseDir, MaxSize: maxSize}
}

func (s *LocalSource) resolve(sourcePath string) string {
	if filepath.IsAbs(sourcePath) {
		return sourcePath
	}
	return filepath.Join(s.BaseDir, sourcePath)
}

// Read loads the whole file. Relative paths are resolved against BaseDir.
func (s *LocalSource) Read(ctx context.Context, sourcePath string) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}

	path := s.resolve(sourcePath)
	file, err := os.Open(path)
	if err != nil {
		return Upload{}, fmt.Errorf("open file %s: %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if s.MaxSize > 0 {
		reader = io.LimitReader(file, s.MaxSize+1)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return Upload{}, fmt.Errorf("read file %s: %w", path, err)
	}
	if s.MaxSize > 0 && int64(len(content)) > s.MaxSize {
		return Upload{}, fmt.Errorf("%s: %w (%d bytes)", path, ErrTooLarge, s.MaxSize)
	}

	return Upload{Name: filepath.Base(path), Content: content}, nil
}
