package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
)

// FileSlot 每个键对应目录下的一个 JSON 文件。
type FileSlot struct {
	dir string
}

func NewFileSlot(dir string) (*FileSlot, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, goerr.New("missing history dir", goerr.T(apperr.TagConfig))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create history dir", goerr.V("dir", dir))
	}
	return &FileSlot{dir: dir}, nil
}

func (f *FileSlot) path(key string) string {
	return filepath.Join(f.dir, filepath.Base(key)+".json")
}

func (f *FileSlot) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read history file", goerr.V("key", key))
	}
	return data, nil
}

// Put 先写临时文件再改名，避免中途失败留下半截内容。
func (f *FileSlot) Put(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, filepath.Base(key)+".*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V("key", key))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write history file", goerr.V("key", key))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close history file", goerr.V("key", key))
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return goerr.Wrap(err, "failed to replace history file", goerr.V("key", key))
	}
	return nil
}

func (f *FileSlot) Delete(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return goerr.Wrap(err, "failed to remove history file", goerr.V("key", key))
	}
	return nil
}

func (f *FileSlot) Close() error { return nil }
