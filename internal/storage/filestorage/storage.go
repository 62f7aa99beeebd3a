package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"marketplace_admin/internal/storage"
)

// LocalFileStorage хранит каждое значение оверлея в отдельном файле внутри
// baseDir. Ближайший аналог localStorage браузера: данные живут на машине
// продавца и переживают перезапуск.
type LocalFileStorage struct {
	baseDir string // Базовый каталог (например: "./overlay")
}

func NewLocalFileStorage(baseDir string) (*LocalFileStorage, error) {
	// Создаем директорию, если она не существует
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
	}, nil
}

func (s *LocalFileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.GetFullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read overlay file: %w", err)
	}

	return raw, nil
}

// Set пишет во временный файл и переименовывает его, чтобы читатель никогда
// не увидел наполовину записанное значение.
func (s *LocalFileStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.baseDir, ".overlay-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.GetFullPath(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace overlay file: %w", err)
	}

	return nil
}

// GetFullPath возвращает путь к файлу ключа на диске
func (s *LocalFileStorage) GetFullPath(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(key)
	return filepath.Join(s.baseDir, name+".json")
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}
