package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
)

// DiskStorage implements port.FileStorage on the local filesystem. Document
// binaries live under baseDir; callers address them by relative path.
type DiskStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewDiskStorage creates a DiskStorage rooted at baseDir.
func NewDiskStorage(baseDir string, logger *zap.Logger) *DiskStorage {
	return &DiskStorage{baseDir: baseDir, logger: logger}
}

func (s *DiskStorage) Save(ctx context.Context, path string, content []byte) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directories for %s: %w", path, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("write file %s: %w", path, err)
	}

	s.logger.Debug("File saved",
		zap.String("path", path),
		zap.Int("size", len(content)))

	return nil
}

func (s *DiskStorage) Read(ctx context.Context, path string) ([]byte, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return content, nil
}

// Delete removes the file. A missing file is not an error; delete is
// idempotent.
func (s *DiskStorage) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("delete file %s: %w", path, err)
	}

	s.logger.Debug("File deleted", zap.String("path", path))
	return nil
}

// resolve joins the relative path onto baseDir and rejects anything that
// escapes it.
func (s *DiskStorage) resolve(path string) (string, error) {
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(absBase, filepath.Clean(path)))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes storage root: %s", path)
	}
	return absPath, nil
}

var _ port.FileStorage = (*DiskStorage)(nil)
