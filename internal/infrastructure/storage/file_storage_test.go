package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDiskStorage_SaveAndRead(t *testing.T) {
	s := NewDiskStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	content := []byte("passport scan bytes")
	require.NoError(t, s.Save(ctx, "documents/app-1/doc-1.pdf", content))

	got, err := s.Read(ctx, "documents/app-1/doc-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDiskStorage_Save_CreatesParentDirectories(t *testing.T) {
	base := t.TempDir()
	s := NewDiskStorage(base, zap.NewNop())

	require.NoError(t, s.Save(context.Background(), "a/b/c/file.txt", []byte("x")))

	_, err := os.Stat(filepath.Join(base, "a", "b", "c", "file.txt"))
	assert.NoError(t, err)
}

func TestDiskStorage_Delete_Idempotent(t *testing.T) {
	s := NewDiskStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "doc.pdf", []byte("x")))
	require.NoError(t, s.Delete(ctx, "doc.pdf"))

	_, err := s.Read(ctx, "doc.pdf")
	assert.Error(t, err)

	// Deleting again is not an error.
	assert.NoError(t, s.Delete(ctx, "doc.pdf"))
}

func TestDiskStorage_RejectsPathEscape(t *testing.T) {
	s := NewDiskStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	err := s.Save(ctx, "../outside.txt", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")

	_, err = s.Read(ctx, "../../etc/passwd")
	require.Error(t, err)
}

func TestDiskStorage_Read_Missing(t *testing.T) {
	s := NewDiskStorage(t.TempDir(), zap.NewNop())

	_, err := s.Read(context.Background(), "never-saved.pdf")
	assert.Error(t, err)
}
