package port

import "context"

// FileStorage persists document binaries under a managed base directory.
// Paths are relative; implementations must refuse paths that escape the
// base directory. Delete is idempotent.
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}
