package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/ontora-ai/pipelines/errors"
)

// LocalStore keeps artifacts in a directory on the local filesystem. It is
// the default backend for local runs and tests.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a directory-backed store, creating dir if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to create artifact directory")
	}
	return &LocalStore{dir: dir}, nil
}

// Put implements Store.
func (s *LocalStore) Put(ctx context.Context, name, sourcePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dest := filepath.Join(s.dir, name)
	if err := copyFile(sourcePath, dest); err != nil {
		return "", errors.WrapWithContext(err, errors.CodeStorage, "failed to store artifact",
			map[string]interface{}{"name": name})
	}
	return dest, nil
}

// Get implements Store.
func (s *LocalStore) Get(ctx context.Context, name, destPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source := filepath.Join(s.dir, name)
	if _, err := os.Stat(source); err != nil {
		return errors.WrapWithContext(err, errors.CodeNotFound, "artifact not found",
			map[string]interface{}{"name": name})
	}
	if err := copyFile(source, destPath); err != nil {
		return errors.WrapWithContext(err, errors.CodeStorage, "failed to retrieve artifact",
			map[string]interface{}{"name": name})
	}
	return nil
}

// Exists implements Store.
func (s *LocalStore) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CodeStorage, "failed to stat artifact")
	}
	return true, nil
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
