package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hydrostack/hydro-go/internal/errors"
)

// DiskStore stores snapshots on the local filesystem.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir, creating it if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("H050").Wrap(err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes doc to <dir>/<key>.html. The file is written to a temp
// file first and renamed so readers never see a partial snapshot.
func (s *DiskStore) Save(ctx context.Context, key string, doc []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", errors.New("H050").Wrap(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".snapshot-*")
	if err != nil {
		return "", errors.New("H050").Wrap(err)
	}
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.New("H050").Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.New("H050").Wrap(err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", errors.New("H050").Wrap(err)
	}
	return dst, nil
}

// Load reads the snapshot stored under key.
func (s *DiskStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(clean)))
	if err != nil {
		return nil, errors.New("H050").Wrap(err)
	}
	return data, nil
}
