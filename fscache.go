package pixe

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/gamedevlabs/pixe/internal/logging"
)

type fsCache struct {
	dir string
	mx  sync.RWMutex
}

// NewFilesystemCache returns a Cache implementation that stores cached data
// in the given directory.
func NewFilesystemCache(dir string) Cache {
	return &fsCache{dir: dir}
}

func (f *fsCache) Get(key string) (io.ReadCloser, error) {
	logging.Debug("Cache get %q", key)
	f.mx.RLock()
	defer f.mx.RUnlock()

	r, err := os.Open(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("Cache miss %q", key)
			return nil, NewNotFound("no cache entry for %q", key)
		}
		logging.Warning("Cache error %q", key)
		return nil, err
	}
	return r, nil
}

func (f *fsCache) Put(key string, r io.Reader) error {
	logging.Debug("Cache put %q", key)
	f.mx.Lock()
	defer f.mx.Unlock()

	err := os.MkdirAll(f.dir, 0755)
	if err != nil {
		logging.Warning("Failed to create cache directory %q", f.dir)
		return err
	}

	w, err := os.Create(f.path(key))
	if err != nil {
		logging.Warning("Cache error %q", key)
		return err
	}
	defer w.Close()

	_, err = io.Copy(w, r)
	return err
}

func (f *fsCache) path(key string) string {
	// keys are URLs - map them to safe, fixed-length file names
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
	return filepath.Join(f.dir, name)
}
