// Package reference loads the reference images that identify UI elements.
package reference

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mj1618/visual-runner/internal/vision"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotFound is returned when no asset exists for an element id.
	ErrNotFound = errors.New("reference image not found")
	// ErrInvalidID is returned for empty ids or ids escaping the assets directory.
	ErrInvalidID = errors.New("invalid element id")
)

// cacheEntry holds a decoded reference with its load time.
type cacheEntry struct {
	img      *image.Gray
	loadedAt time.Time
}

// Library resolves element ids to grayscale reference images under one
// assets directory. Decoded images are cached; with a zero TTL they are kept
// for the lifetime of the Library.
type Library struct {
	dir string
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewLibrary creates a Library rooted at dir.
func NewLibrary(dir string, ttl time.Duration) *Library {
	return &Library{
		dir:     dir,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Path returns the file path for id without checking that it exists.
func (l *Library) Path(id string) string {
	return filepath.Join(l.dir, filepath.FromSlash(id))
}

// Get returns the reference image for id. Missing files yield an error
// wrapping ErrNotFound.
func (l *Library) Get(id string) (*image.Gray, error) {
	if id == "" || !filepath.IsLocal(filepath.FromSlash(id)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	l.mu.Lock()
	if e, ok := l.entries[id]; ok && (l.ttl == 0 || time.Since(e.loadedAt) < l.ttl) {
		l.mu.Unlock()
		return e.img, nil
	}
	l.mu.Unlock()

	img, err := Load(l.Path(id))
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.entries[id] = cacheEntry{img: img, loadedAt: time.Now()}
	l.mu.Unlock()
	return img, nil
}

// Invalidate drops the cached image for id.
func (l *Library) Invalidate(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, id)
}

// InvalidateAll clears the cache.
func (l *Library) InvalidateAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]cacheEntry)
}

// Load decodes the image file at path and converts it to grayscale.
func Load(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open reference %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode reference %s: %w", path, err)
	}
	return vision.ToGray(img), nil
}
