// Package preview decodes images and scales them to the fixed display size
// of the viewer, caching the results.
package preview

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/justyntemme/spotter/internal/debug"
)

const (
	DefaultWidth     = 800
	DefaultHeight    = 600
	DefaultCacheSize = 32
)

// Options configures a Loader. Zero values fall back to the defaults.
type Options struct {
	Width     int
	Height    int
	CacheSize int
}

// key identifies a decoded bitmap. A rewritten file gets a new mod time, so
// regenerated outputs never hit a stale entry.
type key struct {
	path    string
	modTime time.Time
}

type request struct {
	path string
	done func(error)
}

// Loader produces Width x Height RGBA bitmaps. Bitmaps are stretched to
// exactly that size regardless of aspect ratio.
type Loader struct {
	width  int
	height int
	cache  *lru.Cache[key, *image.RGBA]

	pendingMu sync.Mutex
	pending   map[string]bool
	loadChan  chan request
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLoader creates a loader and starts its background worker.
func NewLoader(opts Options) *Loader {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	// Only fails for a non-positive size.
	cache, _ := lru.New[key, *image.RGBA](opts.CacheSize)

	l := &Loader{
		width:    opts.Width,
		height:   opts.Height,
		cache:    cache,
		pending:  make(map[string]bool),
		loadChan: make(chan request, 16),
		stopChan: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.backgroundLoader()
	return l
}

// Size returns the bitmap dimensions.
func (l *Loader) Size() image.Point {
	return image.Pt(l.width, l.height)
}

// Load decodes and scales path synchronously, using the cache when the file
// is unchanged.
func (l *Loader) Load(path string) (*image.RGBA, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat image")
	}
	k := key{path: path, modTime: info.ModTime()}
	if img, ok := l.cache.Get(k); ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	dst := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	l.cache.Add(k, dst)

	debug.Log(debug.PREVIEW, "Loaded %s (%s %dx%d -> %dx%d)",
		path, format, src.Bounds().Dx(), src.Bounds().Dy(), l.width, l.height)
	return dst, nil
}

// Get returns the cached bitmap for path if the file has not changed since
// it was loaded.
func (l *Loader) Get(path string) (*image.RGBA, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	return l.cache.Get(key{path: path, modTime: info.ModTime()})
}

// Request queues path for background loading. done, if not nil, runs after
// the load finishes with its error. Requests for a path that is already
// queued are dropped.
func (l *Loader) Request(path string, done func(error)) {
	if _, ok := l.Get(path); ok {
		return
	}

	l.pendingMu.Lock()
	if l.pending[path] {
		l.pendingMu.Unlock()
		return
	}
	l.pending[path] = true
	l.pendingMu.Unlock()

	select {
	case l.loadChan <- request{path: path, done: done}:
	default:
		// Queue full; the next frame asks again.
		l.clearPending(path)
	}
}

// Purge drops every cached bitmap.
func (l *Loader) Purge() {
	l.cache.Purge()
	debug.Log(debug.PREVIEW, "Cache purged")
}

// Stop shuts down the background worker and waits for it to exit.
func (l *Loader) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
}

func (l *Loader) backgroundLoader() {
	defer l.wg.Done()
	for {
		select {
		case <-l.stopChan:
			return
		case req := <-l.loadChan:
			_, err := l.Load(req.path)
			if err != nil {
				debug.Log(debug.PREVIEW, "Load failed: %v", err)
			}
			l.clearPending(req.path)
			if req.done != nil {
				req.done(err)
			}
		}
	}
}

func (l *Loader) clearPending(path string) {
	l.pendingMu.Lock()
	delete(l.pending, path)
	l.pendingMu.Unlock()
}
