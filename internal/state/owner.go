// Package state holds the view state of the viewer: the loaded folder, the
// active image list, the navigation index, the detection cache and the
// lifecycle of the derived outputs directory.
package state

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/spotter/internal/debug"
	"github.com/justyntemme/spotter/internal/detect"
	"github.com/justyntemme/spotter/internal/fs"
	"github.com/pkg/errors"
)

// Owner is the single source of truth for view state.
//
// Operations swap the image list and cache together under the lock, so
// readers never observe a list paired with a cache from another generation.
// DetectObjects calls the detector without holding the lock; a busy flag
// rejects operations that would race with it.
type Owner struct {
	mu sync.RWMutex

	detector detect.Detector

	folder  string
	outputs string
	images  []string
	index   int
	mode    Mode

	// Index-aligned with the sorted result of the last successful detection
	// run. nil means no run has populated the outputs directory.
	cache []detect.Result

	busy atomic.Bool
}

// Snapshot is an immutable view of state for the UI to render.
type Snapshot struct {
	Folder        string
	Outputs       string
	Mode          Mode
	Count         int
	Index         int // -1 when the list is empty
	Current       string
	Labels        []string
	Busy          bool
	HasDetections bool
}

// NewOwner creates an owner in Raw mode with an empty image list.
func NewOwner(detector detect.Detector) *Owner {
	return &Owner{detector: detector}
}

// GetSnapshot returns a copy of the state the presentation layer needs.
func (o *Owner) GetSnapshot() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snap := Snapshot{
		Folder:        o.folder,
		Outputs:       o.outputs,
		Mode:          o.mode,
		Count:         len(o.images),
		Index:         -1,
		Labels:        o.labelsLocked(),
		Busy:          o.busy.Load(),
		HasDetections: o.cache != nil,
	}
	if len(o.images) > 0 {
		snap.Index = o.index
		snap.Current = o.images[o.index]
	}
	return snap
}

// Folder returns the loaded folder, or "" when none is selected.
func (o *Owner) Folder() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.folder
}

// OutputsDir returns the outputs directory derived from the loaded folder.
func (o *Owner) OutputsDir() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.outputs
}

// Mode returns the active view mode.
func (o *Owner) Mode() Mode {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mode
}

// Images returns a copy of the active image list.
func (o *Owner) Images() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.images...)
}

// Index returns the navigation index, or -1 when the list is empty.
func (o *Owner) Index() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if len(o.images) == 0 {
		return -1
	}
	return o.index
}

// Busy reports whether a detection run is outstanding.
func (o *Owner) Busy() bool {
	return o.busy.Load()
}

// LoadFolder makes path the folder selection and lists its images in Raw
// mode. An empty path (a cancelled picker) is a no-op. The previous folder's
// outputs are removed before the new folder is scanned; when the scan fails
// the previous folder stays selected in Raw mode.
//
// The lock is held for the whole call so a detection run can't read the
// folder while it is being replaced.
func (o *Owner) LoadFolder(path string) error {
	if strings.TrimSpace(path) == "" {
		debug.Log(debug.STATE, "LoadFolder: empty path, ignoring")
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy.Load() {
		return ErrDetectionInProgress
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoFolderSelected, err)
	}

	// Outputs of the previous folder must not outlive it.
	if o.outputs != "" {
		if _, err := fs.RemoveDir(o.outputs); err != nil {
			log.Printf("Failed to clear previous outputs %s: %v", o.outputs, err)
		}
		o.cache = nil
		if o.mode == ModeDetection {
			o.rescanRawLocked()
		}
	}

	entries, err := fs.ListImages(abs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoFolderSelected, err)
	}
	images := fs.Paths(entries)

	o.folder = abs
	o.outputs = fs.OutputsDir(abs)
	o.setListLocked(images, ModeRaw)

	debug.Log(debug.STATE, "LoadFolder: %q, %d images", abs, len(images))
	for _, image := range images {
		debug.Log(debug.FS_ENTRY, "Loaded image: %s", image)
	}

	if len(images) == 0 {
		return ErrNoImagesFound
	}
	return nil
}

// ShowImages switches to Raw mode and rescans the loaded folder.
func (o *Owner) ShowImages() error {
	folder := o.Folder()
	if folder == "" || !fs.DirExists(folder) {
		return ErrNoFolderSelected
	}

	entries, err := fs.ListImages(folder)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoFolderSelected, err)
	}
	images := fs.Paths(entries)

	o.mu.Lock()
	o.setListLocked(images, ModeRaw)
	o.mu.Unlock()

	debug.Log(debug.STATE, "ShowImages: %d images", len(images))
	if len(images) == 0 {
		return ErrNoImagesFound
	}
	return nil
}

// ShowDetections switches to Detection mode and rescans the outputs
// directory. It fails unless a detection run in this session populated it.
func (o *Owner) ShowDetections() error {
	if o.busy.Load() {
		return ErrDetectionInProgress
	}

	o.mu.RLock()
	outputs, cache := o.outputs, o.cache
	o.mu.RUnlock()

	if outputs == "" || cache == nil || !fs.DirExists(outputs) {
		return ErrNoOutputsAvailable
	}

	entries, err := fs.ListImages(outputs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoOutputsAvailable, err)
	}
	if len(entries) == 0 {
		return ErrNoOutputsAvailable
	}
	images := fs.Paths(entries)

	if err := checkAlignment(cache, images); err != nil {
		log.Printf("ShowDetections: %v", err)
		return err
	}

	o.mu.Lock()
	o.setListLocked(images, ModeDetection)
	o.mu.Unlock()

	debug.Log(debug.STATE, "ShowDetections: %d outputs", len(images))
	return nil
}

// DetectObjects resets the outputs directory, runs the detector over the
// loaded folder and installs the normalized results as the detection cache.
// On failure the folder, list and index are left as they were and the
// outputs directory is back in its reset (absent) state. A failed run
// started in Detection mode falls back to Raw, since the list it showed was
// removed by the reset.
func (o *Owner) DetectObjects(ctx context.Context) error {
	run, err := o.BeginDetection()
	if err != nil {
		return err
	}
	return run(ctx)
}

// BeginDetection marks a detection run as outstanding and returns the
// function that performs it. Callers that start the run on another
// goroutine claim the busy flag here first, so operations issued before the
// goroutine is scheduled are already rejected. The returned function must be
// called exactly once.
func (o *Owner) BeginDetection() (func(context.Context) error, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrDetectionInProgress
	}
	return func(ctx context.Context) error {
		defer o.busy.Store(false)
		return o.detect(ctx)
	}, nil
}

func (o *Owner) detect(ctx context.Context) error {
	o.mu.Lock()
	folder, outputs := o.folder, o.outputs
	if folder == "" {
		o.mu.Unlock()
		return ErrNoFolderSelected
	}
	if len(o.images) == 0 {
		o.mu.Unlock()
		return ErrNoImagesFound
	}
	o.cache = nil
	_, err := fs.RemoveDir(outputs)
	o.mu.Unlock()
	if err != nil {
		return o.failDetection(outputs, fmt.Errorf("%w: %w", ErrDetectionFailed, err))
	}

	debug.Log(debug.STATE, "DetectObjects: running detector on %q", folder)
	results, err := o.detector.Detect(ctx, folder)
	if err == nil {
		results, err = detect.Normalize(results)
	}
	if err != nil {
		log.Printf("Detection failed for %s: %v", folder, err)
		return o.failDetection(outputs, fmt.Errorf("%w: %w", ErrDetectionFailed, err))
	}

	var images []string
	if fs.DirExists(outputs) {
		entries, err := fs.ListImages(outputs)
		if err != nil {
			return o.failDetection(outputs, fmt.Errorf("%w: %w", ErrDetectionFailed, err))
		}
		images = fs.Paths(entries)
	}
	if err := checkAlignment(results, images); err != nil {
		log.Printf("DetectObjects: %v", err)
		return o.failDetection(outputs, err)
	}

	o.mu.Lock()
	o.cache = results
	if o.mode == ModeDetection {
		// Same source, fresh contents: keep the position when it is still valid.
		o.images = images
		if o.index >= len(images) {
			o.index = 0
		}
	}
	o.mu.Unlock()

	debug.Log(debug.STATE, "DetectObjects: cached %d label sets", len(results))
	return nil
}

// failDetection discards partial outputs and, when the view was showing the
// outputs directory, drops back to the raw images of the folder.
func (o *Owner) failDetection(outputs string, err error) error {
	o.discardOutputs(outputs)

	o.mu.Lock()
	if o.mode == ModeDetection {
		o.rescanRawLocked()
	}
	o.mu.Unlock()
	return err
}

// NextImage advances the index, wrapping at the end. No-op on an empty list.
func (o *Owner) NextImage() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n := len(o.images); n > 0 {
		o.index = (o.index + 1) % n
	}
}

// PrevImage moves the index back, wrapping at the start. No-op on an empty list.
func (o *Owner) PrevImage() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n := len(o.images); n > 0 {
		o.index = (o.index - 1 + n) % n
	}
}

// ClearOutputs deletes the outputs directory, drops the detection cache and
// rescans the folder in Raw mode. removed is false when there was no outputs
// directory to delete, which is not an error.
func (o *Owner) ClearOutputs() (removed bool, err error) {
	if o.busy.Load() {
		return false, ErrDetectionInProgress
	}

	o.mu.RLock()
	folder, outputs := o.folder, o.outputs
	o.mu.RUnlock()

	if folder == "" {
		return false, ErrNoFolderSelected
	}

	removed, err = fs.RemoveDir(outputs)
	if err != nil {
		return false, err
	}

	o.mu.Lock()
	o.cache = nil
	o.mu.Unlock()

	if err := o.ShowImages(); err != nil {
		if errors.Is(err, ErrNoFolderSelected) {
			// The folder itself is gone; never leave the view on deleted outputs.
			o.mu.Lock()
			o.setListLocked(nil, ModeRaw)
			o.mu.Unlock()
		}
		return removed, err
	}
	return removed, nil
}

// CurrentImage returns the path at the navigation index.
func (o *Owner) CurrentImage() (string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if len(o.images) == 0 {
		return "", ErrNoCurrentImage
	}
	return o.images[o.index], nil
}

// CurrentLabels returns the labels detected for the current image. Outside
// Detection mode, or when the cache does not annotate the active list, the
// result is empty.
func (o *Owner) CurrentLabels() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.labelsLocked()
}

func (o *Owner) labelsLocked() []string {
	if o.mode != ModeDetection || len(o.images) == 0 || len(o.cache) != len(o.images) {
		return []string{}
	}
	return append([]string{}, o.cache[o.index].Labels...)
}

// rescanRawLocked replaces a list that pointed into the removed outputs
// directory with the raw images of the loaded folder.
func (o *Owner) rescanRawLocked() {
	var images []string
	if o.folder != "" {
		entries, err := fs.ListImages(o.folder)
		if err != nil {
			log.Printf("Failed to rescan %s: %v", o.folder, err)
		}
		images = fs.Paths(entries)
	}
	o.setListLocked(images, ModeRaw)
}

func (o *Owner) setListLocked(images []string, mode Mode) {
	o.images = images
	o.mode = mode
	o.index = 0
}

// discardOutputs removes whatever a failed run left in the outputs directory
// so a retry starts from the reset state.
func (o *Owner) discardOutputs(outputs string) {
	if _, err := fs.RemoveDir(outputs); err != nil {
		log.Printf("Failed to discard partial outputs %s: %v", outputs, err)
	}
}

// checkAlignment verifies that cache[i] describes images[i].
func checkAlignment(cache []detect.Result, images []string) error {
	if len(cache) != len(images) {
		return fmt.Errorf("%w: %d label sets for %d outputs", ErrInternalAlignment, len(cache), len(images))
	}
	for i := range cache {
		if filepath.Base(cache[i].ImagePath) != filepath.Base(images[i]) {
			return fmt.Errorf("%w: entry %d is %s, outputs listing has %s",
				ErrInternalAlignment, i, filepath.Base(cache[i].ImagePath), filepath.Base(images[i]))
		}
	}
	return nil
}
