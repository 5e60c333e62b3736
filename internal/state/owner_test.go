package state

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/justyntemme/spotter/internal/detect"
	"github.com/justyntemme/spotter/internal/fs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDetector writes the named files into the outputs directory and returns
// the canned results, the way a real engine would.
type fakeDetector struct {
	mu      sync.Mutex
	write   []string
	results []detect.Result
	err     error
	calls   int

	started chan struct{}
	release chan struct{}
}

func (f *fakeDetector) Detect(ctx context.Context, folder string) ([]detect.Result, error) {
	f.mu.Lock()
	f.calls++
	write, results, err := f.write, f.results, f.err
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	outputs := fs.OutputsDir(folder)
	if err := os.MkdirAll(outputs, 0o755); err != nil {
		return nil, err
	}
	for _, name := range write {
		if err := writePNG(filepath.Join(outputs, name)); err != nil {
			return nil, err
		}
	}

	out := make([]detect.Result, len(results))
	for i, r := range results {
		out[i] = detect.Result{ImagePath: filepath.Join(outputs, r.ImagePath), Labels: r.Labels}
	}
	return out, err
}

func writePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4)))
}

// newPhotos creates a folder with a.png, b.png and a non-image file.
func newPhotos(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, writePNG(filepath.Join(dir, "b.png")))
	require.NoError(t, writePNG(filepath.Join(dir, "a.png")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	return dir
}

func photosDetector() *fakeDetector {
	return &fakeDetector{
		write: []string{"a.png", "b.png"},
		results: []detect.Result{
			{ImagePath: "b.png", Labels: []string{"cat", "cat"}},
			{ImagePath: "a.png", Labels: []string{"dog"}},
		},
	}
}

func TestNewOwner(t *testing.T) {
	o := NewOwner(&fakeDetector{})

	assert.Equal(t, ModeRaw, o.Mode())
	assert.Equal(t, -1, o.Index())
	assert.Empty(t, o.Images())
	assert.Equal(t, []string{}, o.CurrentLabels())

	_, err := o.CurrentImage()
	assert.ErrorIs(t, err, ErrNoCurrentImage)

	// Navigation on an empty list is a no-op.
	o.NextImage()
	o.PrevImage()
	assert.Equal(t, -1, o.Index())
}

func TestLoadFolder(t *testing.T) {
	dir := newPhotos(t)
	o := NewOwner(&fakeDetector{})

	require.NoError(t, o.LoadFolder(dir))
	assert.Equal(t, dir, o.Folder())
	assert.Equal(t, filepath.Join(dir, "outputs"), o.OutputsDir())
	assert.Equal(t, ModeRaw, o.Mode())
	assert.Equal(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}, o.Images())
	assert.Equal(t, 0, o.Index())

	current, err := o.CurrentImage()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.png"), current)
}

func TestLoadFolderEmptyPath(t *testing.T) {
	dir := newPhotos(t)
	o := NewOwner(&fakeDetector{})
	require.NoError(t, o.LoadFolder(dir))
	o.NextImage()

	require.NoError(t, o.LoadFolder(""))
	require.NoError(t, o.LoadFolder("   "))
	assert.Equal(t, dir, o.Folder())
	assert.Equal(t, 1, o.Index())
}

func TestLoadFolderUnreadableKeepsState(t *testing.T) {
	dir := newPhotos(t)
	o := NewOwner(&fakeDetector{})
	require.NoError(t, o.LoadFolder(dir))
	o.NextImage()

	err := o.LoadFolder(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, ErrNoFolderSelected)
	assert.Equal(t, dir, o.Folder())
	assert.Len(t, o.Images(), 2)
	assert.Equal(t, 1, o.Index())
}

func TestLoadFolderNoImages(t *testing.T) {
	dir := t.TempDir()
	o := NewOwner(&fakeDetector{})

	err := o.LoadFolder(dir)
	assert.ErrorIs(t, err, ErrNoImagesFound)
	assert.Equal(t, dir, o.Folder())
	assert.Equal(t, -1, o.Index())
}

func TestLoadFolderRemovesPreviousOutputs(t *testing.T) {
	first := newPhotos(t)
	second := newPhotos(t)
	o := NewOwner(photosDetector())

	require.NoError(t, o.LoadFolder(first))
	require.NoError(t, o.DetectObjects(context.Background()))
	require.DirExists(t, fs.OutputsDir(first))

	require.NoError(t, o.LoadFolder(second))
	assert.NoDirExists(t, fs.OutputsDir(first))
	assert.ErrorIs(t, o.ShowDetections(), ErrNoOutputsAvailable)
}

func TestLoadFolderOutputsOfPreviousFolder(t *testing.T) {
	dir := newPhotos(t)
	o := NewOwner(photosDetector())
	require.NoError(t, o.LoadFolder(dir))
	require.NoError(t, o.DetectObjects(context.Background()))
	require.NoError(t, o.ShowDetections())

	// The previous outputs are cleared before the new path is scanned, so
	// the annotated copies can't become the folder selection.
	err := o.LoadFolder(fs.OutputsDir(dir))
	require.ErrorIs(t, err, ErrNoFolderSelected)
	assert.NoDirExists(t, fs.OutputsDir(dir))

	snap := o.GetSnapshot()
	assert.Equal(t, dir, snap.Folder)
	assert.Equal(t, ModeRaw, snap.Mode)
	assert.False(t, snap.HasDetections)
	assert.Equal(t, filepath.Join(dir, "a.png"), snap.Current)
	assert.FileExists(t, snap.Current)
}

func TestNavigationWraps(t *testing.T) {
	for n := 1; n <= 4; n++ {
		dir := t.TempDir()
		for i := 0; i < n; i++ {
			require.NoError(t, writePNG(filepath.Join(dir, string(rune('a'+i))+".png")))
		}
		o := NewOwner(&fakeDetector{})
		require.NoError(t, o.LoadFolder(dir))

		for start := 0; start < n; start++ {
			for o.Index() != start {
				o.NextImage()
			}
			o.NextImage()
			assert.Equal(t, (start+1)%n, o.Index())
			o.PrevImage()
			assert.Equal(t, start, o.Index(), "n=%d start=%d", n, start)

			o.PrevImage()
			assert.Equal(t, (start-1+n)%n, o.Index())
			o.NextImage()
			assert.Equal(t, start, o.Index())
		}

		for i := 0; i < n; i++ {
			o.NextImage()
		}
		assert.Equal(t, n-1, o.Index(), "n steps forward from n-1 lands on n-1")
	}
}

func TestDetectAndShowDetections(t *testing.T) {
	dir := newPhotos(t)
	o := NewOwner(photosDetector())
	require.NoError(t, o.LoadFolder(dir))
	o.NextImage()
	assert.Equal(t, 1, o.Index())

	require.NoError(t, o.DetectObjects(context.Background()))
	assert.Equal(t, ModeRaw, o.Mode())
	assert.Equal(t, 1, o.Index())
	assert.Equal(t, []string{}, o.CurrentLabels())

	require.NoError(t, o.ShowDetections())
	outputs := fs.OutputsDir(dir)
	assert.Equal(t, ModeDetection, o.Mode())
	assert.Equal(t, []string{filepath.Join(outputs, "a.png"), filepath.Join(outputs, "b.png")}, o.Images())
	assert.Equal(t, 0, o.Index())

	current, err := o.CurrentImage()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputs, "a.png"), current)
	assert.Equal(t, []string{"dog"}, o.CurrentLabels())

	o.NextImage()
	assert.Equal(t, []string{"cat"}, o.CurrentLabels())
	o.NextImage()
	assert.Equal(t, 0, o.Index())
	assert.Equal(t, []string{"dog"}, o.CurrentLabels())

	snap := o.GetSnapshot()
	assert.Equal(t, ModeDetection, snap.Mode)
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, filepath.Join(outputs, "a.png"), snap.Current)
	assert.Equal(t, []string{"dog"}, snap.Labels)
	assert.True(t, snap.HasDetections)

	require.NoError(t, o.ShowImages())
	assert.Equal(t, ModeRaw, o.Mode())
	assert.Equal(t, 0, o.Index())
	assert.Equal(t, []string{}, o.CurrentLabels())
}

func TestDetectObjectsKeepsDetectionView(t *testing.T) {
	dir := newPhotos(t)
	det := photosDetector()
	o := NewOwner(det)
	require.NoError(t, o.LoadFolder(dir))
	require.NoError(t, o.DetectObjects(context.Background()))
	require.NoError(t, o.ShowDetections())
	o.NextImage()

	require.NoError(t, o.DetectObjects(context.Background()))
	assert.Equal(t, 2, det.calls)
	assert.Equal(t, ModeDetection, o.Mode())
	assert.Equal(t, 1, o.Index())
	assert.Equal(t, []string{"cat"}, o.CurrentLabels())
}

func TestDetectObjectsFailureLeavesState(t *testing.T) {
	dir := newPhotos(t)
	det := &fakeDetector{write: []string{"a.png"}, err: errors.New("model crashed")}
	o := NewOwner(det)
	require.NoError(t, o.LoadFolder(dir))
	o.NextImage()
	before := o.GetSnapshot()

	err := o.DetectObjects(context.Background())
	require.ErrorIs(t, err, ErrDetectionFailed)
	assert.Contains(t, err.Error(), "model crashed")

	assert.Equal(t, before, o.GetSnapshot())
	assert.NoDirExists(t, fs.OutputsDir(dir))
	assert.ErrorIs(t, o.ShowDetections(), ErrNoOutputsAvailable)
}

func TestDetectObjectsFailureInDetectionView(t *testing.T) {
	dir := newPhotos(t)
	det := photosDetector()
	o := NewOwner(det)
	require.NoError(t, o.LoadFolder(dir))
	require.NoError(t, o.DetectObjects(context.Background()))
	require.NoError(t, o.ShowDetections())
	o.NextImage()

	det.mu.Lock()
	det.err = errors.New("model crashed")
	det.mu.Unlock()

	require.ErrorIs(t, o.DetectObjects(context.Background()), ErrDetectionFailed)
	assert.NoDirExists(t, fs.OutputsDir(dir))

	snap := o.GetSnapshot()
	assert.Equal(t, ModeRaw, snap.Mode)
	assert.Equal(t, dir, snap.Folder)
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, filepath.Join(dir, "a.png"), snap.Current)
	assert.FileExists(t, snap.Current)
	assert.Empty(t, snap.Labels)
}

func TestDetectObjectsRejectsDuplicateResults(t *testing.T) {
	dir := newPhotos(t)
	det := &fakeDetector{
		write: []string{"a.png"},
		results: []detect.Result{
			{ImagePath: "a.png", Labels: []string{"cat"}},
			{ImagePath: "a.png", Labels: []string{"dog"}},
		},
	}
	o := NewOwner(det)
	require.NoError(t, o.LoadFolder(dir))

	assert.ErrorIs(t, o.DetectObjects(context.Background()), ErrDetectionFailed)
	assert.NoDirExists(t, fs.OutputsDir(dir))
}

func TestDetectObjectsPreconditions(t *testing.T) {
	o := NewOwner(photosDetector())
	assert.ErrorIs(t, o.DetectObjects(context.Background()), ErrNoFolderSelected)

	empty := t.TempDir()
	require.ErrorIs(t, o.LoadFolder(empty), ErrNoImagesFound)
	assert.ErrorIs(t, o.DetectObjects(context.Background()), ErrNoImagesFound)
}

func TestDetectObjectsAlignment(t *testing.T) {
	dir := newPhotos(t)
	det := &fakeDetector{
		write: []string{"a.png"},
		results: []detect.Result{
			{ImagePath: "a.png", Labels: []string{"cat"}},
			{ImagePath: "b.png", Labels: []string{"dog"}},
		},
	}
	o := NewOwner(det)
	require.NoError(t, o.LoadFolder(dir))
	before := o.GetSnapshot()

	assert.ErrorIs(t, o.DetectObjects(context.Background()), ErrInternalAlignment)
	assert.Equal(t, before, o.GetSnapshot())
	assert.ErrorIs(t, o.ShowDetections(), ErrNoOutputsAvailable)
}

func TestCheckAlignment(t *testing.T) {
	cache := []detect.Result{{ImagePath: "/o/a.png"}, {ImagePath: "/o/b.png"}}

	assert.NoError(t, checkAlignment(cache, []string{"/o/a.png", "/o/b.png"}))
	assert.NoError(t, checkAlignment(nil, nil))
	assert.ErrorIs(t, checkAlignment(cache, []string{"/o/a.png"}), ErrInternalAlignment)
	assert.ErrorIs(t, checkAlignment(cache, []string{"/o/a.png", "/o/c.png"}), ErrInternalAlignment)
}

func TestShowDetectionsRequiresRun(t *testing.T) {
	dir := newPhotos(t)
	// An outputs directory left behind by an earlier session is not trusted.
	require.NoError(t, os.MkdirAll(fs.OutputsDir(dir), 0o755))
	require.NoError(t, writePNG(filepath.Join(fs.OutputsDir(dir), "a.png")))

	o := NewOwner(photosDetector())
	assert.ErrorIs(t, o.ShowDetections(), ErrNoOutputsAvailable)

	require.NoError(t, o.LoadFolder(dir))
	assert.ErrorIs(t, o.ShowDetections(), ErrNoOutputsAvailable)
	assert.Equal(t, ModeRaw, o.Mode())
}

func TestShowImagesNoFolder(t *testing.T) {
	o := NewOwner(&fakeDetector{})
	assert.ErrorIs(t, o.ShowImages(), ErrNoFolderSelected)

	dir := newPhotos(t)
	require.NoError(t, o.LoadFolder(dir))
	require.NoError(t, os.RemoveAll(dir))
	assert.ErrorIs(t, o.ShowImages(), ErrNoFolderSelected)
}

func TestShowImagesRescans(t *testing.T) {
	dir := newPhotos(t)
	o := NewOwner(&fakeDetector{})
	require.NoError(t, o.LoadFolder(dir))
	o.NextImage()

	require.NoError(t, writePNG(filepath.Join(dir, "c.png")))
	require.NoError(t, o.ShowImages())
	assert.Len(t, o.Images(), 3)
	assert.Equal(t, 0, o.Index())
}

func TestClearOutputs(t *testing.T) {
	dir := newPhotos(t)
	o := NewOwner(photosDetector())

	_, err := o.ClearOutputs()
	assert.ErrorIs(t, err, ErrNoFolderSelected)

	require.NoError(t, o.LoadFolder(dir))
	require.NoError(t, o.DetectObjects(context.Background()))
	require.NoError(t, o.ShowDetections())
	o.NextImage()

	removed, err := o.ClearOutputs()
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoDirExists(t, fs.OutputsDir(dir))
	assert.Equal(t, ModeRaw, o.Mode())
	assert.Equal(t, 0, o.Index())
	assert.Equal(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}, o.Images())
	assert.False(t, o.GetSnapshot().HasDetections)

	assert.ErrorIs(t, o.ShowDetections(), ErrNoOutputsAvailable)

	removed, err = o.ClearOutputs()
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClearOutputsFolderGone(t *testing.T) {
	dir := newPhotos(t)
	o := NewOwner(photosDetector())
	require.NoError(t, o.LoadFolder(dir))
	require.NoError(t, o.DetectObjects(context.Background()))
	require.NoError(t, o.ShowDetections())
	require.NoError(t, os.RemoveAll(dir))

	_, err := o.ClearOutputs()
	assert.ErrorIs(t, err, ErrNoFolderSelected)
	assert.Equal(t, ModeRaw, o.Mode())
	assert.Equal(t, -1, o.Index())
}

func TestDetectionInProgress(t *testing.T) {
	dir := newPhotos(t)
	det := photosDetector()
	det.started = make(chan struct{})
	det.release = make(chan struct{})
	o := NewOwner(det)
	require.NoError(t, o.LoadFolder(dir))

	done := make(chan error, 1)
	go func() { done <- o.DetectObjects(context.Background()) }()
	<-det.started

	assert.True(t, o.Busy())
	assert.True(t, o.GetSnapshot().Busy)
	assert.ErrorIs(t, o.DetectObjects(context.Background()), ErrDetectionInProgress)
	assert.ErrorIs(t, o.LoadFolder(dir), ErrDetectionInProgress)
	assert.ErrorIs(t, o.ShowDetections(), ErrDetectionInProgress)
	_, err := o.ClearOutputs()
	assert.ErrorIs(t, err, ErrDetectionInProgress)

	// Browsing keeps working while the detector runs.
	o.NextImage()
	assert.Equal(t, 1, o.Index())
	require.NoError(t, o.ShowImages())

	close(det.release)
	require.NoError(t, <-done)
	assert.False(t, o.Busy())
	require.NoError(t, o.ShowDetections())
}

func TestBeginDetectionClaimsBusy(t *testing.T) {
	first := newPhotos(t)
	second := newPhotos(t)
	o := NewOwner(photosDetector())
	require.NoError(t, o.LoadFolder(first))

	run, err := o.BeginDetection()
	require.NoError(t, err)
	assert.True(t, o.Busy())

	// Nothing has started the run yet, but the folder is already pinned.
	assert.ErrorIs(t, o.LoadFolder(second), ErrDetectionInProgress)
	_, err = o.BeginDetection()
	assert.ErrorIs(t, err, ErrDetectionInProgress)

	require.NoError(t, run(context.Background()))
	assert.False(t, o.Busy())
	assert.Equal(t, first, o.Folder())
	require.NoError(t, o.ShowDetections())
	assert.Equal(t, []string{"dog"}, o.CurrentLabels())
}

func TestDetectObjectsCancelled(t *testing.T) {
	dir := newPhotos(t)
	det := photosDetector()
	det.started = make(chan struct{})
	det.release = make(chan struct{})
	o := NewOwner(det)
	require.NoError(t, o.LoadFolder(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.DetectObjects(ctx) }()
	<-det.started
	cancel()

	err := <-done
	assert.ErrorIs(t, err, ErrDetectionFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, o.Busy())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "images", ModeRaw.String())
	assert.Equal(t, "detections", ModeDetection.String())
}
