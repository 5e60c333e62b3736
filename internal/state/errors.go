package state

import "github.com/pkg/errors"

// Conditions reported to the presentation layer. None of them is fatal;
// callers classify them with errors.Is.
var (
	ErrNoFolderSelected    = errors.New("folder not specified")
	ErrNoImagesFound       = errors.New("no images found in the selected folder")
	ErrNoOutputsAvailable  = errors.New("there are no outputs")
	ErrDetectionFailed     = errors.New("object detection failed")
	ErrDetectionInProgress = errors.New("object detection is already running")
	ErrNoCurrentImage      = errors.New("no current image")

	// ErrInternalAlignment means the detection cache and the outputs listing
	// disagree. It indicates a bug and is never silently repaired.
	ErrInternalAlignment = errors.New("detection cache is not aligned with outputs")
)
