package app

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/justyntemme/spotter/internal/state"
	"github.com/justyntemme/spotter/internal/ui"
)

// messageFor turns a view-state error into the text and severity shown to
// the user.
func messageFor(err error) (string, ui.ToastType) {
	switch {
	case errors.Is(err, state.ErrDetectionInProgress):
		return "Object detection is still running", ui.ToastInfo
	case errors.Is(err, state.ErrNoFolderSelected):
		return "Folder not specified", ui.ToastWarning
	case errors.Is(err, state.ErrNoImagesFound):
		return "No images found in the selected folder", ui.ToastWarning
	case errors.Is(err, state.ErrNoOutputsAvailable):
		return "There are no outputs", ui.ToastWarning
	case errors.Is(err, state.ErrNoCurrentImage):
		return "No image selected", ui.ToastWarning
	case errors.Is(err, state.ErrInternalAlignment):
		return "Internal error: detection results do not match the outputs folder", ui.ToastError
	case errors.Is(err, state.ErrDetectionFailed):
		return "Object detection failed: " + strings.TrimPrefix(err.Error(), state.ErrDetectionFailed.Error()+": "), ui.ToastError
	default:
		return err.Error(), ui.ToastError
	}
}
