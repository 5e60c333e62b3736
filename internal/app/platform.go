package app

import (
	"github.com/pkg/errors"

	"github.com/justyntemme/spotter/internal/debug"
)

// platformOpen hands the current image to the system's default viewer.
func platformOpen(path string) error {
	if path == "" {
		return errors.New("no image to open")
	}
	cmd := viewerCommand(path)
	if cmd == nil {
		return errors.Errorf("opening %s is not supported on this platform", path)
	}
	debug.Log(debug.APP, "Opening %s with %s", path, cmd.Path)
	return errors.Wrapf(cmd.Start(), "open %s", path)
}
