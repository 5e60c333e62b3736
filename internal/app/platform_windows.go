//go:build windows

package app

import "os/exec"

// The empty argument is the window title start expects before the target.
func viewerCommand(path string) *exec.Cmd {
	return exec.Command("cmd", "/c", "start", "", path)
}
