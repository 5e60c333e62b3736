//go:build linux

package app

import "os/exec"

func viewerCommand(path string) *exec.Cmd {
	return exec.Command("xdg-open", path)
}
