//go:build darwin

package app

import "os/exec"

func viewerCommand(path string) *exec.Cmd {
	return exec.Command("open", path)
}
