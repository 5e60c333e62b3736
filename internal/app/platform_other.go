//go:build !linux && !darwin && !windows

package app

import "os/exec"

func viewerCommand(string) *exec.Cmd { return nil }
