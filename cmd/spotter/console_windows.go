//go:build windows

package main

import "syscall"

// manageConsole drops the console Windows attaches to the viewer at startup.
// With -debug the console stays so the detection and state traces are visible.
func manageConsole(debug bool) {
	if debug {
		return
	}
	syscall.NewLazyDLL("kernel32.dll").NewProc("FreeConsole").Call()
}
