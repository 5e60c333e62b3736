package main

import (
	"flag"

	"github.com/justyntemme/spotter/internal/app"
	"github.com/justyntemme/spotter/internal/debug"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	configPath := flag.String("config", "", "Path to config.json (default ~/.config/spotter/config.json)")
	folder := flag.String("folder", "", "Folder of images to load on startup")
	flag.Parse()

	// Handle OS-specific console visibility
	manageConsole(*debugFlag)

	if *debugFlag {
		debug.Enable(debug.APP)
		debug.Enable(debug.STATE)
		debug.Enable(debug.DETECT)
	}

	app.Main(*debugFlag, *configPath, *folder)
}
