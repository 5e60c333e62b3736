package ui

import "image"

type UIAction int

const (
	ActionNone UIAction = iota
	ActionLoadFolder    // Path holds the folder typed into the path editor
	ActionDetect
	ActionShowImages
	ActionShowDetections
	ActionClearOutputs
	ActionNextImage
	ActionPrevImage
	ActionOpenExternal // Path holds the current image
	ActionToggleTheme
)

func (a UIAction) String() string {
	switch a {
	case ActionLoadFolder:
		return "LoadFolder"
	case ActionDetect:
		return "Detect"
	case ActionShowImages:
		return "ShowImages"
	case ActionShowDetections:
		return "ShowDetections"
	case ActionClearOutputs:
		return "ClearOutputs"
	case ActionNextImage:
		return "NextImage"
	case ActionPrevImage:
		return "PrevImage"
	case ActionOpenExternal:
		return "OpenExternal"
	case ActionToggleTheme:
		return "ToggleTheme"
	default:
		return "None"
	}
}

type UIEvent struct {
	Action UIAction
	Path   string
}

// State is what the renderer draws. The orchestrator fills it from the view
// state snapshot before every frame.
type State struct {
	Folder    string
	Detection bool // labels panel is shown only in detection mode
	Count     int
	Index     int // -1 when there is nothing to show
	Current   string
	Size      int64
	Labels    []string
	Busy      bool

	// Bitmap for Current, nil while it is still loading.
	Image    *image.RGBA
	ImageErr string
}
