package state

// Mode selects which list of images is active.
type Mode int

const (
	// ModeRaw shows the images of the loaded folder.
	ModeRaw Mode = iota
	// ModeDetection shows the annotated images in the outputs directory.
	ModeDetection
)

func (m Mode) String() string {
	switch m {
	case ModeDetection:
		return "detections"
	default:
		return "images"
	}
}
