/*
Package detect defines what the extractor expects from a pose and hand
landmark detector, and bridges to an external detector process through
shared memory.

Coordinates follow the detector's own schema: x and y are normalised to the
frame, z is relative depth. A frame where nothing is found is not an error;
it comes back as a Detection without pose and without hands.
*/
package detect

// Point is one landmark coordinate
type Point struct {
	X float64
	Y float64
	Z float64
}

// Handedness is the classification label a hand detector attaches to a hand
type Handedness int

const (
	Left Handedness = iota
	Right
)

// String returns the label the way the hand model reports it
func (h Handedness) String() string {
	switch h {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}

// Hand is a single detected hand
type Hand struct {
	Label  Handedness
	Score  float64
	Points []Point
}

// Detection is the result for one frame
type Detection struct {
	// Pose is nil when no body was found
	Pose []Point
	// Hands lists zero or more hands in detector order
	Hands []Hand
}

// Frame is a packed RGB image, three bytes per pixel, row by row
type Frame struct {
	Width  int
	Height int
	RGB    []byte
}

// Detector runs pose and hand estimation frame by frame. A session is opened
// per video, since detectors track landmarks across consecutive frames.
type Detector interface {
	Open(width, height int) error
	Detect(frame Frame) (Detection, error)
	Close() error
}
