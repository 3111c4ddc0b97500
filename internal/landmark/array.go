package landmark

import (
	"errors"
	"fmt"
	"math"

	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/KyungWonPark/GestureRDM/internal/detect"
)

// ErrSchemaMismatch is returned when detector output does not match the configured landmark counts
var ErrSchemaMismatch = errors.New("landmark schema mismatch")

// Array is a (video, frame, landmark, coordinate) tensor stored row-major.
// Missing detections are NaN.
type Array struct {
	Videos    int
	Frames    int
	Landmarks int
	Data      []float64
}

// NewArray returns an array of the given size filled with NaN
func NewArray(videos, frames, landmarks int) *Array {
	data := make([]float64, videos*frames*landmarks*config.Coordinates)
	for i := range data {
		data[i] = math.NaN()
	}

	return &Array{Videos: videos, Frames: frames, Landmarks: landmarks, Data: data}
}

// FromData wraps data of the given shape, which must be 4-D with one entry per coordinate on the last axis
func FromData(data []float64, shape []int) (*Array, error) {
	if len(shape) != 4 || shape[3] != config.Coordinates {
		return nil, fmt.Errorf("[FromData] expected shape (video, frame, landmark, %d), got %v",
			config.Coordinates, shape)
	}
	if n := shape[0] * shape[1] * shape[2] * shape[3]; n != len(data) {
		return nil, fmt.Errorf("[FromData] shape %v holds %d values, got %d", shape, n, len(data))
	}

	return &Array{Videos: shape[0], Frames: shape[1], Landmarks: shape[2], Data: data}, nil
}

// Shape returns the four dimensions
func (a *Array) Shape() []int {
	return []int{a.Videos, a.Frames, a.Landmarks, config.Coordinates}
}

func (a *Array) index(video, frame, lm, coord int) int {
	return ((video*a.Frames+frame)*a.Landmarks+lm)*config.Coordinates + coord
}

// At returns one coordinate
func (a *Array) At(video, frame, lm, coord int) float64 {
	return a.Data[a.index(video, frame, lm, coord)]
}

// Set stores one coordinate
func (a *Array) Set(video, frame, lm, coord int, v float64) {
	a.Data[a.index(video, frame, lm, coord)] = v
}

// FrameView returns the (landmark, coordinate) block of one frame, sharing storage
func (a *Array) FrameView(video, frame int) []float64 {
	start := a.index(video, frame, 0, 0)
	return a.Data[start : start+a.Landmarks*config.Coordinates]
}

// SetPoints stores a frame's landmarks. nil points leave the frame missing.
func (a *Array) SetPoints(video, frame int, pts []detect.Point) error {
	if pts == nil {
		return nil
	}
	if len(pts) != a.Landmarks {
		return fmt.Errorf("%w: got %d landmarks, expected %d", ErrSchemaMismatch, len(pts), a.Landmarks)
	}

	view := a.FrameView(video, frame)
	for i, p := range pts {
		xyz := view[i*config.Coordinates : (i+1)*config.Coordinates]
		xyz[0], xyz[1], xyz[2] = p.X, p.Y, p.Z
	}

	return nil
}

// Truncate returns a copy keeping only the first frames of every video.
// Retained frames are copied unchanged.
func (a *Array) Truncate(frames int) (*Array, error) {
	if frames < 0 || frames > a.Frames {
		return nil, fmt.Errorf("[Truncate] cannot keep %d of %d frames", frames, a.Frames)
	}

	out := &Array{
		Videos:    a.Videos,
		Frames:    frames,
		Landmarks: a.Landmarks,
		Data:      make([]float64, a.Videos*frames*a.Landmarks*config.Coordinates),
	}

	block := frames * a.Landmarks * config.Coordinates
	for v := 0; v < a.Videos; v++ {
		copy(out.Data[v*block:(v+1)*block], a.Data[a.index(v, 0, 0, 0):])
	}

	return out, nil
}

// MinFrames returns the smallest frame count, or 0 for no videos
func MinFrames(counts []int) int {
	if len(counts) == 0 {
		return 0
	}

	min := counts[0]
	for _, c := range counts[1:] {
		if c < min {
			min = c
		}
	}

	return min
}
