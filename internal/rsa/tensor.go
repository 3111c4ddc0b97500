/*
Package rsa turns the extracted landmark arrays into a representational
dissimilarity matrix.

The landmark arrays are subset and concatenated along the landmark axis
(pose subset, left hand, right hand), flattened so that every coordinate of
every landmark becomes a channel (landmark-major, coordinate-minor), and
reordered to (condition, channel, frame). Every frame of every condition is
then treated as its own observation, with the frame index as cross-validation
fold.
*/
package rsa

import (
	"errors"
	"fmt"

	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/KyungWonPark/GestureRDM/internal/landmark"
)

var (
	// ErrShapeMismatch is returned when input arrays disagree in their video or frame dimension
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrLengthMismatch is returned when a descriptor does not match the length of its axis
	ErrLengthMismatch = errors.New("descriptor length mismatch")
)

// Tensor3 is a row-major 3-D tensor
type Tensor3 struct {
	Dims [3]int
	Data []float64
}

// NewTensor3 returns a zero tensor
func NewTensor3(d0, d1, d2 int) *Tensor3 {
	return &Tensor3{Dims: [3]int{d0, d1, d2}, Data: make([]float64, d0*d1*d2)}
}

// Shape returns the three dimensions
func (t *Tensor3) Shape() []int {
	return []int{t.Dims[0], t.Dims[1], t.Dims[2]}
}

func (t *Tensor3) index(i, j, k int) int {
	return (i*t.Dims[1]+j)*t.Dims[2] + k
}

// At returns one element
func (t *Tensor3) At(i, j, k int) float64 {
	return t.Data[t.index(i, j, k)]
}

// Set stores one element
func (t *Tensor3) Set(i, j, k int, v float64) {
	t.Data[t.index(i, j, k)] = v
}

// SwapLast exchanges the last two axes: (a, b, c) -> (a, c, b). Values are copied unchanged.
func (t *Tensor3) SwapLast() *Tensor3 {
	out := NewTensor3(t.Dims[0], t.Dims[2], t.Dims[1])
	for i := 0; i < t.Dims[0]; i++ {
		for j := 0; j < t.Dims[1]; j++ {
			for k := 0; k < t.Dims[2]; k++ {
				out.Set(i, k, j, t.At(i, j, k))
			}
		}
	}

	return out
}

// Assemble keeps the poseIdx landmarks of the pose array and concatenates
// them with the left and right hand arrays along the landmark axis
func Assemble(pose, lh, rh *landmark.Array, poseIdx []int) (*landmark.Array, error) {
	if pose.Videos != lh.Videos || pose.Videos != rh.Videos ||
		pose.Frames != lh.Frames || pose.Frames != rh.Frames {
		return nil, fmt.Errorf("[Assemble] %w: pose %v, left hand %v, right hand %v",
			ErrShapeMismatch, pose.Shape(), lh.Shape(), rh.Shape())
	}
	for _, i := range poseIdx {
		if i < 0 || i >= pose.Landmarks {
			return nil, fmt.Errorf("[Assemble] %w: pose landmark %d outside [0, %d)",
				ErrShapeMismatch, i, pose.Landmarks)
		}
	}

	out := landmark.NewArray(pose.Videos, pose.Frames, len(poseIdx)+lh.Landmarks+rh.Landmarks)
	for v := 0; v < pose.Videos; v++ {
		for f := 0; f < pose.Frames; f++ {
			dst := out.FrameView(v, f)
			src := pose.FrameView(v, f)

			off := 0
			for _, i := range poseIdx {
				copy(dst[off:off+config.Coordinates], src[i*config.Coordinates:(i+1)*config.Coordinates])
				off += config.Coordinates
			}
			off += copy(dst[off:], lh.FrameView(v, f))
			copy(dst[off:], rh.FrameView(v, f))
		}
	}

	return out, nil
}

// Flatten merges the landmark and coordinate axes into channels:
// (video, frame, landmark, 3) -> (video, frame, landmark*3)
func Flatten(a *landmark.Array) *Tensor3 {
	return &Tensor3{
		Dims: [3]int{a.Videos, a.Frames, a.Landmarks * config.Coordinates},
		Data: append([]float64(nil), a.Data...),
	}
}

// ChannelNames names the channels of an assembled array in flatten order
func ChannelNames(poseIdx []int, handLandmarks int) []string {
	var lms []string
	for _, i := range poseIdx {
		lms = append(lms, landmark.PoseName(i))
	}
	for _, side := range []string{"left_", "right_"} {
		for i := 0; i < handLandmarks; i++ {
			lms = append(lms, side+landmark.HandName(i))
		}
	}

	names := make([]string, 0, len(lms)*config.Coordinates)
	for _, lm := range lms {
		for _, s := range landmark.CoordinateSuffixes {
			names = append(names, lm+"_"+s)
		}
	}

	return names
}

// Times returns the timestamp i/fps of each of n frames
func Times(n int, fps float64) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / fps
	}

	return t
}
