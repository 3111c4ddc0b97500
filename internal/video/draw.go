package video

import (
	"image"
	"image/color"

	"github.com/KyungWonPark/GestureRDM/internal/detect"
	"github.com/KyungWonPark/GestureRDM/internal/landmark"
	"gocv.io/x/gocv"
)

// style of one skeleton
type style struct {
	point     color.RGBA
	line      color.RGBA
	radius    int
	thickness int
}

var (
	poseStyle = style{
		point:     color.RGBA{R: 255, G: 0, B: 0, A: 255},
		line:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
		radius:    2,
		thickness: 2,
	}
	leftStyle = style{
		point:     color.RGBA{R: 48, G: 255, B: 48, A: 255},
		line:      color.RGBA{R: 224, G: 224, B: 224, A: 255},
		radius:    2,
		thickness: 2,
	}
	rightStyle = style{
		point:     color.RGBA{R: 48, G: 48, B: 255, A: 255},
		line:      color.RGBA{R: 224, G: 224, B: 224, A: 255},
		radius:    2,
		thickness: 2,
	}

	// finger points of the pose model are drawn by the hand skeletons instead
	poseConnections = landmark.VisibleConnections(landmark.PoseConnections, landmark.PoseHandPoints)
	poseHidden      = func() map[int]bool {
		m := make(map[int]bool)
		for _, i := range landmark.PoseHandPoints {
			m[i] = true
		}
		return m
	}()
)

// Annotate draws the pose first, then both hands
func Annotate(img *gocv.Mat, det detect.Detection, hands landmark.Hands) {
	if det.Pose != nil {
		drawSkeleton(img, det.Pose, poseConnections, poseHidden, poseStyle)
	}
	if hands.Left != nil {
		drawSkeleton(img, hands.Left, landmark.HandConnections, nil, leftStyle)
	}
	if hands.Right != nil {
		drawSkeleton(img, hands.Right, landmark.HandConnections, nil, rightStyle)
	}
}

func drawSkeleton(img *gocv.Mat, pts []detect.Point, conns []landmark.Connection, hidden map[int]bool, s style) {
	width, height := img.Cols(), img.Rows()

	pixel := func(i int) (image.Point, bool) {
		if i >= len(pts) {
			return image.Point{}, false
		}
		x, y, ok := landmark.PixelPoint(pts[i], width, height)
		return image.Pt(x, y), ok
	}

	for _, c := range conns {
		from, ok1 := pixel(c[0])
		to, ok2 := pixel(c[1])
		if ok1 && ok2 {
			gocv.Line(img, from, to, s.line, s.thickness)
		}
	}

	for i := range pts {
		if hidden[i] {
			continue
		}
		if p, ok := pixel(i); ok {
			gocv.Circle(img, p, s.radius, s.point, -1)
		}
	}
}
