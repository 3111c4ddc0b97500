// Package video reads and writes video files through OpenCV and draws the
// detected landmarks onto annotated copies.
package video

import (
	"errors"
	"fmt"

	"github.com/KyungWonPark/GestureRDM/internal/detect"
	"github.com/KyungWonPark/GestureRDM/internal/landmark"
	"gocv.io/x/gocv"
)

// Media opens gocv sources and sinks
type Media struct {
	// Codec is the four character code of annotated videos
	Codec string
}

// OpenSource opens a video file for decoding
func (m Media) OpenSource(path string) (landmark.Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("[OpenSource] failed to open %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("[OpenSource] cannot decode %s", path)
	}

	return &Source{
		vc:     vc,
		bgr:    gocv.NewMat(),
		rgb:    gocv.NewMat(),
		width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		fps:    vc.Get(gocv.VideoCaptureFPS),
	}, nil
}

// OpenSink opens an annotated video for writing
func (m Media) OpenSink(path string, fps float64, width, height int) (landmark.Sink, error) {
	vw, err := gocv.VideoWriterFile(path, m.Codec, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("[OpenSink] failed to create %s: %w", path, err)
	}

	return &Sink{vw: vw}, nil
}

// Source decodes frames and hands them out as RGB
type Source struct {
	vc     *gocv.VideoCapture
	bgr    gocv.Mat
	rgb    gocv.Mat
	width  int
	height int
	fps    float64
}

func (s *Source) Width() int   { return s.width }
func (s *Source) Height() int  { return s.height }
func (s *Source) FPS() float64 { return s.fps }

// Read decodes the next frame. Empty frames mark the end of the stream.
func (s *Source) Read() (detect.Frame, bool, error) {
	if ok := s.vc.Read(&s.bgr); !ok || s.bgr.Empty() {
		return detect.Frame{}, false, nil
	}

	gocv.CvtColor(s.bgr, &s.rgb, gocv.ColorBGRToRGB)

	return detect.Frame{
		Width:  s.rgb.Cols(),
		Height: s.rgb.Rows(),
		RGB:    s.rgb.ToBytes(),
	}, true, nil
}

// Close releases the decoder
func (s *Source) Close() error {
	errs := []error{s.bgr.Close(), s.rgb.Close()}
	if err := s.vc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("[Source] closing decoder: %w", err))
	}

	return errors.Join(errs...)
}

// Sink writes annotated frames
type Sink struct {
	vw *gocv.VideoWriter
}

// Write converts the frame back to BGR, draws the landmarks and appends it
func (s *Sink) Write(frame detect.Frame, det detect.Detection, hands landmark.Hands) error {
	rgb, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.RGB)
	if err != nil {
		return fmt.Errorf("[Sink] wrapping frame: %w", err)
	}
	defer rgb.Close()

	img := gocv.NewMat()
	defer img.Close()
	gocv.CvtColor(rgb, &img, gocv.ColorRGBToBGR)

	Annotate(&img, det, hands)

	if err := s.vw.Write(img); err != nil {
		return fmt.Errorf("[Sink] writing frame: %w", err)
	}

	return nil
}

// Close finalises the output file
func (s *Sink) Close() error {
	if err := s.vw.Close(); err != nil {
		return fmt.Errorf("[Sink] closing encoder: %w", err)
	}

	return nil
}
