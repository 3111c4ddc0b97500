package landmark

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/KyungWonPark/GestureRDM/internal/detect"
	"github.com/KyungWonPark/GestureRDM/internal/io"
	"github.com/rs/zerolog"
)

// Output file names written by Result.Save
const (
	PoseFile     = "pose_landmarks.npy"
	LeftFile     = "lh_landmarks.npy"
	RightFile    = "rh_landmarks.npy"
	InputsFile   = "landmark_inputs.csv"
	LegendFile   = "landmark_desc.txt"
	legendFormat = `Landmark arrays extracted from %d videos (%d frames each, fps %g).

%s  pose landmarks, shape (video, frame, %d, %d)
%s  left hand landmarks, shape (video, frame, %d, %d)
%s  right hand landmarks, shape (video, frame, %d, %d)
%s  video file names, one per row, in video axis order

Coordinates are x, y, z as reported by the detector: x and y normalised to the
frame, z relative depth. A frame in which a body or hand was not detected holds
NaN for all of its landmarks. Every video is truncated to the frame count of
the shortest one.
`
)

// Source decodes the frames of one video as RGB
type Source interface {
	Width() int
	Height() int
	FPS() float64
	// Read returns the next frame, or false once the video is exhausted
	Read() (detect.Frame, bool, error)
	Close() error
}

// Sink receives every processed frame together with what was found in it
type Sink interface {
	Write(frame detect.Frame, det detect.Detection, hands Hands) error
	Close() error
}

// Media opens frame sources and annotation sinks
type Media interface {
	OpenSource(path string) (Source, error)
	OpenSink(path string, fps float64, width, height int) (Sink, error)
}

// Options controls an extraction run
type Options struct {
	InputDir      string
	OutputDir     string
	VideoExt      string
	Annotate      bool
	OutputSuffix  string
	PoseLandmarks int
	HandLandmarks int
}

// Result holds the extracted arrays, already truncated to a common frame count
type Result struct {
	Inputs      []string
	FrameCounts []int
	FPS         float64
	Pose        *Array
	Left        *Array
	Right       *Array
}

// Extractor runs the detector over every video of a directory
type Extractor struct {
	opts     Options
	detector detect.Detector
	media    Media
	log      zerolog.Logger
}

// NewExtractor returns an extractor. The detector is opened and closed once per video.
func NewExtractor(log zerolog.Logger, opts Options, detector detect.Detector, media Media) *Extractor {
	return &Extractor{
		opts:     opts,
		detector: detector,
		media:    media,
		log:      log,
	}
}

// recording accumulates the landmarks of one video, frame by frame
type recording struct {
	frames int
	fps    float64
	pose   []float64
	left   []float64
	right  []float64
}

// ListVideos returns the names of the files in dir with extension ext, sorted
func ListVideos(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("[ListVideos] failed to read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}

// OutputName inserts suffix before the first '.' of name: a.b.mp4 -> a_pose.b.mp4
func OutputName(name, suffix string) string {
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i] + suffix + name[i:]
	}

	return name + suffix
}

// Run processes every video in name order and returns the truncated arrays
func (e *Extractor) Run() (*Result, error) {
	names, err := ListVideos(e.opts.InputDir, e.opts.VideoExt)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("[Extractor] no %s videos in %s", e.opts.VideoExt, e.opts.InputDir)
	}

	if e.opts.Annotate {
		if err := os.MkdirAll(e.opts.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("[Extractor] failed to create %s: %w", e.opts.OutputDir, err)
		}
	}

	recs := make([]*recording, len(names))
	for i, name := range names {
		e.log.Info().Msgf("[%d/%d] %s", i+1, len(names), name)

		rec, err := e.processVideo(name)
		if err != nil {
			return nil, fmt.Errorf("[Extractor] %s: %w", name, err)
		}
		e.log.Debug().Str("video", name).Int("frames", rec.frames).Msg("video done")

		recs[i] = rec
	}

	return e.assemble(names, recs)
}

func (e *Extractor) processVideo(name string) (rec *recording, err error) {
	src, err := e.media.OpenSource(filepath.Join(e.opts.InputDir, name))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, src.Close())
	}()

	if err := e.detector.Open(src.Width(), src.Height()); err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, e.detector.Close())
	}()

	var sink Sink
	if e.opts.Annotate {
		out := filepath.Join(e.opts.OutputDir, OutputName(name, e.opts.OutputSuffix))
		if sink, err = e.media.OpenSink(out, src.FPS(), src.Width(), src.Height()); err != nil {
			return nil, err
		}
		defer func() {
			err = errors.Join(err, sink.Close())
		}()
	}

	rec = &recording{fps: src.FPS()}
	for {
		frame, ok, err := src.Read()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", rec.frames, err)
		}
		if !ok {
			break
		}

		det, err := e.detector.Detect(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", rec.frames, err)
		}
		hands := ResolveHands(det.Hands)

		if rec.pose, err = appendPoints(rec.pose, det.Pose, e.opts.PoseLandmarks); err != nil {
			return nil, fmt.Errorf("frame %d pose: %w", rec.frames, err)
		}
		if rec.left, err = appendPoints(rec.left, hands.Left, e.opts.HandLandmarks); err != nil {
			return nil, fmt.Errorf("frame %d left hand: %w", rec.frames, err)
		}
		if rec.right, err = appendPoints(rec.right, hands.Right, e.opts.HandLandmarks); err != nil {
			return nil, fmt.Errorf("frame %d right hand: %w", rec.frames, err)
		}

		if sink != nil {
			if err := sink.Write(frame, det, hands); err != nil {
				return nil, fmt.Errorf("frame %d: %w", rec.frames, err)
			}
		}

		rec.frames++
	}

	return rec, nil
}

// appendPoints appends one frame of n landmarks, NaN when pts is nil
func appendPoints(dst []float64, pts []detect.Point, n int) ([]float64, error) {
	frame := NewArray(1, 1, n)
	if err := frame.SetPoints(0, 0, pts); err != nil {
		return dst, err
	}

	return append(dst, frame.Data...), nil
}

func (e *Extractor) assemble(names []string, recs []*recording) (*Result, error) {
	counts := make([]int, len(recs))
	maxFrames := 0
	for i, r := range recs {
		counts[i] = r.frames
		if r.frames > maxFrames {
			maxFrames = r.frames
		}
	}
	minFrames := MinFrames(counts)

	pack := func(landmarks int, pick func(*recording) []float64) (*Array, error) {
		a := NewArray(len(recs), maxFrames, landmarks)
		for v, r := range recs {
			copy(a.Data[v*maxFrames*landmarks*config.Coordinates:], pick(r))
		}

		return a.Truncate(minFrames)
	}

	res := &Result{Inputs: names, FrameCounts: counts, FPS: recs[0].fps}

	var err error
	if res.Pose, err = pack(e.opts.PoseLandmarks, func(r *recording) []float64 { return r.pose }); err != nil {
		return nil, err
	}
	if res.Left, err = pack(e.opts.HandLandmarks, func(r *recording) []float64 { return r.left }); err != nil {
		return nil, err
	}
	if res.Right, err = pack(e.opts.HandLandmarks, func(r *recording) []float64 { return r.right }); err != nil {
		return nil, err
	}

	if minFrames < maxFrames {
		e.log.Info().Int("frames", minFrames).Int("longest", maxFrames).Msg("truncated videos to shortest")
	}

	return res, nil
}

// Save writes the three arrays, the video manifest and the legend into dir
func (r *Result) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("[Save] failed to create %s: %w", dir, err)
	}

	arrays := []struct {
		name string
		a    *Array
	}{
		{PoseFile, r.Pose},
		{LeftFile, r.Left},
		{RightFile, r.Right},
	}
	for _, f := range arrays {
		if err := io.WriteArray(filepath.Join(dir, f.name), f.a.Shape(), f.a.Data); err != nil {
			return err
		}
	}

	if err := io.WriteManifest(filepath.Join(dir, InputsFile), r.Inputs); err != nil {
		return err
	}

	legend := fmt.Sprintf(legendFormat, len(r.Inputs), r.Pose.Frames, r.FPS,
		PoseFile, r.Pose.Landmarks, config.Coordinates,
		LeftFile, r.Left.Landmarks, config.Coordinates,
		RightFile, r.Right.Landmarks, config.Coordinates,
		InputsFile)
	if err := os.WriteFile(filepath.Join(dir, LegendFile), []byte(legend), 0o644); err != nil {
		return fmt.Errorf("[Save] failed to write legend: %w", err)
	}

	return nil
}
