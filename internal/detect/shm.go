package detect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"unsafe"

	"github.com/ghetzel/shmtool/shm"
	"github.com/rs/zerolog"
)

// Params describes the external detector and the landmark schema it reports
type Params struct {
	// Binary is the detector executable
	Binary string
	// Args are passed before the shared memory arguments
	Args []string
	// PoseLandmarks is the number of pose landmarks per frame
	PoseLandmarks int
	// HandLandmarks is the number of landmarks per hand
	HandLandmarks int
	// MaxHands is the maximum number of hands reported per frame
	MaxHands int
}

// ResultSize is the number of float64 values in the result block:
// [posePresent, pose xyz..., handCount, (label, score, hand xyz...) x MaxHands]
func (p Params) ResultSize() int {
	return 1 + p.PoseLandmarks*3 + 1 + p.MaxHands*(2+p.HandLandmarks*3)
}

// ShmDetector drives an external detector process. Frames are handed over in
// one shared memory segment and results come back in a second one; the
// process is told about each frame with a "frame" line on stdin and answers
// "ok" on stdout once the result block is filled.
type ShmDetector struct {
	params Params
	log    zerolog.Logger

	width  int
	height int

	frameShm   *shm.Segment
	frameBase  unsafe.Pointer
	resultShm  *shm.Segment
	resultBase unsafe.Pointer

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// NewShmDetector returns a detector that starts one process per Open
func NewShmDetector(log zerolog.Logger, p Params) *ShmDetector {
	return &ShmDetector{
		params: p,
		log:    log,
	}
}

// Open allocates the shared memory for frames of the given size and starts
// the detector process
func (d *ShmDetector) Open(width, height int) error {
	if d.cmd != nil {
		return errors.New("[ShmDetector] session already open")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("[ShmDetector] invalid frame size %dx%d", width, height)
	}

	d.width, d.height = width, height

	var err error
	if d.frameShm, err = shm.Create(width * height * 3); err != nil {
		return fmt.Errorf("[ShmDetector] failed to create frame segment: %w", err)
	}
	if d.frameBase, err = d.frameShm.Attach(); err != nil {
		d.release()
		return fmt.Errorf("[ShmDetector] failed to attach frame segment: %w", err)
	}
	if d.resultShm, err = shm.Create(d.params.ResultSize() * 8); err != nil {
		d.release()
		return fmt.Errorf("[ShmDetector] failed to create result segment: %w", err)
	}
	if d.resultBase, err = d.resultShm.Attach(); err != nil {
		d.release()
		return fmt.Errorf("[ShmDetector] failed to attach result segment: %w", err)
	}

	args := append([]string{}, d.params.Args...)
	args = append(args,
		strconv.Itoa(d.frameShm.Id),
		strconv.Itoa(d.resultShm.Id),
		strconv.Itoa(width),
		strconv.Itoa(height),
		strconv.Itoa(d.params.PoseLandmarks),
		strconv.Itoa(d.params.HandLandmarks),
		strconv.Itoa(d.params.MaxHands),
	)

	cmd := exec.Command(d.params.Binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		d.release()
		return fmt.Errorf("[ShmDetector] stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.release()
		return fmt.Errorf("[ShmDetector] stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		d.release()
		return fmt.Errorf("[ShmDetector] failed to start %s: %w", d.params.Binary, err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)

	d.log.Debug().Int("frameShm", d.frameShm.Id).Int("resultShm", d.resultShm.Id).
		Int("width", width).Int("height", height).Msg("detector started")

	return nil
}

// Detect hands one frame to the detector process and decodes its answer
func (d *ShmDetector) Detect(frame Frame) (Detection, error) {
	if d.cmd == nil {
		return Detection{}, errors.New("[ShmDetector] session not open")
	}
	if frame.Width != d.width || frame.Height != d.height {
		return Detection{}, fmt.Errorf("[ShmDetector] frame is %dx%d, session was opened for %dx%d",
			frame.Width, frame.Height, d.width, d.height)
	}
	if len(frame.RGB) != d.width*d.height*3 {
		return Detection{}, fmt.Errorf("[ShmDetector] frame holds %d bytes, expected %d",
			len(frame.RGB), d.width*d.height*3)
	}

	copy(unsafe.Slice((*byte)(d.frameBase), len(frame.RGB)), frame.RGB)

	if _, err := io.WriteString(d.stdin, "frame\n"); err != nil {
		return Detection{}, fmt.Errorf("[ShmDetector] failed to signal frame: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return Detection{}, fmt.Errorf("[ShmDetector] detector did not answer: %w", err)
	}
	if reply := strings.TrimSpace(line); reply != "ok" {
		return Detection{}, fmt.Errorf("[ShmDetector] detector replied %q", reply)
	}

	n := d.params.ResultSize()
	buf := make([]float64, n)
	copy(buf, unsafe.Slice((*float64)(d.resultBase), n))

	return DecodeResult(buf, d.params)
}

// Close ends the detector process and frees the shared memory. It is safe to
// call on a session that failed to open.
func (d *ShmDetector) Close() error {
	var errs []error

	if d.cmd != nil {
		if err := d.stdin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("[ShmDetector] closing stdin: %w", err))
		}
		if err := d.cmd.Wait(); err != nil {
			errs = append(errs, fmt.Errorf("[ShmDetector] detector exited: %w", err))
		}
		d.cmd = nil
		d.stdin = nil
		d.stdout = nil
	}

	if err := d.release(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (d *ShmDetector) release() error {
	var errs []error

	if d.frameShm != nil {
		if d.frameBase != nil {
			if err := d.frameShm.Detach(d.frameBase); err != nil {
				errs = append(errs, err)
			}
		}
		if err := d.frameShm.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.resultShm != nil {
		if d.resultBase != nil {
			if err := d.resultShm.Detach(d.resultBase); err != nil {
				errs = append(errs, err)
			}
		}
		if err := d.resultShm.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}

	d.frameShm, d.frameBase = nil, nil
	d.resultShm, d.resultBase = nil, nil

	if len(errs) > 0 {
		return fmt.Errorf("[ShmDetector] releasing shared memory: %w", errors.Join(errs...))
	}

	return nil
}

// DecodeResult unpacks a result block written by the detector process
func DecodeResult(buf []float64, p Params) (Detection, error) {
	if len(buf) != p.ResultSize() {
		return Detection{}, fmt.Errorf("[DecodeResult] result block holds %d values, expected %d",
			len(buf), p.ResultSize())
	}

	var det Detection
	off := 0

	posePresent := buf[off] > 0.5
	off++
	if posePresent {
		det.Pose = decodePoints(buf[off : off+p.PoseLandmarks*3])
	}
	off += p.PoseLandmarks * 3

	handCount := int(buf[off])
	off++
	if handCount < 0 || handCount > p.MaxHands {
		return Detection{}, fmt.Errorf("[DecodeResult] hand count %d outside [0, %d]", handCount, p.MaxHands)
	}

	handSize := 2 + p.HandLandmarks*3
	for h := 0; h < handCount; h++ {
		block := buf[off+h*handSize : off+(h+1)*handSize]

		var label Handedness
		switch int(block[0]) {
		case 0:
			label = Left
		case 1:
			label = Right
		default:
			return Detection{}, fmt.Errorf("[DecodeResult] hand %d has unknown label %v", h, block[0])
		}

		det.Hands = append(det.Hands, Hand{
			Label:  label,
			Score:  block[1],
			Points: decodePoints(block[2:]),
		})
	}

	return det, nil
}

func decodePoints(xyz []float64) []Point {
	pts := make([]Point, len(xyz)/3)
	for i := range pts {
		pts[i] = Point{X: xyz[i*3], Y: xyz[i*3+1], Z: xyz[i*3+2]}
	}

	return pts
}
