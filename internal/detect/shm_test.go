package detect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ghetzel/shmtool/shm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{PoseLandmarks: 2, HandLandmarks: 1, MaxHands: 2}
}

func TestResultSize(t *testing.T) {
	// 1 + 2*3 + 1 + 2*(2+1*3)
	require.Equal(t, 18, testParams().ResultSize())
}

func TestDecodeResult(t *testing.T) {
	p := testParams()
	buf := []float64{
		1, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, // pose
		2,                               // hands
		1, 0.9, 7, 8, 9,                 // right hand
		0, 0.8, 4, 5, 6,                 // left hand
	}

	det, err := DecodeResult(buf, p)
	require.NoError(t, err)
	require.Equal(t, []Point{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}, det.Pose)
	require.Len(t, det.Hands, 2)
	require.Equal(t, Right, det.Hands[0].Label)
	require.Equal(t, 0.9, det.Hands[0].Score)
	require.Equal(t, []Point{{7, 8, 9}}, det.Hands[0].Points)
	require.Equal(t, Left, det.Hands[1].Label)
}

func TestDecodeResultNothingFound(t *testing.T) {
	buf := make([]float64, testParams().ResultSize())

	det, err := DecodeResult(buf, testParams())
	require.NoError(t, err)
	require.Nil(t, det.Pose)
	require.Empty(t, det.Hands)
}

func TestDecodeResultRejectsBadBlocks(t *testing.T) {
	p := testParams()

	_, err := DecodeResult(make([]float64, 3), p)
	require.Error(t, err)

	buf := make([]float64, p.ResultSize())
	buf[7] = 3 // more hands than MaxHands
	_, err = DecodeResult(buf, p)
	require.Error(t, err)

	buf = make([]float64, p.ResultSize())
	buf[7] = 1
	buf[8] = 5 // unknown label
	_, err = DecodeResult(buf, p)
	require.Error(t, err)
}

func TestShmDetectorRequiresOpen(t *testing.T) {
	d := NewShmDetector(zerolog.Nop(), testParams())

	_, err := d.Detect(Frame{Width: 1, Height: 1, RGB: []byte{0, 0, 0}})
	require.Error(t, err)
	require.NoError(t, d.Close())
	require.Error(t, d.Open(0, 10))
}

func TestShmDetectorReleaseUnsetSegments(t *testing.T) {
	var frame, result *shm.Segment
	d := &ShmDetector{params: testParams(), frameShm: frame, resultShm: result}

	require.NoError(t, d.release())
	require.Nil(t, d.frameShm)
	require.Nil(t, d.resultShm)
}

func TestShmDetectorKeepsCallerLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).With().Str("component", "detect").Logger()

	d := NewShmDetector(log, testParams())
	d.log.Info().Msg("started")

	require.Equal(t, 1, strings.Count(buf.String(), `"component"`), buf.String())
}

func TestHandednessString(t *testing.T) {
	require.Equal(t, "Left", Left.String())
	require.Equal(t, "Right", Right.String())
	require.Equal(t, "Unknown", Handedness(7).String())
}
