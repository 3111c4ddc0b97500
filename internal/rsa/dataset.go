package rsa

import (
	"fmt"
	"sort"

	"github.com/gonum/matrix/mat64"
)

// Modality describes the measurements of a landmark dataset
const Modality = "mediapipe_landmarks"

// TemporalDataset is a (condition, channel, frame) tensor with one
// descriptor per axis
type TemporalDataset struct {
	Modality     string
	Measurements *Tensor3
	Conds        []string
	Channels     []string
	Times        []float64
}

// NewTemporalDataset checks every descriptor against the length of its axis
func NewTemporalDataset(m *Tensor3, conds, channels []string, times []float64) (*TemporalDataset, error) {
	checks := []struct {
		axis string
		want int
		got  int
	}{
		{"condition", m.Dims[0], len(conds)},
		{"channel", m.Dims[1], len(channels)},
		{"time", m.Dims[2], len(times)},
	}
	for _, c := range checks {
		if c.want != c.got {
			return nil, fmt.Errorf("[NewTemporalDataset] %w: %d %s labels for %d entries",
				ErrLengthMismatch, c.got, c.axis, c.want)
		}
		if c.want == 0 {
			return nil, fmt.Errorf("[NewTemporalDataset] %w: empty %s axis", ErrShapeMismatch, c.axis)
		}
	}

	return &TemporalDataset{
		Modality:     Modality,
		Measurements: m,
		Conds:        conds,
		Channels:     channels,
		Times:        times,
	}, nil
}

// SortByCondition stably reorders the condition axis by label
func (d *TemporalDataset) SortByCondition() {
	order := make([]int, len(d.Conds))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return d.Conds[order[i]] < d.Conds[order[j]] })

	m := d.Measurements
	block := m.Dims[1] * m.Dims[2]
	data := make([]float64, len(m.Data))
	conds := make([]string, len(d.Conds))
	for dst, src := range order {
		copy(data[dst*block:(dst+1)*block], m.Data[src*block:(src+1)*block])
		conds[dst] = d.Conds[src]
	}

	m.Data = data
	d.Conds = conds
}

// SubsetTime keeps a single frame
func (d *TemporalDataset) SubsetTime(frame int) (*TemporalDataset, error) {
	m := d.Measurements
	if frame < 0 || frame >= m.Dims[2] {
		return nil, fmt.Errorf("[SubsetTime] frame %d outside [0, %d)", frame, m.Dims[2])
	}

	sub := NewTensor3(m.Dims[0], m.Dims[1], 1)
	for i := 0; i < m.Dims[0]; i++ {
		for j := 0; j < m.Dims[1]; j++ {
			sub.Set(i, j, 0, m.At(i, j, frame))
		}
	}

	return &TemporalDataset{
		Modality:     d.Modality,
		Measurements: sub,
		Conds:        d.Conds,
		Channels:     d.Channels,
		Times:        []float64{d.Times[frame]},
	}, nil
}

// Binned is an (observation, channel) matrix. Observation i is frame
// i mod frames of condition i / frames.
type Binned struct {
	Data     *mat64.Dense
	Conds    []string
	Folds    []int
	Times    []float64
	Channels []string
}

// TimeAsObservations turns every (condition, frame) pair into an observation,
// condition-major and frame-minor. Values are copied unchanged. The fold of
// an observation is its frame index.
func (d *TemporalDataset) TimeAsObservations() *Binned {
	m := d.Measurements
	nCond, nChan, nFrame := m.Dims[0], m.Dims[1], m.Dims[2]
	nObs := nCond * nFrame

	b := &Binned{
		Data:     mat64.NewDense(nObs, nChan, nil),
		Conds:    make([]string, nObs),
		Folds:    make([]int, nObs),
		Times:    make([]float64, nObs),
		Channels: d.Channels,
	}

	for obs := 0; obs < nObs; obs++ {
		cond, frame := obs/nFrame, obs%nFrame
		row := b.Data.RawRowView(obs)
		for c := 0; c < nChan; c++ {
			row[c] = m.At(cond, c, frame)
		}
		b.Conds[obs] = d.Conds[cond]
		b.Folds[obs] = obs % nFrame
		b.Times[obs] = d.Times[frame]
	}

	return b
}
