package rsa

import (
	"fmt"
	"math"

	"github.com/KyungWonPark/GestureRDM/internal/calc"
	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/KyungWonPark/GestureRDM/internal/io"
	"github.com/KyungWonPark/GestureRDM/internal/landmark"
	"github.com/gonum/matrix/mat64"
)

// CondDescriptor names the pattern descriptor holding condition labels
const CondDescriptor = "conds"

// RDM is a square dissimilarity matrix over labelled conditions
type RDM struct {
	Measure         string
	Conds           []string
	Dissimilarities *mat64.Dense
}

// Prepare runs assembly, flattening and reordering and attaches the
// descriptors. conds must follow the video axis of the arrays.
func Prepare(pose, lh, rh *landmark.Array, conds []string, poseIdx []int, fps float64) (*TemporalDataset, error) {
	if lh.Landmarks != rh.Landmarks {
		return nil, fmt.Errorf("[Prepare] %w: left hand has %d landmarks, right hand %d",
			ErrShapeMismatch, lh.Landmarks, rh.Landmarks)
	}

	assembled, err := Assemble(pose, lh, rh, poseIdx)
	if err != nil {
		return nil, err
	}

	m := Flatten(assembled).SwapLast()

	return NewTemporalDataset(m, conds, ChannelNames(poseIdx, lh.Landmarks), Times(m.Dims[2], fps))
}

// Build computes the RDM of a binned dataset with the configured method
func Build(p *calc.PipeLine, b *Binned, method string) (*RDM, error) {
	var (
		d     *mat64.Dense
		conds []string
		err   error
	)

	switch method {
	case config.MethodCrossnobis:
		d, conds, err = p.Crossnobis(b.Data, b.Conds, b.Folds)
	case config.MethodEuclidean:
		d, conds, err = p.Euclidean(b.Data, b.Conds)
	default:
		return nil, fmt.Errorf("[Build] unknown method %q", method)
	}
	if err != nil {
		return nil, err
	}

	if !p.SymCheck(d, 1e-9) {
		return nil, fmt.Errorf("[Build] %s RDM is not symmetric", method)
	}

	return &RDM{Measure: method, Conds: conds, Dissimilarities: d}, nil
}

// Undefined counts condition pairs without a defined dissimilarity, both triangles included
func (r *RDM) Undefined() int {
	return calc.Undefined(r.Dissimilarities)
}

// Save writes the RDM as HDF5. An existing file is kept unless overwrite is set.
func (r *RDM) Save(path string, overwrite bool) error {
	return io.SaveRDM(path, io.RDMFile{
		Measure:         r.Measure,
		Descriptor:      CondDescriptor,
		Labels:          r.Conds,
		Dissimilarities: r.Dissimilarities,
	}, overwrite)
}

// CheckReference makes sure ref has one row and column per condition.
// Entries are matched by position, so ref must follow the order of conds.
func CheckReference(ref *mat64.Dense, conds []string) error {
	r, c := ref.Dims()
	if r != c || r != len(conds) {
		return fmt.Errorf("%w: reference RDM is %dx%d, landmark RDM has %d conditions; "+
			"the reference must list the stimuli in the sorted video name order",
			ErrShapeMismatch, r, c, len(conds))
	}

	return nil
}

// Movie compares a per-frame euclidean RDM with ref for every frame.
// Frames whose RDM has undefined entries yield NaN.
func Movie(p *calc.PipeLine, d *TemporalDataset, ref *mat64.Dense, method string) ([]float64, error) {
	if err := CheckReference(ref, d.Conds); err != nil {
		return nil, fmt.Errorf("[Movie] %w", err)
	}

	r := make([]float64, len(d.Times))

	for t := range d.Times {
		sub, err := d.SubsetTime(t)
		if err != nil {
			return nil, err
		}

		rdm, err := Build(p, sub.TimeAsObservations(), config.MethodEuclidean)
		if err != nil {
			return nil, fmt.Errorf("[Movie] frame %d: %w", t, err)
		}
		if rdm.Undefined() > 0 {
			r[t] = math.NaN()
			continue
		}

		if r[t], err = calc.Compare(method, ref, rdm.Dissimilarities); err != nil {
			return nil, fmt.Errorf("[Movie] frame %d: %w", t, err)
		}
	}

	return r, nil
}
