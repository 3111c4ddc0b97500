package embed

import (
	"errors"
	"fmt"

	"github.com/gonum/matrix/mat64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA holds principal directions fitted on a set of vectors
type PCA struct {
	vecs *mat.Dense
}

// FitPCA finds the principal directions of the rows of fit
func FitPCA(fit [][]float64) (*PCA, error) {
	if len(fit) < 2 {
		return nil, errors.New("[FitPCA] need at least two vectors")
	}

	x := mat.NewDense(len(fit), len(fit[0]), nil)
	for i, row := range fit {
		x.SetRow(i, row)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New("[FitPCA] decomposition failed")
	}

	p := &PCA{vecs: &mat.Dense{}}
	pc.VectorsTo(p.vecs)

	return p, nil
}

// Components returns how many directions are available
func (p *PCA) Components() int {
	_, c := p.vecs.Dims()
	return c
}

// Project maps rows onto the first k directions. Rows are not centred, so the
// result matches a model whose vectors were reduced in place.
func (p *PCA) Project(rows [][]float64, k int) (*mat64.Dense, error) {
	d, c := p.vecs.Dims()
	if k <= 0 || k > c {
		return nil, fmt.Errorf("[Project] cannot keep %d of %d components", k, c)
	}

	x := mat.NewDense(len(rows), d, nil)
	for i, row := range rows {
		if len(row) != d {
			return nil, fmt.Errorf("[Project] row %d has %d values, expected %d", i, len(row), d)
		}
		x.SetRow(i, row)
	}

	var out mat.Dense
	out.Mul(x, p.vecs.Slice(0, d, 0, k))

	return toMat64(&out), nil
}

// toMat64 copies a matrix into the type the calc kernels work on
func toMat64(m *mat.Dense) *mat64.Dense {
	r, c := m.Dims()
	out := mat64.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		copy(out.RawRowView(i), m.RawRowView(i))
	}

	return out
}

// Rows stacks vectors into a matrix
func Rows(vectors [][]float64) *mat64.Dense {
	out := mat64.NewDense(len(vectors), len(vectors[0]), nil)
	for i, v := range vectors {
		copy(out.RawRowView(i), v)
	}

	return out
}
