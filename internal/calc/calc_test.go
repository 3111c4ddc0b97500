package calc

import (
	"math"
	"runtime"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/require"
)

func TestInitWorkers(t *testing.T) {
	require.Equal(t, 3, Init(3).Workers())
	require.Equal(t, runtime.NumCPU(), Init(0).Workers())
	require.Equal(t, runtime.NumCPU(), Init(-1).Workers())
}

func TestCrossnobis(t *testing.T) {
	nan := math.NaN()
	// conditions a, b, c with three folds each, one channel
	data := mat64.NewDense(9, 1, []float64{
		1, 2, 3,
		0, 0, 0,
		1, nan, 3,
	})
	conds := []string{"a", "a", "a", "b", "b", "b", "c", "c", "c"}
	folds := []int{0, 1, 2, 0, 1, 2, 0, 1, 2}

	rdm, labels, err := Init(2).Crossnobis(data, conds, folds)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, labels)

	// d = (1, 2, 3): (S^2 - Q) / (n(n-1)) = (36 - 14) / 6
	require.InDelta(t, 22.0/6.0, rdm.At(0, 1), 1e-12)
	require.InDelta(t, 22.0/6.0, rdm.At(1, 0), 1e-12)
	// d = (1, NaN, 3): (16 - 10) / 2
	require.InDelta(t, 3.0, rdm.At(1, 2), 1e-12)
	// a and c agree wherever both are defined
	require.InDelta(t, 0.0, rdm.At(0, 2), 1e-12)
	require.Equal(t, 0.0, rdm.At(0, 0))
}

func TestCrossnobisAllMissingCondition(t *testing.T) {
	nan := math.NaN()
	data := mat64.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		nan, nan,
		nan, nan,
	})

	rdm, _, err := Init(1).Crossnobis(data, []string{"a", "a", "b", "b"}, []int{0, 1, 0, 1})
	require.NoError(t, err)
	require.True(t, math.IsNaN(rdm.At(0, 1)))
	require.Equal(t, 2, Undefined(rdm))
}

func TestCrossnobisLabelMismatch(t *testing.T) {
	data := mat64.NewDense(2, 1, []float64{1, 2})

	_, _, err := Init(1).Crossnobis(data, []string{"a"}, []int{0, 1})
	require.ErrorIs(t, err, ErrLabelMismatch)

	_, _, err = Init(1).Euclidean(data, []string{"a", "b", "c"})
	require.ErrorIs(t, err, ErrLabelMismatch)
}

func TestCrossnobisWorkerCountIndependent(t *testing.T) {
	n, frames, channels := 7, 4, 5
	data := mat64.NewDense(n*frames, channels, nil)
	conds := make([]string, n*frames)
	folds := make([]int, n*frames)
	for i := 0; i < n*frames; i++ {
		conds[i] = string(rune('a' + i/frames))
		folds[i] = i % frames
		for c := 0; c < channels; c++ {
			data.Set(i, c, math.Sin(float64(i*channels+c)))
		}
	}

	one, _, err := Init(1).Crossnobis(data, conds, folds)
	require.NoError(t, err)
	many, _, err := Init(8).Crossnobis(data, conds, folds)
	require.NoError(t, err)
	require.True(t, mat64.Equal(one, many))
	require.True(t, Init(3).SymCheck(many, 1e-12))
}

func TestEuclidean(t *testing.T) {
	data := mat64.NewDense(3, 1, []float64{1, 3, 0})

	rdm, labels, err := Init(2).Euclidean(data, []string{"a", "a", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, labels)
	// (1^2 + 3^2) / 2
	require.InDelta(t, 5.0, rdm.At(0, 1), 1e-12)
}

func TestCosineDissimilarity(t *testing.T) {
	vectors := mat64.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
		0, 0,
	})

	rdm := Init(2).CosineDissimilarity(vectors)
	require.Equal(t, 0.0, rdm.At(0, 0))
	require.InDelta(t, 1.0, rdm.At(0, 1), 1e-12)
	require.InDelta(t, 1-1/math.Sqrt2, rdm.At(0, 2), 1e-12)
	require.InDelta(t, rdm.At(0, 2), rdm.At(2, 0), 1e-12)
	require.True(t, math.IsNaN(rdm.At(3, 1)))
	require.True(t, math.IsNaN(rdm.At(3, 3)))
}

func square(upper ...float64) *mat64.Dense {
	// 3x3 from the three upper entries
	m := mat64.NewDense(3, 3, nil)
	m.Set(0, 1, upper[0])
	m.Set(0, 2, upper[1])
	m.Set(1, 2, upper[2])
	m.Set(1, 0, upper[0])
	m.Set(2, 0, upper[1])
	m.Set(2, 1, upper[2])
	return m
}

func TestRhoA(t *testing.T) {
	a := square(1, 2, 3)

	r, err := RhoA(a, square(10, 20, 30))
	require.NoError(t, err)
	require.InDelta(t, 1.0, r, 1e-12)

	r, err = RhoA(a, square(3, 2, 1))
	require.NoError(t, err)
	require.InDelta(t, -1.0, r, 1e-12)

	// ties keep their average rank and are not corrected for
	r, err = RhoA(a, square(1, 1, 2))
	require.NoError(t, err)
	require.InDelta(t, 0.875, r, 1e-12)

	// one undefined pair leaves two
	r, err = RhoA(a, square(math.NaN(), 5, 6))
	require.NoError(t, err)
	require.InDelta(t, 1.0, r, 1e-12)

	r, err = RhoA(a, square(math.NaN(), math.NaN(), 6))
	require.NoError(t, err)
	require.True(t, math.IsNaN(r))

	_, err = RhoA(a, mat64.NewDense(2, 2, nil))
	require.Error(t, err)
}

func TestCorrAndCompare(t *testing.T) {
	a := square(1, 2, 3)

	r, err := Corr(a, square(2, 4, 6))
	require.NoError(t, err)
	require.InDelta(t, 1.0, r, 1e-12)

	r, err = Compare("rho-a", a, square(3, 2, 1))
	require.NoError(t, err)
	require.InDelta(t, -1.0, r, 1e-12)

	_, err = Compare("kendall", a, a)
	require.Error(t, err)
}

func TestSymCheck(t *testing.T) {
	p := Init(2)
	m := square(1, math.NaN(), 3)
	require.True(t, p.SymCheck(m, 1e-9))

	m.Set(0, 1, 1.5)
	require.False(t, p.SymCheck(m, 1e-9))
	require.False(t, p.SymCheck(mat64.NewDense(2, 3, nil), 1e-9))
}

func TestRank(t *testing.T) {
	require.Equal(t, []float64{2.5, 1, 2.5, 4}, rank([]float64{5, 1, 5, 7}))
}
