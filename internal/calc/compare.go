package calc

import (
	"fmt"
	"math"
	"sort"

	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/gonum/matrix/mat64"
	"gonum.org/v1/gonum/stat"
)

// UpperTriangle returns the entries above the diagonal, row by row
func UpperTriangle(m *mat64.Dense) []float64 {
	rows, _ := m.Dims()

	out := make([]float64, 0, rows*(rows-1)/2)
	for i := 0; i < rows; i++ {
		for j := i + 1; j < rows; j++ {
			out = append(out, m.At(i, j))
		}
	}

	return out
}

// pairedFinite returns the upper triangles of both matrices, keeping only
// positions where both are finite
func pairedFinite(a, b *mat64.Dense) ([]float64, []float64, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != ac || br != bc || ar != br {
		return nil, nil, fmt.Errorf("cannot compare %dx%d with %dx%d", ar, ac, br, bc)
	}

	ua, ub := UpperTriangle(a), UpperTriangle(b)
	x := make([]float64, 0, len(ua))
	y := make([]float64, 0, len(ub))
	for i := range ua {
		if math.IsNaN(ua[i]) || math.IsNaN(ub[i]) || math.IsInf(ua[i], 0) || math.IsInf(ub[i], 0) {
			continue
		}
		x = append(x, ua[i])
		y = append(y, ub[i])
	}

	return x, y, nil
}

// rank assigns 1-based ranks, ties sharing their average rank
func rank(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return v[idx[i]] < v[idx[j]] })

	ranks := make([]float64, len(v))
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && v[idx[end]] == v[idx[start]] {
			end++
		}
		avg := float64(start+end+1) / 2
		for k := start; k < end; k++ {
			ranks[idx[k]] = avg
		}
		start = end
	}

	return ranks
}

// RhoA compares two dissimilarity matrices by Spearman's rho without tie
// correction: 1 - 6*sum(d^2)/(n^3-n) over the ranked upper triangles.
// Pairs undefined in either matrix are skipped; fewer than two remaining pairs give NaN.
func RhoA(a, b *mat64.Dense) (float64, error) {
	x, y, err := pairedFinite(a, b)
	if err != nil {
		return math.NaN(), fmt.Errorf("[RhoA] %w", err)
	}

	n := float64(len(x))
	if n < 2 {
		return math.NaN(), nil
	}

	rx, ry := rank(x), rank(y)
	var sum float64
	for i := range rx {
		d := rx[i] - ry[i]
		sum += d * d
	}

	return 1 - 6*sum/(n*n*n-n), nil
}

// Corr compares two dissimilarity matrices by Pearson correlation of their upper triangles
func Corr(a, b *mat64.Dense) (float64, error) {
	x, y, err := pairedFinite(a, b)
	if err != nil {
		return math.NaN(), fmt.Errorf("[Corr] %w", err)
	}
	if len(x) < 2 {
		return math.NaN(), nil
	}

	return stat.Correlation(x, y, nil), nil
}

// Compare dispatches on the configured comparison method
func Compare(method string, a, b *mat64.Dense) (float64, error) {
	switch method {
	case config.CompareRhoA:
		return RhoA(a, b)
	case config.CompareCorr:
		return Corr(a, b)
	default:
		return math.NaN(), fmt.Errorf("[Compare] unknown method %q", method)
	}
}
