package calc

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// ErrLabelMismatch is returned when label vectors do not match the observation count
var ErrLabelMismatch = errors.New("label count does not match observations")

// foldMeans averages the observations of one condition per fold, channel by
// channel over finite values. A channel without finite values stays NaN.
func foldMeans(data *mat64.Dense, rows []int, folds []int) map[int][]float64 {
	_, cols := data.Dims()
	sums := make(map[int][]float64)
	counts := make(map[int][]int)

	for _, r := range rows {
		f := folds[r]
		if _, ok := sums[f]; !ok {
			sums[f] = make([]float64, cols)
			counts[f] = make([]int, cols)
		}
		for c := 0; c < cols; c++ {
			v := data.At(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sums[f][c] += v
			counts[f][c]++
		}
	}

	for f, s := range sums {
		for c := range s {
			if counts[f][c] == 0 {
				s[c] = math.NaN()
			} else {
				s[c] /= float64(counts[f][c])
			}
		}
	}

	return sums
}

func crossnobis(means []map[int][]float64, out *mat64.Dense, order <-chan int, wg *sync.WaitGroup) {
	n := len(means)

	for {
		from, ok := <-order
		if ok {
			for to := from + 1; to < n; to++ {
				d := crossnobisPair(means[from], means[to])
				out.Set(from, to, d)
				out.Set(to, from, d)
			}

			wg.Done()
		} else {
			break
		}
	}
}

// crossnobisPair estimates the squared distance between two conditions from
// the products of their difference vectors in distinct folds. Per channel,
// sum over k != l of d_k*d_l equals S^2 - Q with S the sum and Q the sum of
// squares of the finite differences, so each channel is weighted by the
// number of fold pairs it has data for.
func crossnobisPair(a, b map[int][]float64) float64 {
	var folds []int
	for f := range a {
		if _, ok := b[f]; ok {
			folds = append(folds, f)
		}
	}
	if len(folds) < 2 {
		return math.NaN()
	}
	sort.Ints(folds)

	cols := len(a[folds[0]])
	var num, den float64

	for c := 0; c < cols; c++ {
		var s, q float64
		var n int
		for _, f := range folds {
			d := a[f][c] - b[f][c]
			if math.IsNaN(d) {
				continue
			}
			s += d
			q += d * d
			n++
		}
		if n < 2 {
			continue
		}
		num += s*s - q
		den += float64(n * (n - 1))
	}

	if den == 0 {
		return math.NaN()
	}

	return num / den
}

// Crossnobis computes the cross-validated squared euclidean distance between
// every pair of conditions. data holds one observation per row and one
// channel per column; conds and folds label the rows. Missing values are
// tolerated by per-channel reweighting. Pairs without two shared folds with
// data come back as NaN. Conditions are returned in order of first appearance.
func (p *PipeLine) Crossnobis(data *mat64.Dense, conds []string, folds []int) (*mat64.Dense, []string, error) {
	rows, _ := data.Dims()
	if len(conds) != rows || len(folds) != rows {
		return nil, nil, fmt.Errorf("[Crossnobis] %w: %d observations, %d conds, %d folds",
			ErrLabelMismatch, rows, len(conds), len(folds))
	}

	groups := groupRows(conds)
	n := len(groups)

	means := make([]map[int][]float64, n)
	for i, g := range groups {
		means[i] = foldMeans(data, g.rows, folds)
	}

	out := mat64.NewDense(n, n, nil)
	p.dispatch(n, func(order <-chan int, wg *sync.WaitGroup) {
		crossnobis(means, out, order, wg)
	})

	return out, labels(groups), nil
}

func euclidean(data *mat64.Dense, groups []group, out *mat64.Dense, order <-chan int, wg *sync.WaitGroup) {
	n := len(groups)

	for {
		from, ok := <-order
		if ok {
			for to := from + 1; to < n; to++ {
				d := euclideanPair(data, groups[from].rows, groups[to].rows)
				out.Set(from, to, d)
				out.Set(to, from, d)
			}

			wg.Done()
		} else {
			break
		}
	}
}

// euclideanPair averages the squared channel difference over every pair of
// observations and every channel where both values are finite
func euclideanPair(data *mat64.Dense, a, b []int) float64 {
	_, cols := data.Dims()
	var sum float64
	var n int

	for _, i := range a {
		for _, j := range b {
			for c := 0; c < cols; c++ {
				d := data.At(i, c) - data.At(j, c)
				if math.IsNaN(d) || math.IsInf(d, 0) {
					continue
				}
				sum += d * d
				n++
			}
		}
	}

	if n == 0 {
		return math.NaN()
	}

	return sum / float64(n)
}

// Euclidean computes the squared euclidean distance per channel between every
// pair of conditions without cross-validation, weighting by the finite values
// available. Conditions are returned in order of first appearance.
func (p *PipeLine) Euclidean(data *mat64.Dense, conds []string) (*mat64.Dense, []string, error) {
	rows, _ := data.Dims()
	if len(conds) != rows {
		return nil, nil, fmt.Errorf("[Euclidean] %w: %d observations, %d conds", ErrLabelMismatch, rows, len(conds))
	}

	groups := groupRows(conds)
	n := len(groups)

	out := mat64.NewDense(n, n, nil)
	p.dispatch(n, func(order <-chan int, wg *sync.WaitGroup) {
		euclidean(data, groups, out, order, wg)
	})

	return out, labels(groups), nil
}
