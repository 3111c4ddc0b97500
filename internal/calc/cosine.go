package calc

import (
	"math"
	"sync"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

func cosine(vectors *mat64.Dense, norms []float64, out *mat64.Dense, order <-chan int, wg *sync.WaitGroup) {
	rows, _ := vectors.Dims()

	for {
		from, ok := <-order
		if ok {
			a := vectors.RawRowView(from)
			for to := from; to < rows; to++ {
				var d float64
				switch {
				case norms[from] == 0 || norms[to] == 0:
					d = math.NaN()
				case to == from:
					d = 0
				default:
					d = 1 - floats.Dot(a, vectors.RawRowView(to))/(norms[from]*norms[to])
				}

				out.Set(from, to, d)
				out.Set(to, from, d)
			}

			wg.Done()
		} else {
			break
		}
	}
}

// CosineDissimilarity returns 1 - cos(a, b) for every pair of rows.
// Rows of zero length have no direction and yield NaN, on the diagonal too.
func (p *PipeLine) CosineDissimilarity(vectors *mat64.Dense) *mat64.Dense {
	rows, _ := vectors.Dims()

	norms := make([]float64, rows)
	for i := range norms {
		norms[i] = floats.Norm(vectors.RawRowView(i), 2)
	}

	out := mat64.NewDense(rows, rows, nil)
	p.dispatch(rows, func(order <-chan int, wg *sync.WaitGroup) {
		cosine(vectors, norms, out, order, wg)
	})

	return out
}
