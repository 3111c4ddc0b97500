package calc

import (
	"math"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// SymCheck checks symmetry. Entries undefined on both sides count as equal.
func (p *PipeLine) SymCheck(matrix *mat64.Dense, pre float64) bool {
	rows, cols := matrix.Dims()
	if rows != cols {
		return false
	}

	isSymm := make([]bool, rows)
	p.dispatch(rows, func(order <-chan int, wg *sync.WaitGroup) {
		symCheck(matrix, isSymm, math.Abs(pre), order, wg)
	})

	symm := true
	for i := 0; i < rows; i++ {
		symm = symm && isSymm[i]
	}

	return symm
}

func symCheck(matrix *mat64.Dense, isSymm []bool, pre float64, order <-chan int, wg *sync.WaitGroup) {
	_, cols := matrix.Dims()

	for {
		index, ok := <-order
		if ok {
			isSymm[index] = true
			for i := index; i < cols; i++ {
				a, b := matrix.At(index, i), matrix.At(i, index)
				isSame := (math.IsNaN(a) && math.IsNaN(b)) || math.Abs(a-b) < pre
				if !isSame {
					isSymm[index] = false
					break
				}
			}

			wg.Done()
		} else {
			break
		}
	}
}

// Undefined counts off-diagonal NaN entries
func Undefined(matrix *mat64.Dense) int {
	rows, cols := matrix.Dims()

	var n int
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if i != j && math.IsNaN(matrix.At(i, j)) {
				n++
			}
		}
	}

	return n
}
