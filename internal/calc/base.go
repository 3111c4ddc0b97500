package calc

import (
	"runtime"
	"sync"
)

// PipeLine represents a compute pipeline. Kernels hand row indices to a
// fixed number of workers; each worker owns the output cells of its rows.
type PipeLine struct {
	numWorker int
}

// Init returns a compute PipeLine. workers <= 0 uses every CPU.
func Init(workers int) *PipeLine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &PipeLine{numWorker: workers}
}

// Workers returns the number of workers per kernel
func (p *PipeLine) Workers() int {
	return p.numWorker
}

// dispatch feeds rows [0, rows) to the workers and waits until every row is done
func (p *PipeLine) dispatch(rows int, worker func(order <-chan int, wg *sync.WaitGroup)) {
	order := make(chan int, p.numWorker)
	var wg sync.WaitGroup

	wg.Add(rows)

	for i := 0; i < p.numWorker; i++ {
		go worker(order, &wg)
	}

	for i := 0; i < rows; i++ {
		order <- i
	}

	wg.Wait()
	close(order)
}

// group is the set of observation rows sharing one condition label
type group struct {
	label string
	rows  []int
}

// groupRows groups observations by label, in order of first appearance
func groupRows(conds []string) []group {
	index := make(map[string]int)
	var groups []group

	for row, c := range conds {
		i, ok := index[c]
		if !ok {
			i = len(groups)
			index[c] = i
			groups = append(groups, group{label: c})
		}
		groups[i].rows = append(groups[i].rows, row)
	}

	return groups
}

func labels(groups []group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.label
	}

	return out
}
