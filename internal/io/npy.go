package io

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
)

// WriteArray writes a row-major float64 array of the given shape as a numpy npy file
func WriteArray(path string, shape []int, data []float64) error {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		return fmt.Errorf("[WriteArray] %s: shape %v holds %d values, got %d", path, shape, n, len(data))
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("[WriteArray] failed to open %s: %w", path, err)
	}
	w.Shape = shape
	w.Version = 2

	// gonpy closes the file after writing
	if err := w.WriteFloat64(data); err != nil {
		return fmt.Errorf("[WriteArray] failed to write %s: %w", path, err)
	}

	return nil
}

// ReadArray reads a float64 numpy npy file, returning its row-major data and shape
func ReadArray(path string) ([]float64, []int, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("[ReadArray] failed to open %s: %w", path, err)
	}
	if r.ColumnMajor {
		return nil, nil, fmt.Errorf("[ReadArray] %s: fortran-ordered arrays are not supported", path)
	}

	data, err := r.GetFloat64()
	if err != nil {
		return nil, nil, fmt.Errorf("[ReadArray] failed to read %s: %w", path, err)
	}

	shape := make([]int, len(r.Shape))
	copy(shape, r.Shape)

	return data, shape, nil
}

// Mat64toNpy writes mat64 matrix to Python numpy npy binary file
func Mat64toNpy(path string, matrix *mat64.Dense) error {
	rows, cols := matrix.Dims()

	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, matrix.RawRowView(i)...)
	}

	return WriteArray(path, []int{rows, cols}, data)
}

// NpytoMat64 reads a two-dimensional numpy npy file as mat64 matrix
func NpytoMat64(path string) (*mat64.Dense, error) {
	data, shape, err := ReadArray(path)
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("[NpytoMat64] %s: expected 2 dimensions, got shape %v", path, shape)
	}
	if shape[0] == 0 || shape[1] == 0 {
		return nil, fmt.Errorf("[NpytoMat64] %s: empty matrix %v", path, shape)
	}

	return mat64.NewDense(shape[0], shape[1], data), nil
}
