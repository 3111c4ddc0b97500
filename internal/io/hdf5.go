package io

import (
	"bytes"
	"fmt"

	"github.com/gonum/matrix/mat64"
	"gonum.org/v1/hdf5"
)

// dataset names inside an RDM file
const (
	rdmDissimilarities = "dissimilarities"
	rdmMeasure         = "dissimilarity_measure"
	rdmDescriptors     = "pattern_descriptors"
)

// RDMFile is the content of a persisted dissimilarity matrix
type RDMFile struct {
	// Measure names the distance estimator, eg: "crossnobis"
	Measure string
	// Descriptor names the pattern descriptor the labels belong to, eg: "conds"
	Descriptor string
	// Labels holds one label per row/column of Dissimilarities
	Labels []string
	// Dissimilarities is the square matrix
	Dissimilarities *mat64.Dense
}

// SaveRDM writes an RDM as HDF5. An existing file is only replaced when overwrite is set.
func SaveRDM(path string, rdm RDMFile, overwrite bool) error {
	rows, cols := rdm.Dissimilarities.Dims()
	if rows != cols {
		return fmt.Errorf("[SaveRDM] dissimilarities must be square, got %d by %d", rows, cols)
	}
	if len(rdm.Labels) != rows {
		return fmt.Errorf("[SaveRDM] %d labels for %d conditions", len(rdm.Labels), rows)
	}

	if err := PrepareOutput(path, overwrite); err != nil {
		return err
	}

	f, err := hdf5.CreateFile(path, hdf5.F_ACC_EXCL)
	if err != nil {
		return fmt.Errorf("[SaveRDM] failed to create %s: %w", path, err)
	}
	defer f.Close()

	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, rdm.Dissimilarities.RawRowView(i)...)
	}
	if err := writeFloat64(f, rdmDissimilarities, []uint{uint(rows), uint(cols)}, data); err != nil {
		return fmt.Errorf("[SaveRDM] %s: %w", path, err)
	}

	if err := writeStrings(f, rdmMeasure, []string{rdm.Measure}); err != nil {
		return fmt.Errorf("[SaveRDM] %s: %w", path, err)
	}

	g, err := f.CreateGroup(rdmDescriptors)
	if err != nil {
		return fmt.Errorf("[SaveRDM] %s: failed to create group: %w", path, err)
	}
	defer g.Close()

	if err := writeStrings(g, rdm.Descriptor, rdm.Labels); err != nil {
		return fmt.Errorf("[SaveRDM] %s: %w", path, err)
	}

	return nil
}

// LoadRDM reads an RDM written by SaveRDM
func LoadRDM(path, descriptor string) (RDMFile, error) {
	rdm := RDMFile{Descriptor: descriptor}

	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return rdm, fmt.Errorf("[LoadRDM] failed to open %s: %w", path, err)
	}
	defer f.Close()

	data, dims, err := readFloat64(f, rdmDissimilarities)
	if err != nil {
		return rdm, fmt.Errorf("[LoadRDM] %s: %w", path, err)
	}
	if len(dims) != 2 || dims[0] != dims[1] || dims[0] == 0 {
		return rdm, fmt.Errorf("[LoadRDM] %s: dissimilarities have shape %v", path, dims)
	}
	rdm.Dissimilarities = mat64.NewDense(int(dims[0]), int(dims[1]), data)

	measure, err := readStrings(f, rdmMeasure)
	if err != nil {
		return rdm, fmt.Errorf("[LoadRDM] %s: %w", path, err)
	}
	if len(measure) > 0 {
		rdm.Measure = measure[0]
	}

	g, err := f.OpenGroup(rdmDescriptors)
	if err != nil {
		return rdm, fmt.Errorf("[LoadRDM] %s: failed to open group: %w", path, err)
	}
	defer g.Close()

	if rdm.Labels, err = readStrings(g, descriptor); err != nil {
		return rdm, fmt.Errorf("[LoadRDM] %s: %w", path, err)
	}

	return rdm, nil
}

// location is the part of the hdf5 API shared by files and groups
type location interface {
	CreateDataset(name string, dtype *hdf5.Datatype, dspace *hdf5.Dataspace) (*hdf5.Dataset, error)
	OpenDataset(name string) (*hdf5.Dataset, error)
}

func writeFloat64(loc location, name string, dims []uint, data []float64) error {
	dspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("dataspace for %s: %w", name, err)
	}
	defer dspace.Close()

	dset, err := loc.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, dspace)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", name, err)
	}
	defer dset.Close()

	if err := dset.Write(&data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	return nil
}

func readFloat64(loc location, name string) ([]float64, []uint, error) {
	dset, err := loc.OpenDataset(name)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	defer dset.Close()

	dspace := dset.Space()
	defer dspace.Close()

	dims, _, err := dspace.SimpleExtentDims()
	if err != nil {
		return nil, nil, fmt.Errorf("dims of %s: %w", name, err)
	}

	data := make([]float64, dspace.SimpleExtentNPoints())
	if err := dset.Read(&data); err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return data, dims, nil
}

// Strings are stored as a zero padded (count, width) uint8 dataset, which any
// hdf5 reader can decode without variable length string support.
func writeStrings(loc location, name string, values []string) error {
	width := 1
	for _, v := range values {
		if len(v) > width {
			width = len(v)
		}
	}

	buf := make([]uint8, len(values)*width)
	for i, v := range values {
		copy(buf[i*width:], v)
	}

	dspace, err := hdf5.CreateSimpleDataspace([]uint{uint(len(values)), uint(width)}, nil)
	if err != nil {
		return fmt.Errorf("dataspace for %s: %w", name, err)
	}
	defer dspace.Close()

	dset, err := loc.CreateDataset(name, hdf5.T_NATIVE_UINT8, dspace)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", name, err)
	}
	defer dset.Close()

	if err := dset.Write(&buf); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	return nil
}

func readStrings(loc location, name string) ([]string, error) {
	dset, err := loc.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	defer dset.Close()

	dspace := dset.Space()
	defer dspace.Close()

	dims, _, err := dspace.SimpleExtentDims()
	if err != nil {
		return nil, fmt.Errorf("dims of %s: %w", name, err)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("%s: expected 2 dimensions, got %v", name, dims)
	}

	buf := make([]uint8, dspace.SimpleExtentNPoints())
	if err := dset.Read(&buf); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	count, width := int(dims[0]), int(dims[1])
	values := make([]string, count)
	for i := 0; i < count; i++ {
		values[i] = string(bytes.TrimRight(buf[i*width:(i+1)*width], "\x00"))
	}

	return values, nil
}
