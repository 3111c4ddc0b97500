package io

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/require"
)

func TestArrayKeepsShapeAndNaN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pose_landmarks.npy")
	shape := []int{2, 3, 4, 3}
	data := make([]float64, 2*3*4*3)
	for i := range data {
		data[i] = float64(i) / 7
	}
	data[5] = math.NaN()

	require.NoError(t, WriteArray(path, shape, data))

	got, gotShape, err := ReadArray(path)
	require.NoError(t, err)
	require.Equal(t, shape, gotShape)
	require.True(t, math.IsNaN(got[5]))
	got[5], data[5] = 0, 0
	require.Equal(t, data, got)
}

func TestWriteArrayRejectsShapeMismatch(t *testing.T) {
	err := WriteArray(filepath.Join(t.TempDir(), "x.npy"), []int{2, 2}, []float64{1, 2, 3})
	require.Error(t, err)
}

func TestNpytoMat64RequiresTwoDimensions(t *testing.T) {
	dir := t.TempDir()

	m := mat64.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	path := filepath.Join(dir, "m.npy")
	require.NoError(t, Mat64toNpy(path, m))

	got, err := NpytoMat64(path)
	require.NoError(t, err)
	require.True(t, mat64.Equal(m, got))

	path3 := filepath.Join(dir, "t.npy")
	require.NoError(t, WriteArray(path3, []int{1, 2, 3}, []float64{1, 2, 3, 4, 5, 6}))
	_, err = NpytoMat64(path3)
	require.Error(t, err)
}

func TestReadManifestLayouts(t *testing.T) {
	dir := t.TempDir()

	perRow := filepath.Join(dir, "rows.csv")
	require.NoError(t, WriteManifest(perRow, []string{"b.mp4", "a.mp4", "c.mp4"}))
	names, err := ReadManifest(perRow)
	require.NoError(t, err)
	require.Equal(t, []string{"b.mp4", "a.mp4", "c.mp4"}, names)

	oneRow := filepath.Join(dir, "row.csv")
	require.NoError(t, os.WriteFile(oneRow, []byte("b.mp4,a.mp4,c.mp4\r\n"), 0644))
	names, err = ReadManifest(oneRow)
	require.NoError(t, err)
	require.Equal(t, []string{"b.mp4", "a.mp4", "c.mp4"}, names)
}

func TestTableColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stimuli.csv")
	body := "\ufeffstimulus_id,german_umlaut\n1,Apfel\n2,Bär\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	header, rows, err := ReadTable(path)
	require.NoError(t, err)

	ids, err := Column(header, rows, "stimulus_id")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, ids)

	words, err := Column(header, rows, "german_umlaut")
	require.NoError(t, err)
	require.Equal(t, []string{"Apfel", "Bär"}, words)

	_, err = Column(header, rows, "english")
	require.Error(t, err)
}

func TestMat64toCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	m := mat64.NewDense(2, 2, []float64{0.5, 1, math.NaN(), -2})
	require.NoError(t, Mat64toCSV(path, []string{"a", "b"}, m))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a,b\n0.5,1\nNaN,-2\n", string(raw))
}

func TestPrepareOutputOverwritePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "out.hdf5")

	require.NoError(t, PrepareOutput(path, false))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	require.ErrorIs(t, PrepareOutput(path, false), ErrFileExists)
	require.NoError(t, PrepareOutput(path, true))

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckOutputLeavesFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landmark_RDM_binned.hdf5")

	exists, err := CheckOutput(path, false)
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	exists, err = CheckOutput(path, false)
	require.ErrorIs(t, err, ErrFileExists)
	require.True(t, exists)

	exists, err = CheckOutput(path, true)
	require.NoError(t, err)
	require.True(t, exists)
	require.FileExists(t, path)
}

func TestRequireFiles(t *testing.T) {
	err := RequireFiles(filepath.Join(t.TempDir(), "missing.npy"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRDMFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landmark_RDM_binned.hdf5")
	rdm := RDMFile{
		Measure:    "crossnobis",
		Descriptor: "conds",
		Labels:     []string{"apfel.mp4", "baum.mp4", "zug.mp4"},
		Dissimilarities: mat64.NewDense(3, 3, []float64{
			0, 1.5, math.NaN(),
			1.5, 0, 2,
			math.NaN(), 2, 0,
		}),
	}

	require.NoError(t, SaveRDM(path, rdm, false))
	require.ErrorIs(t, SaveRDM(path, rdm, false), ErrFileExists)
	require.NoError(t, SaveRDM(path, rdm, true))

	got, err := LoadRDM(path, "conds")
	require.NoError(t, err)
	require.Equal(t, rdm.Measure, got.Measure)
	require.Equal(t, rdm.Labels, got.Labels)
	require.Equal(t, 2.0, got.Dissimilarities.At(1, 2))
	require.True(t, math.IsNaN(got.Dissimilarities.At(0, 2)))
}
