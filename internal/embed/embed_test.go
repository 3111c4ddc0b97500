package embed

import (
	"compress/gzip"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KyungWonPark/GestureRDM/internal/calc"
	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/KyungWonPark/GestureRDM/internal/io"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testVec = `5 3
der 1 0 0
die 0 1 0
haus 1 1 0
baum 0 0 1
auto 1 0 1
`

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "model.vec", testVec)

	m, err := Load(path, []string{"auto", "haus"}, 2)
	require.NoError(t, err)
	require.Equal(t, 3, m.Dim)
	require.Equal(t, [][]float64{{1, 0, 0}, {0, 1, 0}}, m.Leading)

	vecs, err := m.Lookup([]string{"haus", "auto"})
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 1, 0}, {1, 0, 1}}, vecs)

	_, err = m.Lookup([]string{"haus", "katze", "hund"})
	require.ErrorIs(t, err, ErrUnknownWord)
	require.Contains(t, err.Error(), "katze, hund")
}

func TestLoadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.vec.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(testVec))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	m, err := Load(path, []string{"baum"}, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 1}, m.Vectors["baum"])
	require.Empty(t, m.Leading)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "a.vec", "not a header line\n"), nil, 0)
	require.Error(t, err)

	_, err = Load(writeFile(t, dir, "b.vec", "1 3\nhaus 1 2\n"), []string{"haus"}, 0)
	require.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.vec"), nil, 0)
	require.Error(t, err)
}

func TestPCAProject(t *testing.T) {
	// points along (1, 1) with a little spread across
	fit := [][]float64{{0, 0.1}, {1, 0.9}, {2, 2.1}, {3, 2.9}, {4, 4}}

	pca, err := FitPCA(fit)
	require.NoError(t, err)
	require.Equal(t, 2, pca.Components())

	out, err := pca.Project([][]float64{{1, 1}, {2, 2}}, 1)
	require.NoError(t, err)
	r, c := out.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 1, c)
	// uncentred projection onto a unit direction close to (1, 1)/sqrt(2)
	require.InDelta(t, math.Sqrt2, math.Abs(out.At(0, 0)), 1e-2)
	require.InDelta(t, 2*math.Abs(out.At(0, 0)), math.Abs(out.At(1, 0)), 1e-9)

	_, err = pca.Project([][]float64{{1, 1}}, 3)
	require.Error(t, err)
	_, err = pca.Project([][]float64{{1, 1, 1}}, 1)
	require.Error(t, err)

	_, err = FitPCA([][]float64{{1, 2}})
	require.Error(t, err)
}

func TestBuilderRun(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	cfg := config.Default().Embed
	cfg.StimuliCSV = writeFile(t, dir, "stimuli.csv", "\ufeffstimulus_id,german_umlaut\n1,haus\n2,baum\n3,auto\n")
	cfg.Vectors = writeFile(t, dir, "model.vec", testVec)
	cfg.PCAFitWords = 2
	cfg.TargetDims = []int{2}
	cfg.CompareDims = config.CompareConfig{Enabled: true, From: 1, To: 4, Step: 1}
	cfg.OutputDir = out

	require.NoError(t, NewBuilder(zerolog.Nop(), calc.Init(2), cfg).Run())

	header, rows, err := io.ReadTable(filepath.Join(out, DescriptorsFile))
	require.NoError(t, err)
	require.Equal(t, []string{"stimulus_id", "word"}, header)
	require.Equal(t, [][]string{{"1", "haus"}, {"2", "baum"}, {"3", "auto"}}, rows)

	full, err := io.NpytoMat64(filepath.Join(out, DissimilarityFile("3")))
	require.NoError(t, err)
	require.InDelta(t, 0, full.At(0, 0), 1e-12)
	require.InDelta(t, 1, full.At(0, 1), 1e-12)
	require.InDelta(t, 0.5, full.At(0, 2), 1e-12)
	require.InDelta(t, 1-1/math.Sqrt2, full.At(1, 2), 1e-12)

	header, rows, err = io.ReadTable(filepath.Join(out, VectorsFile("3")))
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1", "2"}, header)
	require.Equal(t, []string{"1", "1", "0"}, rows[0])

	reduced, err := io.NpytoMat64(filepath.Join(out, DissimilarityFile("002")))
	require.NoError(t, err)
	r, c := reduced.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)
	require.FileExists(t, filepath.Join(out, VectorsFile("002")))

	// dims 1..3 fit the model, 4 is skipped
	header, rows, err = io.ReadTable(filepath.Join(out, ComparisonFile))
	require.NoError(t, err)
	require.Equal(t, []string{"dim", "corr", "rho_a"}, header)
	require.Len(t, rows, 3)
	require.Equal(t, "3", rows[2][0])
	require.True(t, strings.HasPrefix(rows[2][1], "1") || strings.HasPrefix(rows[2][1], "0.99"), rows[2][1])
}

func TestBuilderUnknownWord(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default().Embed
	cfg.StimuliCSV = writeFile(t, dir, "stimuli.csv", "stimulus_id,german_umlaut\n1,haus\n2,katze\n")
	cfg.Vectors = writeFile(t, dir, "model.vec", testVec)
	cfg.OutputDir = dir

	err := NewBuilder(zerolog.Nop(), calc.Init(1), cfg).Run()
	require.ErrorIs(t, err, ErrUnknownWord)
}
