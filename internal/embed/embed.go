// Package embed turns the stimulus words into word vectors and cosine
// dissimilarity matrices, at full and at reduced dimensionality.
package embed

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/KyungWonPark/GestureRDM/internal/calc"
	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/KyungWonPark/GestureRDM/internal/io"
	"github.com/gonum/matrix/mat64"
	"github.com/rs/zerolog"
)

// Output names
const (
	DescriptorsFile = "ft_word_vector_descriptors.csv"
	ComparisonFile  = "ft_dim_comparison.csv"
)

// VectorsFile is the csv of the word vectors at one dimensionality
func VectorsFile(dim string) string { return "ft_word_vectors_" + dim + ".csv" }

// DissimilarityFile is the npy of the cosine dissimilarities at one dimensionality
func DissimilarityFile(dim string) string { return "ft_" + dim + "_cosine_dissimilarities.npy" }

// Stimulus is one row of the stimulus list
type Stimulus struct {
	ID   string
	Word string
}

// ReadStimuli reads the id and word columns of the stimulus list
func ReadStimuli(path, idColumn, wordColumn string) ([]Stimulus, error) {
	header, rows, err := io.ReadTable(path)
	if err != nil {
		return nil, err
	}

	ids, err := io.Column(header, rows, idColumn)
	if err != nil {
		return nil, err
	}
	words, err := io.Column(header, rows, wordColumn)
	if err != nil {
		return nil, err
	}

	out := make([]Stimulus, len(rows))
	for i := range rows {
		out[i] = Stimulus{ID: ids[i], Word: words[i]}
	}

	return out, nil
}

// Builder writes the embedding outputs of one configuration
type Builder struct {
	cfg config.EmbedConfig
	pl  *calc.PipeLine
	log zerolog.Logger
}

// NewBuilder returns a builder
func NewBuilder(log zerolog.Logger, pl *calc.PipeLine, cfg config.EmbedConfig) *Builder {
	return &Builder{cfg: cfg, pl: pl, log: log}
}

// Run reads the stimuli and the vector file and writes every output into the output directory
func (b *Builder) Run() error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("[Run] failed to create %s: %w", b.cfg.OutputDir, err)
	}

	stimuli, err := ReadStimuli(b.cfg.StimuliCSV, b.cfg.IDColumn, b.cfg.WordColumn)
	if err != nil {
		return err
	}
	if len(stimuli) < 2 {
		return fmt.Errorf("[Run] %s lists %d words, need at least two", b.cfg.StimuliCSV, len(stimuli))
	}

	words := make([]string, len(stimuli))
	desc := make([][]string, len(stimuli))
	for i, s := range stimuli {
		words[i] = s.Word
		desc[i] = []string{s.ID, s.Word}
	}
	if err := io.WriteTable(b.out(DescriptorsFile), []string{"stimulus_id", "word"}, desc); err != nil {
		return err
	}

	b.log.Info().Str("vectors", b.cfg.Vectors).Int("words", len(words)).Msg("loading word vectors")
	model, err := Load(b.cfg.Vectors, words, b.cfg.PCAFitWords)
	if err != nil {
		return err
	}
	vectors, err := model.Lookup(words)
	if err != nil {
		return err
	}

	full := Rows(vectors)
	fullLabel := strconv.Itoa(model.Dim)
	fullRDM, err := b.write(fullLabel, full)
	if err != nil {
		return err
	}

	if len(b.cfg.TargetDims) == 0 && !b.cfg.CompareDims.Enabled {
		return nil
	}

	pca, err := FitPCA(append(append([][]float64{}, model.Leading...), vectors...))
	if err != nil {
		return err
	}
	b.log.Debug().Int("fit", len(model.Leading)+len(vectors)).Int("components", pca.Components()).Msg("fitted PCA")

	for _, k := range b.cfg.TargetDims {
		reduced, err := pca.Project(vectors, k)
		if err != nil {
			return err
		}
		if _, err := b.write(fmt.Sprintf("%03d", k), reduced); err != nil {
			return err
		}
	}

	if b.cfg.CompareDims.Enabled {
		return b.compareDims(pca, vectors, fullRDM, model.Dim)
	}

	return nil
}

func (b *Builder) out(name string) string {
	return filepath.Join(b.cfg.OutputDir, name)
}

// write stores the vectors and their cosine dissimilarities under a dimensionality label
func (b *Builder) write(label string, vectors *mat64.Dense) (*mat64.Dense, error) {
	_, dim := vectors.Dims()
	header := make([]string, dim)
	for i := range header {
		header[i] = strconv.Itoa(i)
	}
	if err := io.Mat64toCSV(b.out(VectorsFile(label)), header, vectors); err != nil {
		return nil, err
	}

	rdm := b.pl.CosineDissimilarity(vectors)
	if n := calc.Undefined(rdm); n > 0 {
		b.log.Warn().Str("dim", label).Int("undefined", n).Msg("zero vectors in cosine dissimilarities")
	}
	if err := io.Mat64toNpy(b.out(DissimilarityFile(label)), rdm); err != nil {
		return nil, err
	}

	b.log.Info().Str("dim", label).Msg("wrote cosine dissimilarities")

	return rdm, nil
}

// compareDims relates the RDM of each reduced dimensionality to the full one
func (b *Builder) compareDims(pca *PCA, vectors [][]float64, full *mat64.Dense, fullDim int) error {
	cd := b.cfg.CompareDims
	var rows [][]string

	for k := cd.From; k <= cd.To; k += cd.Step {
		if k > pca.Components() || k > fullDim {
			b.log.Warn().Int("dim", k).Int("components", pca.Components()).Msg("skipping dimensionality beyond model")
			continue
		}

		reduced, err := pca.Project(vectors, k)
		if err != nil {
			return err
		}
		rdm := b.pl.CosineDissimilarity(reduced)

		corr, err := calc.Corr(full, rdm)
		if err != nil {
			return err
		}
		rhoA, err := calc.RhoA(full, rdm)
		if err != nil {
			return err
		}

		b.log.Info().Int("dim", k).Float64("corr", corr).Float64("rho_a", rhoA).
			Msgf("similarity between %d-D and %d-D based RDMs", fullDim, k)

		rows = append(rows, []string{
			strconv.Itoa(k),
			strconv.FormatFloat(corr, 'g', -1, 64),
			strconv.FormatFloat(rhoA, 'g', -1, 64),
		})
	}

	return io.WriteTable(b.out(ComparisonFile), []string{"dim", "corr", "rho_a"}, rows)
}
