package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/KyungWonPark/GestureRDM/internal/calc"
	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/KyungWonPark/GestureRDM/internal/io"
	"github.com/KyungWonPark/GestureRDM/internal/landmark"
	"github.com/KyungWonPark/GestureRDM/internal/logging"
	"github.com/KyungWonPark/GestureRDM/internal/rsa"
	"github.com/akamensky/argparse"
	"github.com/rs/zerolog/log"
)

const (
	assembledFile = "landmarks_by_word_and_frame.npy"
	rdmFile       = "landmark_RDM_binned.hdf5"
	movieFile     = "landmark_rdm_movie.csv"
	usedConfig    = "landmark_rdm_config.yaml"
)

func loadArray(dir, name string, landmarks int) (*landmark.Array, error) {
	data, shape, err := io.ReadArray(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}

	a, err := landmark.FromData(data, shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if a.Landmarks != landmarks {
		return nil, fmt.Errorf("%s: %w: %d landmarks, configured %d",
			name, landmark.ErrSchemaMismatch, a.Landmarks, landmarks)
	}

	return a, nil
}

func main() {
	parser := argparse.NewParser("landmarkrdm", "Build the binned landmark RDM of the gesture videos")
	configFile := parser.String("c", "config", &argparse.Options{Help: "configuration file (default: ./gesture-rdm.yaml if present)"})
	inputDir := parser.String("i", "input", &argparse.Options{Help: "directory with the extracted landmark arrays"})
	outputDir := parser.String("o", "output", &argparse.Options{Help: "directory for the RDM and the assembled array"})
	method := parser.Selector("m", "method", []string{config.MethodCrossnobis, config.MethodEuclidean},
		&argparse.Options{Help: "distance estimator"})
	overwrite := parser.Flag("", "overwrite", &argparse.Options{Help: "replace an existing RDM file"})
	embedding := parser.String("e", "embedding", &argparse.Options{Help: "square .npy RDM to compare the landmark RDM with; rows must follow the sorted video file names"})
	movie := parser.Flag("", "movie", &argparse.Options{Help: "compare a per-frame RDM with the embedding RDM"})
	workers := parser.Int("w", "workers", &argparse.Options{Help: "number of workers (0: all CPUs)", Default: -1})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "debug logging"})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(1)
	}

	logging.Init(*verbose)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	rc := &cfg.RDM
	if *inputDir != "" {
		rc.InputDir = *inputDir
	}
	if *outputDir != "" {
		rc.OutputDir = *outputDir
	}
	if *method != "" {
		rc.Method = *method
	}
	if *overwrite {
		rc.Overwrite = true
	}
	if *embedding != "" {
		rc.EmbeddingRDM = *embedding
	}
	if *movie {
		rc.Movie = true
	}
	if *workers >= 0 {
		rc.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := logging.WithComponent("rsa")

	out := filepath.Join(rc.OutputDir, rdmFile)
	if _, err := io.CheckOutput(out, rc.Overwrite); err != nil {
		log.Fatal().Err(err).Msg("Refusing to replace the RDM")
	}

	if err := io.RequireFiles(
		filepath.Join(rc.InputDir, landmark.PoseFile),
		filepath.Join(rc.InputDir, landmark.LeftFile),
		filepath.Join(rc.InputDir, landmark.RightFile),
		filepath.Join(rc.InputDir, landmark.InputsFile),
	); err != nil {
		log.Fatal().Err(err).Msg("Missing extractor output")
	}

	pose, err := loadArray(rc.InputDir, landmark.PoseFile, cfg.PoseLandmarks)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load pose landmarks")
	}
	lh, err := loadArray(rc.InputDir, landmark.LeftFile, cfg.HandLandmarks)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load left hand landmarks")
	}
	rh, err := loadArray(rc.InputDir, landmark.RightFile, cfg.HandLandmarks)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load right hand landmarks")
	}
	conds, err := io.ReadManifest(filepath.Join(rc.InputDir, landmark.InputsFile))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load video labels")
	}

	ds, err := rsa.Prepare(pose, lh, rh, conds, cfg.PoseSubset, cfg.FPS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble landmark dataset")
	}
	logger.Info().Str("modality", ds.Modality).Ints("shape", ds.Measurements.Shape()).
		Msg("assembled (condition, channel, frame)")

	if err := os.MkdirAll(rc.OutputDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	// saved as loaded, before sorting
	if err := io.WriteArray(filepath.Join(rc.OutputDir, assembledFile),
		ds.Measurements.Shape(), ds.Measurements.Data); err != nil {
		log.Fatal().Err(err).Msg("Failed to save assembled array")
	}

	ds.SortByCondition()
	binned := ds.TimeAsObservations()

	logger.Debug().Int("observations", len(binned.Times)).Int("channels", len(binned.Channels)).
		Msg("binned frames into observations")

	pl := calc.Init(rc.Workers)
	logger.Debug().Int("workers", pl.Workers()).Str("method", rc.Method).Msg("building RDM")
	rdm, err := rsa.Build(pl, binned, rc.Method)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build RDM")
	}
	if n := rdm.Undefined(); n > 0 {
		logger.Warn().Int("entries", n).Msg("RDM has undefined dissimilarities; some conditions share no valid frames")
	}

	if err := rdm.Save(out, rc.Overwrite); err != nil {
		log.Fatal().Err(err).Msg("Failed to save RDM")
	}
	logger.Info().Str("method", rdm.Measure).Int("conditions", len(rdm.Conds)).Str("file", out).Msg("saved RDM")

	if err := cfg.Save(filepath.Join(rc.OutputDir, usedConfig)); err != nil {
		log.Fatal().Err(err).Msg("Failed to save configuration")
	}

	if rc.EmbeddingRDM == "" {
		if rc.Movie {
			log.Fatal().Msg("The RDM movie needs an embedding RDM to compare with")
		}
		return
	}

	ref, err := io.NpytoMat64(rc.EmbeddingRDM)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load embedding RDM")
	}
	if err := rsa.CheckReference(ref, rdm.Conds); err != nil {
		log.Fatal().Err(err).Str("embedding", rc.EmbeddingRDM).Msg("Embedding RDM does not match the landmark RDM")
	}

	r, err := calc.Compare(rc.Comparison, ref, rdm.Dissimilarities)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compare RDMs")
	}
	logger.Info().Str("comparison", rc.Comparison).Float64("r", r).Msg("landmark vs embedding RDM")

	if !rc.Movie {
		return
	}

	rs, err := rsa.Movie(pl, ds, ref, rc.Comparison)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build RDM movie")
	}

	rows := make([][]string, len(rs))
	for i, v := range rs {
		rows[i] = []string{
			strconv.FormatFloat(ds.Times[i], 'g', -1, 64),
			strconv.FormatFloat(v, 'g', -1, 64),
		}
	}
	if err := io.WriteTable(filepath.Join(rc.OutputDir, movieFile), []string{"time", "r"}, rows); err != nil {
		log.Fatal().Err(err).Msg("Failed to save RDM movie")
	}
	logger.Info().Int("frames", len(rs)).Msg("saved RDM movie")
}
