package main

import (
	"fmt"
	"os"

	"github.com/KyungWonPark/GestureRDM/internal/calc"
	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/KyungWonPark/GestureRDM/internal/embed"
	"github.com/KyungWonPark/GestureRDM/internal/logging"
	"github.com/akamensky/argparse"
	"github.com/rs/zerolog/log"
)

func main() {
	parser := argparse.NewParser("embedrdm", "Cosine dissimilarities of the stimulus words' fastText vectors")
	configFile := parser.String("c", "config", &argparse.Options{Help: "configuration file (default: ./gesture-rdm.yaml if present)"})
	stimuli := parser.String("s", "stimuli", &argparse.Options{Help: "stimulus list (csv with header)"})
	vectors := parser.String("m", "vectors", &argparse.Options{Help: "fastText .vec or .vec.gz file"})
	outputDir := parser.String("o", "output", &argparse.Options{Help: "output directory"})
	compare := parser.Flag("", "compare-dims", &argparse.Options{Help: "compare reduced dimensionalities with the full model"})
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

	ec := &cfg.Embed
	if *stimuli != "" {
		ec.StimuliCSV = *stimuli
	}
	if *vectors != "" {
		ec.Vectors = *vectors
	}
	if *outputDir != "" {
		ec.OutputDir = *outputDir
	}
	if *compare {
		ec.CompareDims.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if ec.StimuliCSV == "" {
		log.Fatal().Msg("No stimulus list given")
	}

	b := embed.NewBuilder(logging.WithComponent("embed"), calc.Init(cfg.RDM.Workers), *ec)
	if err := b.Run(); err != nil {
		log.Fatal().Err(err).Msg("Embedding dissimilarities failed")
	}

	log.Info().Str("output", ec.OutputDir).Msg("Embedding dissimilarities complete")
}
