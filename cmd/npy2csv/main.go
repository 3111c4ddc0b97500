package main

import (
	"fmt"
	"os"

	"github.com/KyungWonPark/GestureRDM/internal/io"
	"github.com/KyungWonPark/GestureRDM/internal/logging"
	"github.com/akamensky/argparse"
	"github.com/gonum/matrix/mat64"
	"github.com/rs/zerolog/log"
)

func main() {
	parser := argparse.NewParser("npy2csv", "Convert an .npy array to csv; trailing axes are flattened into columns")
	input := parser.String("i", "input", &argparse.Options{Help: "input .npy file", Required: true})
	output := parser.String("o", "output", &argparse.Options{Help: "output csv (default: <input>.csv)"})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(1)
	}

	logging.Init(false)

	data, shape, err := io.ReadArray(*input)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read npy file")
	}
	if len(shape) == 0 || len(data) == 0 {
		log.Fatal().Ints("shape", shape).Msg("Nothing to convert")
	}
	log.Info().Ints("shape", shape).Msg("Reading npy file complete")

	rows := shape[0]
	cols := len(data) / rows

	dest := *output
	if dest == "" {
		dest = *input + ".csv"
	}

	if err := io.Mat64toCSV(dest, nil, mat64.NewDense(rows, cols, data)); err != nil {
		log.Fatal().Err(err).Msg("Failed to write csv")
	}
}
