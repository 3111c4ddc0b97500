package main

import (
	"fmt"
	"os"

	"github.com/KyungWonPark/GestureRDM/internal/config"
	"github.com/KyungWonPark/GestureRDM/internal/detect"
	"github.com/KyungWonPark/GestureRDM/internal/landmark"
	"github.com/KyungWonPark/GestureRDM/internal/logging"
	"github.com/KyungWonPark/GestureRDM/internal/video"
	"github.com/akamensky/argparse"
	"github.com/rs/zerolog/log"
)

func main() {
	parser := argparse.NewParser("extract", "Extract pose and hand landmarks from every gesture video of a directory")
	configFile := parser.String("c", "config", &argparse.Options{Help: "configuration file (default: ./gesture-rdm.yaml if present)"})
	inputDir := parser.String("i", "input", &argparse.Options{Help: "directory with the stimulus videos"})
	outputDir := parser.String("o", "output", &argparse.Options{Help: "directory for landmark arrays and annotated videos"})
	detector := parser.String("d", "detector", &argparse.Options{Help: "landmark detector executable"})
	noAnnotate := parser.Flag("", "no-annotate", &argparse.Options{Help: "do not write annotated videos"})
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

	ec := &cfg.Extract
	if *inputDir != "" {
		ec.InputDir = *inputDir
	}
	if *outputDir != "" {
		ec.OutputDir = *outputDir
	}
	if *detector != "" {
		ec.Detector.Binary = *detector
	}
	if *noAnnotate {
		ec.Annotate = false
	}

	det := detect.NewShmDetector(logging.WithComponent("detect"), detect.Params{
		Binary:        ec.Detector.Binary,
		Args:          ec.Detector.Args,
		PoseLandmarks: cfg.PoseLandmarks,
		HandLandmarks: cfg.HandLandmarks,
		MaxHands:      ec.Detector.MaxHands,
	})

	ex := landmark.NewExtractor(logging.WithComponent("extract"), landmark.Options{
		InputDir:      ec.InputDir,
		OutputDir:     ec.OutputDir,
		VideoExt:      ec.VideoExt,
		Annotate:      ec.Annotate,
		OutputSuffix:  ec.OutputSuffix,
		PoseLandmarks: cfg.PoseLandmarks,
		HandLandmarks: cfg.HandLandmarks,
	}, det, video.Media{Codec: ec.Codec})

	res, err := ex.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	if err := res.Save(ec.OutputDir); err != nil {
		log.Fatal().Err(err).Msg("Failed to save landmark arrays")
	}

	log.Info().Int("videos", len(res.Inputs)).Int("frames", res.Pose.Frames).
		Str("output", ec.OutputDir).Msg("Landmark extraction complete")
}
