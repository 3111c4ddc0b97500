package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Coordinates is the number of coordinate axes per landmark (x, y, z)
const Coordinates = 3

// Config holds the settings shared by every research step
type Config struct {
	// FPS is the sampling rate of the stimulus videos, used for the timing vector
	FPS float64 `yaml:"fps"`
	// PoseLandmarks is the number of landmarks the pose model reports per frame
	PoseLandmarks int `yaml:"pose_landmarks"`
	// HandLandmarks is the number of landmarks the hand model reports per hand
	HandLandmarks int `yaml:"hand_landmarks"`
	// PoseSubset lists the pose landmarks kept for the RDM. Hands and legs are
	// left out: the hand arrays cover the former, the videos never show the latter.
	PoseSubset []int `yaml:"pose_subset"`

	Extract ExtractConfig `yaml:"extract"`
	RDM     RDMConfig     `yaml:"rdm"`
	Embed   EmbedConfig   `yaml:"embed"`
}

type ExtractConfig struct {
	InputDir     string         `yaml:"input_dir"`
	OutputDir    string         `yaml:"output_dir"`
	VideoExt     string         `yaml:"video_ext"`
	Annotate     bool           `yaml:"annotate"`
	Codec        string         `yaml:"codec"`
	OutputSuffix string         `yaml:"output_suffix"`
	Detector     DetectorConfig `yaml:"detector"`
}

type DetectorConfig struct {
	Binary   string   `yaml:"binary"`
	Args     []string `yaml:"args,omitempty"`
	MaxHands int      `yaml:"max_hands"`
}

type RDMConfig struct {
	InputDir     string `yaml:"input_dir"`
	OutputDir    string `yaml:"output_dir"`
	Method       string `yaml:"method"`
	Overwrite    bool   `yaml:"overwrite"`
	EmbeddingRDM string `yaml:"embedding_rdm"`
	Comparison   string `yaml:"comparison"`
	Movie        bool   `yaml:"movie"`
	Workers      int    `yaml:"workers"`
}

type EmbedConfig struct {
	StimuliCSV  string        `yaml:"stimuli_csv"`
	IDColumn    string        `yaml:"id_column"`
	WordColumn  string        `yaml:"word_column"`
	Vectors     string        `yaml:"vectors"`
	PCAFitWords int           `yaml:"pca_fit_words"`
	TargetDims  []int         `yaml:"target_dims"`
	CompareDims CompareConfig `yaml:"compare_dims"`
	OutputDir   string        `yaml:"output_dir"`
}

type CompareConfig struct {
	Enabled bool `yaml:"enabled"`
	From    int  `yaml:"from"`
	To      int  `yaml:"to"`
	Step    int  `yaml:"step"`
}

// Distance and comparison methods understood by the RDM builder
const (
	MethodCrossnobis = "crossnobis"
	MethodEuclidean  = "euclidean"
	CompareRhoA      = "rho-a"
	CompareCorr      = "corr"
)

// Default returns the configuration used for the FL_BILINGUAL gesture videos
func Default() *Config {
	subset := make([]int, 0, 17)
	for i := 0; i < 15; i++ { // face, shoulders, elbows
		subset = append(subset, i)
	}
	subset = append(subset, 23, 24) // hips

	return &Config{
		FPS:           50,
		PoseLandmarks: 33,
		HandLandmarks: 21,
		PoseSubset:    subset,
		Extract: ExtractConfig{
			InputDir:     "gestures",
			OutputDir:    "gestures_pose",
			VideoExt:     ".mp4",
			Annotate:     true,
			Codec:        "mp4v",
			OutputSuffix: "_pose",
			Detector: DetectorConfig{
				Binary:   "landmark-detector",
				MaxHands: 2,
			},
		},
		RDM: RDMConfig{
			InputDir:   "gestures_pose",
			OutputDir:  ".",
			Method:     MethodCrossnobis,
			Comparison: CompareRhoA,
		},
		Embed: EmbedConfig{
			IDColumn:    "stimulus_id",
			WordColumn:  "german_umlaut",
			Vectors:     "cc.de.300.vec",
			PCAFitWords: 100000,
			TargetDims:  []int{10, 35},
			CompareDims: CompareConfig{From: 5, To: 100, Step: 5},
			OutputDir:   ".",
		},
	}
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ErrInvalid is returned for configuration values that cannot be used
var ErrInvalid = errors.New("invalid configuration")

// Validate checks the named constants against each other
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %v", ErrInvalid, c.FPS)
	}
	if c.PoseLandmarks <= 0 || c.HandLandmarks <= 0 {
		return fmt.Errorf("%w: landmark counts must be positive, got pose=%d hand=%d",
			ErrInvalid, c.PoseLandmarks, c.HandLandmarks)
	}

	seen := make(map[int]bool, len(c.PoseSubset))
	for _, idx := range c.PoseSubset {
		if idx < 0 || idx >= c.PoseLandmarks {
			return fmt.Errorf("%w: pose_subset index %d outside [0, %d)", ErrInvalid, idx, c.PoseLandmarks)
		}
		if seen[idx] {
			return fmt.Errorf("%w: pose_subset index %d listed twice", ErrInvalid, idx)
		}
		seen[idx] = true
	}

	if c.Extract.Detector.MaxHands < 0 {
		return fmt.Errorf("%w: max_hands must not be negative", ErrInvalid)
	}

	switch c.RDM.Method {
	case MethodCrossnobis, MethodEuclidean:
	default:
		return fmt.Errorf("%w: unknown rdm method %q", ErrInvalid, c.RDM.Method)
	}

	switch c.RDM.Comparison {
	case CompareRhoA, CompareCorr:
	default:
		return fmt.Errorf("%w: unknown rdm comparison %q", ErrInvalid, c.RDM.Comparison)
	}

	for _, d := range c.Embed.TargetDims {
		if d <= 0 {
			return fmt.Errorf("%w: target dimension %d must be positive", ErrInvalid, d)
		}
	}

	if cd := c.Embed.CompareDims; cd.Enabled && (cd.From <= 0 || cd.Step <= 0 || cd.To < cd.From) {
		return fmt.Errorf("%w: compare_dims range %d..%d step %d", ErrInvalid, cd.From, cd.To, cd.Step)
	}

	return nil
}

func findConfigFile() string {
	candidates := []string{
		"./gesture-rdm.yaml",
		"./gesture-rdm.yml",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
