package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.PoseSubset, 17)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 23, 24}, cfg.PoseSubset)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := "fps: 25\nrdm:\n  method: euclidean\n  overwrite: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 25.0, cfg.FPS)
	require.Equal(t, MethodEuclidean, cfg.RDM.Method)
	require.True(t, cfg.RDM.Overwrite)
	// untouched values keep their defaults
	require.Equal(t, 33, cfg.PoseLandmarks)
	require.Equal(t, CompareRhoA, cfg.RDM.Comparison)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"negative hand count", func(c *Config) { c.HandLandmarks = -1 }},
		{"subset out of range", func(c *Config) { c.PoseSubset = []int{0, 33} }},
		{"subset duplicate", func(c *Config) { c.PoseSubset = []int{1, 1} }},
		{"unknown method", func(c *Config) { c.RDM.Method = "mahalanobis" }},
		{"unknown comparison", func(c *Config) { c.RDM.Comparison = "tau-b" }},
		{"bad target dim", func(c *Config) { c.Embed.TargetDims = []int{0} }},
		{"bad compare range", func(c *Config) {
			c.Embed.CompareDims = CompareConfig{Enabled: true, From: 10, To: 5, Step: 5}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Embed.TargetDims = []int{7}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
