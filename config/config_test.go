package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasmaystre/lcfit/models"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const fitYAML = `
units: MJD
nchan: 2
share: true
models: [polynomial, transit]
param_file: params.yaml
gp:
  backend: celerite
  kernels: [Matern32]
  normalize: true
workers: 4
`

func writeConfig(t *testing.T, doc string) string {
	path := filepath.Join(t.TempDir(), "fit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, models.BJD, cfg.Units)
	assert.Equal(t, 1, cfg.NChan)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "george", cfg.GP.Backend)
	assert.Equal(t, []string{"time"}, cfg.GP.Inputs)
	assert.Empty(t, cfg.Models)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, fitYAML), nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Units:     models.MJD,
		NChan:     2,
		Share:     true,
		Models:    []string{Polynomial, Transit},
		ParamFile: "params.yaml",
		GP: GP{
			Backend:   "celerite",
			Kernels:   []string{"Matern32"},
			Inputs:    []string{"time"},
			Normalize: true,
		},
		Workers: 4,
	}, cfg)
}

func TestPrecedence(t *testing.T) {
	path := writeConfig(t, fitYAML)
	t.Setenv("LCFIT_NCHAN", "3")
	t.Setenv("LCFIT_WORKERS", "8")
	t.Setenv("LCFIT_GP_BACKEND", "tinygp")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--workers=2", "-v", "3"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.NChan, "env beats file")
	assert.Equal(t, 2, cfg.Workers, "flag beats env")
	assert.Equal(t, "tinygp", cfg.GP.Backend)
	assert.Equal(t, 3, cfg.Verbosity)
	assert.Equal(t, models.MJD, cfg.Units, "unset flag does not override the file")
}

func TestValidate(t *testing.T) {
	tcs := map[string]struct {
		doc string
	}{
		"units":           {doc: "units: JD\n"},
		"nchan":           {doc: "nchan: 0\n"},
		"verbosity":       {doc: "verbosity: -2\n"},
		"workers":         {doc: "workers: -1\n"},
		"unknown model":   {doc: "models: [sinusoid]\n"},
		"duplicate model": {doc: "models: [transit, transit]\n"},
		"backend":         {doc: "gp: {backend: sklearn, kernels: [Matern32]}\n"},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.doc), nil)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, fitYAML), nil)
	require.NoError(t, err)
	out, err := cfg.YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, *cfg, back)
}
