// Package config resolves the settings of a light-curve fit.
package config

import (
	"github.com/lucasmaystre/lcfit/gp"
	"github.com/lucasmaystre/lcfit/models"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Model names accepted in Config.Models.
const (
	Polynomial  = "polynomial"
	Exponential = "exponential"
	Transit     = "transit"
)

var ErrInvalid = errors.New("invalid configuration")

type GP struct {
	Backend   string   `yaml:"backend"`
	Kernels   []string `yaml:"kernels"`
	Inputs    []string `yaml:"inputs"`
	Normalize bool     `yaml:"normalize"`
}

type Config struct {
	Units     models.Units `yaml:"units"`
	NChan     int          `yaml:"nchan"`
	Share     bool         `yaml:"share"`
	Strict    bool         `yaml:"strict"`
	Verbosity int          `yaml:"verbosity"`
	// Models lists the multiplicative models of the fit, in order.
	Models    []string `yaml:"models"`
	ParamFile string   `yaml:"param_file"`
	GP        GP       `yaml:"gp"`
	Workers   int      `yaml:"workers"`
}

// Validate rejects settings that no model could run with.
func Validate(cfg *Config) error {
	if !cfg.Units.Valid() {
		return errors.Wrapf(ErrInvalid, "units %q", cfg.Units)
	}
	if cfg.NChan < 1 {
		return errors.Wrapf(ErrInvalid, "nchan must be positive, got %d", cfg.NChan)
	}
	if cfg.Verbosity < 0 {
		return errors.Wrapf(ErrInvalid, "verbosity must not be negative, got %d", cfg.Verbosity)
	}
	if cfg.Workers < 0 {
		return errors.Wrapf(ErrInvalid, "workers must not be negative, got %d", cfg.Workers)
	}
	seen := make(map[string]bool, len(cfg.Models))
	for _, name := range cfg.Models {
		switch name {
		case Polynomial, Exponential, Transit:
		default:
			return errors.Wrapf(ErrInvalid, "unknown model %q", name)
		}
		if seen[name] {
			return errors.Wrapf(ErrInvalid, "model %q listed twice", name)
		}
		seen[name] = true
	}
	if len(cfg.GP.Kernels) > 0 {
		if _, err := gp.NewBackend(cfg.GP.Backend); err != nil {
			return errors.Wrapf(ErrInvalid, "%v", err)
		}
	}
	return nil
}

// YAML renders the resolved configuration, for the record of a run.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal config")
	}
	return out, nil
}
