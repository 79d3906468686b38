package config

import (
	"strings"

	"github.com/lucasmaystre/lcfit/gp"
	"github.com/lucasmaystre/lcfit/models"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LCFIT"

// flagBindings maps viper keys to pflag names.
var flagBindings = map[string]string{
	"units":        "units",
	"nchan":        "nchan",
	"share":        "share",
	"strict":       "strict",
	"verbosity":    "verbosity",
	"models":       "models",
	"param_file":   "param-file",
	"gp.backend":   "gp-backend",
	"gp.kernels":   "gp-kernels",
	"gp.inputs":    "gp-inputs",
	"gp.normalize": "gp-normalize",
	"workers":      "workers",
}

// RegisterFlags adds the command-line flags understood by Load.
func RegisterFlags(fs *flag.FlagSet) {
	fs.String("units", string(models.BJD), "time units: BJD, MJD or phase")
	fs.Int("nchan", 1, "number of spectroscopic channels")
	fs.Bool("share", false, "fit all channels jointly")
	fs.Bool("strict", false, "fail on updates that match no parameter")
	fs.IntP("verbosity", "v", 0, "log verbosity")
	fs.StringSlice("models", nil, "multiplicative models: polynomial, exponential, transit")
	fs.String("param-file", "", "YAML parameter file")
	fs.String("gp-backend", gp.George, "GP backend: george, celerite or tinygp")
	fs.StringSlice("gp-kernels", nil, "GP kernel types")
	fs.StringSlice("gp-inputs", nil, "GP kernel inputs")
	fs.Bool("gp-normalize", false, "standardize GP inputs")
	fs.Int("workers", 1, "concurrent evaluations")
}

// Load resolves the configuration and validates it.
// Precedence: flags > env > config file > defaults.
// path and flagSet may be empty.
func Load(path string, flagSet *flag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("units", string(models.BJD))
	v.SetDefault("nchan", 1)
	v.SetDefault("share", false)
	v.SetDefault("strict", false)
	v.SetDefault("verbosity", 0)
	v.SetDefault("models", []string{})
	v.SetDefault("param_file", "")
	v.SetDefault("gp.backend", gp.George)
	v.SetDefault("gp.kernels", []string{})
	v.SetDefault("gp.inputs", []string{"time"})
	v.SetDefault("gp.normalize", false)
	v.SetDefault("workers", 1)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", path)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flagSet != nil {
		for key, name := range flagBindings {
			if f := flagSet.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "unable to bind flag %s", name)
				}
			}
		}
	}

	cfg := &Config{
		Units:     models.Units(v.GetString("units")),
		NChan:     v.GetInt("nchan"),
		Share:     v.GetBool("share"),
		Strict:    v.GetBool("strict"),
		Verbosity: v.GetInt("verbosity"),
		Models:    v.GetStringSlice("models"),
		ParamFile: v.GetString("param_file"),
		GP: GP{
			Backend:   v.GetString("gp.backend"),
			Kernels:   v.GetStringSlice("gp.kernels"),
			Inputs:    v.GetStringSlice("gp.inputs"),
			Normalize: v.GetBool("gp.normalize"),
		},
		Workers: v.GetInt("workers"),
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
