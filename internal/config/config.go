package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/miegruneisen/internal/analysis"
	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/series"
	"github.com/san-kum/miegruneisen/internal/sweep"
	"github.com/san-kum/miegruneisen/internal/thermo"
	"github.com/san-kum/miegruneisen/internal/validate"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Evaluator  string           `yaml:"evaluator"`
	Model      ModelConfig      `yaml:"model"`
	Series     SeriesConfig     `yaml:"series"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Validation ValidationConfig `yaml:"validation"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
}

type ModelConfig struct {
	Beta        float64 `yaml:"beta"`
	UnitScale   float64 `yaml:"unit_scale"`
	RefVolume   float64 `yaml:"ref_volume"`
	Gamma       float64 `yaml:"gamma"`
	Samples     int     `yaml:"samples"`
	MinFraction float64 `yaml:"min_fraction"`
}

type SeriesConfig struct {
	Method    string `yaml:"method"`
	Precision uint32 `yaml:"precision"`
	Digits    int    `yaml:"digits"`
	MinTerms  int64  `yaml:"min_terms"`
	MaxTerms  int64  `yaml:"max_terms"`
	Window    int    `yaml:"window"`
}

type SweepConfig struct {
	Workers         int  `yaml:"workers"`
	ValidateSamples bool `yaml:"validate_samples"`
}

type ValidationConfig struct {
	Decimal int `yaml:"decimal"`
}

type AnalysisConfig struct {
	Step float64 `yaml:"step"`
}

func DefaultConfig() *Config {
	p := model.DefaultParams()
	o := series.DefaultOptions()
	s := sweep.DefaultConfig()
	return &Config{
		Evaluator: "series",
		Model: ModelConfig{
			Beta:        p.Beta,
			UnitScale:   p.UnitScale,
			RefVolume:   p.RefVolume,
			Gamma:       p.Gamma,
			Samples:     p.Samples,
			MinFraction: p.MinFraction,
		},
		Series: SeriesConfig{
			Method:    o.Method.String(),
			Precision: o.Precision,
			Digits:    o.Digits,
			MinTerms:  o.MinTerms,
			MaxTerms:  o.MaxTerms,
			Window:    o.Window,
		},
		Sweep: SweepConfig{
			Workers:         s.Workers,
			ValidateSamples: s.ValidateSamples,
		},
		Validation: ValidationConfig{Decimal: validate.DefaultDecimal},
		Analysis:   AnalysisConfig{Step: analysis.DefaultStep},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file on top of base, which is modified in place.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func (c *Config) Params() model.Params {
	return model.Params{
		Beta:        c.Model.Beta,
		UnitScale:   c.Model.UnitScale,
		RefVolume:   c.Model.RefVolume,
		Gamma:       c.Model.Gamma,
		Samples:     c.Model.Samples,
		MinFraction: c.Model.MinFraction,
	}
}

func (c *Config) SeriesOptions() (series.Options, error) {
	m, err := series.ParseMethod(c.Series.Method)
	if err != nil {
		return series.Options{}, err
	}
	return series.Options{
		Precision: c.Series.Precision,
		Digits:    c.Series.Digits,
		MinTerms:  c.Series.MinTerms,
		MaxTerms:  c.Series.MaxTerms,
		Method:    m,
		Window:    c.Series.Window,
	}, nil
}

func (c *Config) SweepConfig() sweep.Config {
	return sweep.Config{
		Workers:         c.Sweep.Workers,
		ValidateSamples: c.Sweep.ValidateSamples,
	}
}

// NewEvaluator builds the configured evaluator from the registry.
func (c *Config) NewEvaluator(reg *thermo.Registry) (thermo.Evaluator, error) {
	opts, err := c.SeriesOptions()
	if err != nil {
		return nil, err
	}
	return reg.Get(c.Evaluator, c.Params(), opts)
}

func (c *Config) Validate() error {
	if !slices.Contains(thermo.NewRegistry().Names(), c.Evaluator) {
		return fmt.Errorf("%w: unknown evaluator %q", ErrInvalid, c.Evaluator)
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	opts, err := c.SeriesOptions()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := c.SweepConfig().Validate(); err != nil {
		return err
	}
	if c.Validation.Decimal < 1 || c.Validation.Decimal > 15 {
		return fmt.Errorf("%w: validation decimal must be in [1, 15], got %d", ErrInvalid, c.Validation.Decimal)
	}
	if !(c.Analysis.Step > 0) {
		return fmt.Errorf("%w: analysis step must be positive, got %g", ErrInvalid, c.Analysis.Step)
	}
	return nil
}
