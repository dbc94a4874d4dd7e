package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/san-kum/photolab/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaterial   = "cesium"
	DefaultWavelength = 400.0
	DefaultIntensity  = 5.0
	DefaultArea       = 0.10
	DefaultVoltage    = 0.0
	DefaultDataDir    = ".photolab"
	DefaultLogLevel   = "info"
	DefaultSweepFrom  = -2.0
	DefaultSweepTo    = 2.0
	DefaultSweepStep  = 0.1
)

type Config struct {
	Material     string      `yaml:"material" env:"MATERIAL"`
	WavelengthNm float64     `yaml:"wavelength_nm" env:"WAVELENGTH_NM"`
	Intensity    float64     `yaml:"intensity_w_per_m2" env:"INTENSITY"`
	AreaCm2      float64     `yaml:"area_cm2" env:"AREA_CM2"`
	VoltageV     float64     `yaml:"applied_voltage_v" env:"VOLTAGE_V"`
	Seed         int64       `yaml:"seed" env:"SEED"`
	DataDir      string      `yaml:"data_dir" env:"DATA_DIR"`
	LogLevel     string      `yaml:"log_level" env:"LOG_LEVEL"`
	Sweep        SweepConfig `yaml:"sweep" envPrefix:"SWEEP_"`
}

type SweepConfig struct {
	From float64 `yaml:"from" env:"FROM"`
	To   float64 `yaml:"to" env:"TO"`
	Step float64 `yaml:"step" env:"STEP"`
}

// EnvPrefix is prepended to every environment override, e.g. PHOTOLAB_SEED.
const EnvPrefix = "PHOTOLAB_"

func DefaultConfig() *Config {
	return &Config{
		Material:     DefaultMaterial,
		WavelengthNm: DefaultWavelength,
		Intensity:    DefaultIntensity,
		AreaCm2:      DefaultArea,
		VoltageV:     DefaultVoltage,
		DataDir:      DefaultDataDir,
		LogLevel:     DefaultLogLevel,
		Sweep: SweepConfig{
			From: DefaultSweepFrom,
			To:   DefaultSweepTo,
			Step: DefaultSweepStep,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto cfg. Keys the file omits keep
// their current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays PHOTOLAB_* environment variables onto cfg. Unset
// variables leave the current values alone.
func ApplyEnv(cfg *Config) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}

func (c *Config) Parameters() physics.Parameters {
	return physics.Parameters{
		MaterialID:      c.Material,
		WavelengthNm:    c.WavelengthNm,
		IntensityWPerM2: c.Intensity,
		AreaCm2:         c.AreaCm2,
		AppliedVoltageV: c.VoltageV,
	}
}

// Validate checks the experiment parameters and the sweep window.
func (c *Config) Validate() error {
	if err := c.Parameters().Validate(); err != nil {
		return err
	}
	return c.Sweep.Validate()
}

func (s SweepConfig) Validate() error {
	if s.Step <= 0 {
		return fmt.Errorf("%w: sweep step must be positive, got %g", physics.ErrInvalidParameter, s.Step)
	}
	if s.From > s.To {
		return fmt.Errorf("%w: sweep from %g is above to %g", physics.ErrInvalidParameter, s.From, s.To)
	}
	for _, v := range []float64{s.From, s.To} {
		if v < physics.MinVoltage || v > physics.MaxVoltage {
			return fmt.Errorf("%w: sweep bound %g outside [%g, %g]", physics.ErrInvalidParameter, v, physics.MinVoltage, physics.MaxVoltage)
		}
	}
	return nil
}
