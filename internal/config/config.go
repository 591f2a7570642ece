package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.1
	DefaultHorizon  = 60.0
	DefaultSpeed    = 20.0
	DefaultKp       = 600.0
	DefaultKi       = 40.0
	DefaultForceMax = 4000.0
)

type Config struct {
	Plant      string        `yaml:"plant"`
	Integrator string        `yaml:"integrator"`
	Controller string        `yaml:"controller"`
	Dt         float64       `yaml:"dt"`
	Horizon    float64       `yaml:"horizon"`
	Speed      float64       `yaml:"speed"`
	InitSpeed  float64       `yaml:"init_speed"`
	Vehicle    VehicleConfig `yaml:"vehicle"`
	Gains      GainConfig    `yaml:"gains"`
	Grade      GradeConfig   `yaml:"grade"`
}

type VehicleConfig struct {
	Mass            float64 `yaml:"mass"`
	RollingFriction float64 `yaml:"rolling_friction"`
	AeroDrag        float64 `yaml:"aero_drag"`
	Gear            int     `yaml:"gear"`
}

type GainConfig struct {
	Kp         float64 `yaml:"kp"`
	Ki         float64 `yaml:"ki"`
	Kd         float64 `yaml:"kd"`
	Limited    bool    `yaml:"limited"`
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
	AntiWindup bool    `yaml:"anti_windup"`
}

type GradeConfig struct {
	Profile  string  `yaml:"profile"` // flat | hill | rolling
	Start    float64 `yaml:"start"`
	Rise     float64 `yaml:"rise"`
	AngleDeg float64 `yaml:"angle_deg"`
	Period   float64 `yaml:"period"`
}

func DefaultConfig() *Config {
	return &Config{
		Plant:      "force",
		Integrator: "rk4",
		Controller: "pi",
		Dt:         DefaultDt,
		Horizon:    DefaultHorizon,
		Speed:      DefaultSpeed,
		InitSpeed:  DefaultSpeed,
		Vehicle: VehicleConfig{
			Mass:            1000,
			RollingFriction: 0.01,
			AeroDrag:        1.2,
			Gear:            4,
		},
		Gains: GainConfig{
			Kp:         DefaultKp,
			Ki:         DefaultKi,
			Limited:    true,
			Min:        0,
			Max:        DefaultForceMax,
			AntiWindup: true,
		},
		Grade: GradeConfig{
			Profile: "flat",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
