package config

import "sort"

var presets = map[string]func() *Config{
	// level road, pure regulation against drag
	"flat": func() *Config {
		return DefaultConfig()
	},
	// the classic coursework scenario: 4 degree hill ramping in at t=10
	"hill": func() *Config {
		cfg := DefaultConfig()
		cfg.Grade = GradeConfig{Profile: "hill", Start: 10, Rise: 1, AngleDeg: 4}
		return cfg
	},
	// steep enough to saturate the force limit on the climb
	"steep": func() *Config {
		cfg := DefaultConfig()
		cfg.Grade = GradeConfig{Profile: "hill", Start: 10, Rise: 2, AngleDeg: 10}
		return cfg
	},
	// alternating climb and descent
	"rolling": func() *Config {
		cfg := DefaultConfig()
		cfg.Grade = GradeConfig{Profile: "rolling", Start: 5, AngleDeg: 3, Period: 30}
		return cfg
	},
	// throttle-input plant with the original script's gains and hill
	"drivetrain": func() *Config {
		cfg := DefaultConfig()
		cfg.Plant = "drivetrain"
		cfg.Horizon = 25
		cfg.Gains = GainConfig{Kp: 0.5, Ki: 0.1}
		cfg.Grade = GradeConfig{Profile: "hill", Start: 5, Rise: 1, AngleDeg: 4}
		return cfg
	},
}

func GetPreset(name string) *Config {
	fn, ok := presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
