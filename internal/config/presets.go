package config

import "sort"

// Presets are ready-made illumination setups keyed by name.
var Presets = map[string]*Config{
	"cesium-violet": {
		Material: "cesium", WavelengthNm: 400, Intensity: 5, AreaCm2: 0.10,
		Sweep: SweepConfig{From: -1.5, To: 1.0, Step: 0.05},
	},
	"cesium-red": {
		Material: "cesium", WavelengthNm: 650, Intensity: 10, AreaCm2: 1.0,
		Sweep: SweepConfig{From: -1.0, To: 1.0, Step: 0.1},
	},
	"sodium-uv": {
		Material: "sodium", WavelengthNm: 250, Intensity: 8, AreaCm2: 0.5,
		Sweep: SweepConfig{From: -3.5, To: 1.0, Step: 0.1},
	},
	"zinc-uv": {
		Material: "zinc", WavelengthNm: 200, Intensity: 5, AreaCm2: 0.25,
		Sweep: SweepConfig{From: -2.5, To: 1.0, Step: 0.05},
	},
	"platinum-deep-uv": {
		Material: "platinum", WavelengthNm: 150, Intensity: 10, AreaCm2: 1.0,
		Sweep: SweepConfig{From: -3.0, To: 2.0, Step: 0.1},
	},
	"copper-threshold": {
		Material: "copper", WavelengthNm: 260, Intensity: 6, AreaCm2: 0.5,
		Sweep: SweepConfig{From: -1.0, To: 1.0, Step: 0.02},
	},
}

// GetPreset returns a copy of the named preset filled out with defaults for
// fields the preset leaves empty, or nil if the name is unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Material = p.Material
	cfg.WavelengthNm = p.WavelengthNm
	cfg.Intensity = p.Intensity
	cfg.AreaCm2 = p.AreaCm2
	cfg.VoltageV = p.VoltageV
	cfg.Sweep = p.Sweep
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
