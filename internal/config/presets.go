package config

import "sort"

// Presets are named variations on the default configuration.
var Presets = map[string]func(*Config){
	"reference": func(c *Config) {},
	"cold": func(c *Config) {
		c.Model.Beta = 1.0
	},
	"hot": func(c *Config) {
		c.Model.Beta = 0.1
		c.Series.Method = "shanks"
	},
	"stiff": func(c *Config) {
		c.Model.Gamma = 3
		c.Model.UnitScale = 10
	},
	"soft": func(c *Config) {
		c.Model.Gamma = 1
		c.Model.UnitScale = 0.1
	},
}

// GetPreset returns a fresh configuration for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
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
