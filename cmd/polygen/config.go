package main

import (
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// generateConfig mirrors the options a `polygen generate` invocation
// needs, mergeable from three sources in increasing precedence: a
// backend's own defaults, a `-c config.yaml` file, and `-d key=value`
// flags — the same override order the original's
// ModifierRegistry.configure applies to its per-modifier Option
// defaults (see DOMAIN STACK).
type generateConfig struct {
	Backend string            `yaml:"backend"`
	OutDir  string            `yaml:"out_dir"`
	Options map[string]string `yaml:"options"`
}

// loadConfigFile reads a YAML config file, returning a zero-value
// config (not an error) when path is empty — a config file is always
// optional.
func loadConfigFile(path string) (generateConfig, error) {
	var cfg generateConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// mergeConfig layers flagCfg (from CLI flags, highest precedence) over
// fileCfg (from -c config.yaml) over base (a backend's own defaults),
// using mergo.WithOverride so a later, more specific source always wins
// a populated field.
func mergeConfig(base, fileCfg, flagCfg generateConfig) (generateConfig, error) {
	merged := base
	if err := mergo.Merge(&merged, fileCfg, mergo.WithOverride); err != nil {
		return merged, err
	}
	if err := mergo.Merge(&merged, flagCfg, mergo.WithOverride); err != nil {
		return merged, err
	}
	return merged, nil
}
