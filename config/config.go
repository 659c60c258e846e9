// Package config loads contract-repl settings from a YAML file.
//
//	solc:
//	  path: solc
//	  optimize: true
//	  extra_args: ["--evm-version", "paris"]
//	engine:
//	  path: ./target/release/mini-evm
//	  build: ["cargo", "build", "--release"]
//	  response_timeout: 10s
//	  exit_grace: 500ms
//	target_folder: test_files
//	out_dir: .contract-repl/out
//
// Values given on the command line override the file.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/contract-repl/errors"
)

// DefaultFile is read when it exists and no --config flag is given.
const DefaultFile = "contract-repl.yaml"

// Config is the complete session configuration.
type Config struct {
	Solc         SolcConfig   `yaml:"solc"`
	Engine       EngineConfig `yaml:"engine"`
	TargetFolder string       `yaml:"target_folder"`
	OutDir       string       `yaml:"out_dir"`
	Prompt       string       `yaml:"prompt"`
}

// SolcConfig configures the compiler invocation.
type SolcConfig struct {
	Path      string   `yaml:"path"`
	Optimize  bool     `yaml:"optimize"`
	ExtraArgs []string `yaml:"extra_args"`
}

// EngineConfig configures the engine subprocess.
type EngineConfig struct {
	Path            string        `yaml:"path"`
	Build           []string      `yaml:"build"`
	BuildDir        string        `yaml:"build_dir"`
	ResponseTimeout time.Duration `yaml:"response_timeout"`
	ExitGrace       time.Duration `yaml:"exit_grace"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Solc: SolcConfig{
			Path:     "solc",
			Optimize: true,
		},
		Engine: EngineConfig{
			Path:      "./target/release/mini-evm",
			ExitGrace: 500 * time.Millisecond,
		},
		TargetFolder: "test_files",
		OutDir:       ".contract-repl/out",
		Prompt:       "cmd> ",
	}
}

// Load reads path over the defaults. When optional is true a missing file
// yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Path(path).
			Detail("read config").
			Cause(err).
			Build()
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Path(path).
			Detail("parse config").
			Cause(err).
			Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be fixed by defaults.
func (c *Config) Validate() error {
	switch {
	case c.Solc.Path == "":
		return errors.InvalidInput(errors.PhaseConfig, "solc.path must not be empty")
	case c.Engine.Path == "":
		return errors.InvalidInput(errors.PhaseConfig, "engine.path must not be empty")
	case c.OutDir == "":
		return errors.InvalidInput(errors.PhaseConfig, "out_dir must not be empty")
	case c.Engine.ResponseTimeout < 0:
		return errors.InvalidInput(errors.PhaseConfig, "engine.response_timeout must not be negative")
	}
	return nil
}
