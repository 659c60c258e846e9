package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	rerrors "github.com/wippyai/contract-repl/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
solc:
  path: /usr/local/bin/solc
  optimize: false
  extra_args: ["--evm-version", "paris"]
engine:
  path: ./bin/mini-evm
  build: ["cargo", "build", "--release"]
  response_timeout: 10s
target_folder: contracts
`)

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Solc.Path != "/usr/local/bin/solc" || cfg.Solc.Optimize {
		t.Errorf("Solc = %+v", cfg.Solc)
	}
	if !reflect.DeepEqual(cfg.Solc.ExtraArgs, []string{"--evm-version", "paris"}) {
		t.Errorf("ExtraArgs = %v", cfg.Solc.ExtraArgs)
	}
	if cfg.Engine.ResponseTimeout != 10*time.Second {
		t.Errorf("ResponseTimeout = %v", cfg.Engine.ResponseTimeout)
	}
	if len(cfg.Engine.Build) != 3 {
		t.Errorf("Build = %v", cfg.Engine.Build)
	}
	if cfg.TargetFolder != "contracts" {
		t.Errorf("TargetFolder = %q", cfg.TargetFolder)
	}

	// untouched keys keep their defaults
	def := Default()
	if cfg.OutDir != def.OutDir || cfg.Engine.ExitGrace != def.Engine.ExitGrace || cfg.Prompt != def.Prompt {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(missing, true)
	if err != nil {
		t.Fatalf("optional Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("optional missing file should yield defaults")
	}

	_, err = Load(missing, false)
	if !errors.Is(err, &rerrors.Error{Phase: rerrors.PhaseConfig, Kind: rerrors.KindNotFound}) {
		t.Errorf("Load = %v, want config/not_found", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind rerrors.Kind
	}{
		{"malformed yaml", "solc: [", rerrors.KindInvalidData},
		{"bad duration", "engine:\n  response_timeout: soon\n", rerrors.KindInvalidData},
		{"empty engine path", "engine:\n  path: \"\"\n", rerrors.KindInvalidInput},
		{"negative timeout", "engine:\n  response_timeout: -1s\n", rerrors.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), false)
			if !errors.Is(err, &rerrors.Error{Phase: rerrors.PhaseConfig, Kind: tt.kind}) {
				t.Errorf("Load = %v, want config/%s", err, tt.kind)
			}
		})
	}
}
