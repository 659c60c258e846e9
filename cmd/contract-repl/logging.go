package main

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/contract-repl/abi"
	"github.com/wippyai/contract-repl/compiler"
	"github.com/wippyai/contract-repl/engine"
	"github.com/wippyai/contract-repl/repl"
)

// newLogger builds the session logger and installs it in every package.
func newLogger(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableStacktrace = true
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	l = l.With(zap.String("session", uuid.NewString()))

	abi.SetLogger(l.Named("abi"))
	compiler.SetLogger(l.Named("compiler"))
	engine.SetLogger(l.Named("engine"))
	repl.SetLogger(l.Named("repl"))
	return l, nil
}
