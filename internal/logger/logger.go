package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Init replaces the global zap logger. The terminal owns stdout, so output goes
// to logFile; an empty logFile falls back to stderr.
func Init(env, logLevel, logFile string) error {
	var conf zap.Config
	if env == "production" {
		conf = zap.NewProductionConfig()
	} else {
		conf = zap.NewDevelopmentConfig()
	}

	if err := SetLevel(logLevel); err != nil {
		return err
	}
	conf.Level = level

	if logFile != "" {
		conf.OutputPaths = []string{logFile}
		conf.ErrorOutputPaths = []string{logFile}
	}

	l, err := conf.Build()
	if err != nil {
		return fmt.Errorf("conf.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}

// SetLevel changes the level of the global logger in place.
func SetLevel(logLevel string) error {
	if logLevel == "" {
		return nil
	}

	parsed, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("zapcore.ParseLevel -> %w", err)
	}
	level.SetLevel(parsed)

	return nil
}

func Level() zapcore.Level {
	return level.Level()
}
