package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		logging   config.LoggingConfig
		override  string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "defaults to info", wantLevel: zapcore.InfoLevel},
		{name: "configured level", logging: config.LoggingConfig{Level: "warn"}, wantLevel: zapcore.WarnLevel},
		{name: "override wins", logging: config.LoggingConfig{Level: "error"}, override: "debug", wantLevel: zapcore.DebugLevel},
		{name: "console format", logging: config.LoggingConfig{Format: "console", Level: "WARNING"}, wantLevel: zapcore.WarnLevel},
		{name: "invalid level", logging: config.LoggingConfig{Level: "chatty"}, wantErr: true},
		{name: "invalid format", logging: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.logging, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("level %s should be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %s should be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "optimiser.log")
	logger, err := initializeLogger(config.LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	logger.Info("written")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}
}
