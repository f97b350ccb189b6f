package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/hpungsan/unitime/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		want    zapcore.Level
		wantErr bool
	}{
		{"defaults", "info", "json", zapcore.InfoLevel, false},
		{"console debug", "debug", "console", zapcore.DebugLevel, false},
		{"upper case level", "WARN", "", zapcore.WarnLevel, false},
		{"bad level", "loud", "json", zapcore.InfoLevel, true},
		{"bad format", "info", "xml", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.LogLevel = tt.level
			cfg.LogFormat = tt.format

			l, err := New(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				require.False(t, l.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, OrNop(nil))
	l, err := New(config.DefaultConfig())
	require.NoError(t, err)
	require.Same(t, l, OrNop(l))
}
