package mapio

import "testing"

func TestOpenModeString(t *testing.T) {
	tests := []struct {
		mode OpenMode
		want string
	}{
		{ModeRead, "read"},
		{ModeWrite, "write"},
		{OpenMode(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("OpenMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestLoadFullFileResultString(t *testing.T) {
	tests := []struct {
		result LoadFullFileResult
		want   string
	}{
		{LoadSuccess, "success"},
		{LoadFailureOpen, "open failure"},
		{LoadFailureRead, "read failure"},
		{LoadFailureExceedsMaxFileSize, "exceeds max file size"},
		{LoadFullFileResult(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.result.String(); got != tt.want {
			t.Errorf("LoadFullFileResult(%d).String() = %q, want %q", tt.result, got, tt.want)
		}
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogInfoVerbose, "verbose"},
		{LogInfo, "info"},
		{LogWarning, "warning"},
		{LogError, "error"},
		{LogLevel(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
