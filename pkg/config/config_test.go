package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	// Check calibration defaults
	if cfg.Calibration.FrameCount != 40 {
		t.Errorf("expected 40 calibration frames, got %d", cfg.Calibration.FrameCount)
	}
	if cfg.Calibration.EARSmoothingAlpha != 0.3 {
		t.Errorf("expected smoothing alpha 0.3, got %f", cfg.Calibration.EARSmoothingAlpha)
	}
	if cfg.Calibration.FallbackEARThreshold != 0.2 {
		t.Errorf("expected fallback threshold 0.2, got %f", cfg.Calibration.FallbackEARThreshold)
	}

	// Check challenge defaults
	if cfg.Challenge.RequiredBlinkCount != 2 {
		t.Errorf("expected 2 required blinks, got %d", cfg.Challenge.RequiredBlinkCount)
	}
	if cfg.Challenge.MinClosedFramesForBlink != 3 {
		t.Errorf("expected 3 min closed frames, got %d", cfg.Challenge.MinClosedFramesForBlink)
	}
	if cfg.Challenge.TurnAngleThresholdDegrees != 15 {
		t.Errorf("expected 15 degree turn threshold, got %f", cfg.Challenge.TurnAngleThresholdDegrees)
	}
	if cfg.Challenge.TurnPersistenceFrames != 5 {
		t.Errorf("expected 5 turn persistence frames, got %d", cfg.Challenge.TurnPersistenceFrames)
	}

	// Check spoof defaults
	if cfg.Spoof.MotionEnergyThreshold != 0.8 {
		t.Errorf("expected motion threshold 0.8, got %f", cfg.Spoof.MotionEnergyThreshold)
	}
	if cfg.Spoof.EARStabilityEpsilon != 0.005 {
		t.Errorf("expected EAR epsilon 0.005, got %f", cfg.Spoof.EARStabilityEpsilon)
	}

	// Check session and gateway defaults
	if cfg.Session.TimeLimitSeconds != 45 {
		t.Errorf("expected 45 second time limit, got %d", cfg.Session.TimeLimitSeconds)
	}
	if cfg.Gateway.ListenAddr != ":8080" {
		t.Errorf("expected listen addr :8080, got %s", cfg.Gateway.ListenAddr)
	}
	if cfg.Gateway.AllowedOrigin != "*" {
		t.Errorf("expected allowed origin *, got %s", cfg.Gateway.AllowedOrigin)
	}

	// Check logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	configContent := `
calibration:
  frame_count: 25

challenge:
  required_blink_count: 3
  turn_angle_threshold_degrees: 20

spoof_detection:
  motion_energy_threshold: 1.2

session:
  time_limit_seconds: 30

gateway:
  listen_addr: ":9090"
  allowed_origin: https://verify.example.com

logging:
  level: debug
  file: /var/log/liveguard.log
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Explicit values override; unset fields keep their defaults.
	if cfg.Calibration.FrameCount != 25 {
		t.Errorf("expected frame count 25, got %d", cfg.Calibration.FrameCount)
	}
	if cfg.Calibration.EARSmoothingAlpha != 0.3 {
		t.Errorf("expected default smoothing alpha, got %f", cfg.Calibration.EARSmoothingAlpha)
	}
	if cfg.Challenge.RequiredBlinkCount != 3 {
		t.Errorf("expected 3 required blinks, got %d", cfg.Challenge.RequiredBlinkCount)
	}
	if cfg.Challenge.TurnAngleThresholdDegrees != 20 {
		t.Errorf("expected 20 degree turn threshold, got %f", cfg.Challenge.TurnAngleThresholdDegrees)
	}
	if cfg.Spoof.MotionEnergyThreshold != 1.2 {
		t.Errorf("expected motion threshold 1.2, got %f", cfg.Spoof.MotionEnergyThreshold)
	}
	if cfg.Session.TimeLimitSeconds != 30 {
		t.Errorf("expected 30 second time limit, got %d", cfg.Session.TimeLimitSeconds)
	}
	if cfg.Gateway.ListenAddr != ":9090" {
		t.Errorf("expected listen addr :9090, got %s", cfg.Gateway.ListenAddr)
	}
	if cfg.Gateway.AllowedOrigin != "https://verify.example.com" {
		t.Errorf("expected origin override, got %s", cfg.Gateway.AllowedOrigin)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")

	// Should return default config with error
	if cfg == nil {
		t.Error("expected default config on error")
	}
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := Load(configPath)
	if cfg == nil {
		t.Error("expected default config on error")
	}
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid default config",
			modify:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "zero calibration frames",
			modify:    func(c *Config) { c.Calibration.FrameCount = 0 },
			wantError: true,
			errorMsg:  "frame_count",
		},
		{
			name:      "smoothing alpha above one",
			modify:    func(c *Config) { c.Calibration.EARSmoothingAlpha = 1.5 },
			wantError: true,
			errorMsg:  "ear_smoothing_alpha",
		},
		{
			name:      "fallback threshold out of range",
			modify:    func(c *Config) { c.Calibration.FallbackEARThreshold = 1.0 },
			wantError: true,
			errorMsg:  "fallback_ear_threshold",
		},
		{
			name:      "zero required blinks",
			modify:    func(c *Config) { c.Challenge.RequiredBlinkCount = 0 },
			wantError: true,
			errorMsg:  "required_blink_count",
		},
		{
			name:      "zero closed frames",
			modify:    func(c *Config) { c.Challenge.MinClosedFramesForBlink = 0 },
			wantError: true,
			errorMsg:  "min_closed_frames",
		},
		{
			name:      "zero open frames",
			modify:    func(c *Config) { c.Challenge.MinOpenFramesAfterBlink = 0 },
			wantError: true,
			errorMsg:  "min_open_frames",
		},
		{
			name:      "turn angle too large",
			modify:    func(c *Config) { c.Challenge.TurnAngleThresholdDegrees = 90 },
			wantError: true,
			errorMsg:  "turn_angle_threshold",
		},
		{
			name:      "zero turn persistence",
			modify:    func(c *Config) { c.Challenge.TurnPersistenceFrames = 0 },
			wantError: true,
			errorMsg:  "turn_persistence_frames",
		},
		{
			name:      "zero pose calibration frames",
			modify:    func(c *Config) { c.Challenge.HeadPoseCalibrationFrames = 0 },
			wantError: true,
			errorMsg:  "head_pose_calibration_frames",
		},
		{
			name:      "zero motion threshold",
			modify:    func(c *Config) { c.Spoof.MotionEnergyThreshold = 0 },
			wantError: true,
			errorMsg:  "motion_energy_threshold",
		},
		{
			name:      "zero EAR epsilon",
			modify:    func(c *Config) { c.Spoof.EARStabilityEpsilon = 0 },
			wantError: true,
			errorMsg:  "ear_stability_epsilon",
		},
		{
			name:      "zero time limit",
			modify:    func(c *Config) { c.Session.TimeLimitSeconds = 0 },
			wantError: true,
			errorMsg:  "time_limit_seconds",
		},
		{
			name:      "empty listen addr",
			modify:    func(c *Config) { c.Gateway.ListenAddr = "" },
			wantError: true,
			errorMsg:  "listen_addr",
		},
		{
			name:      "invalid log level",
			modify:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
			errorMsg:  "invalid log level",
		},
		{
			name:      "valid log level debug",
			modify:    func(c *Config) { c.Logging.Level = "debug" },
			wantError: false,
		},
		{
			name:      "valid log level error",
			modify:    func(c *Config) { c.Logging.Level = "error" },
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got nil")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("error message doesn't contain '%s': %v", tt.errorMsg, err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LIVEGUARD_LISTEN_ADDR", ":7000")
	t.Setenv("LIVEGUARD_ALLOWED_ORIGIN", "https://verify.example.com")
	t.Setenv("LIVEGUARD_TIME_LIMIT_SECONDS", "60")
	t.Setenv("LIVEGUARD_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Gateway.ListenAddr != ":7000" {
		t.Errorf("expected listen addr :7000, got %s", cfg.Gateway.ListenAddr)
	}
	if cfg.Gateway.AllowedOrigin != "https://verify.example.com" {
		t.Errorf("expected origin override, got %s", cfg.Gateway.AllowedOrigin)
	}
	if cfg.Session.TimeLimitSeconds != 60 {
		t.Errorf("expected 60 second time limit, got %d", cfg.Session.TimeLimitSeconds)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn', got %s", cfg.Logging.Level)
	}
}

func TestApplyEnv_InvalidInt(t *testing.T) {
	t.Setenv("LIVEGUARD_TIME_LIMIT_SECONDS", "soon")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Session.TimeLimitSeconds != 45 {
		t.Errorf("expected unparseable value to keep the default, got %d", cfg.Session.TimeLimitSeconds)
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "tilde expansion", input: "~/test/path"},
		{name: "no expansion needed", input: "/absolute/path"},
		{name: "relative path", input: "relative/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExpandPath(tt.input)
			if tt.input == "~/test/path" {
				if result[0] == '~' {
					t.Error("tilde was not expanded")
				}
				return
			}
			if result != tt.input {
				t.Errorf("unexpected expansion: got %s", result)
			}
		})
	}
}

func TestConfig_ExpandPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.File = "~/liveguard/log.txt"

	cfg.ExpandPaths()

	if cfg.Logging.File[0] == '~' {
		t.Error("Logging.File tilde was not expanded")
	}
}

// Benchmark tests
func BenchmarkDefaultConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DefaultConfig()
	}
}

func BenchmarkConfig_Validate(b *testing.B) {
	cfg := DefaultConfig()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		cfg.Validate()
	}
}
