// Package config provides configuration management for LiveGuard.
// It loads configuration from YAML files with sensible defaults, with
// environment-variable overrides for deployment settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all LiveGuard configuration.
type Config struct {
	Calibration CalibrationConfig `yaml:"calibration"`
	Challenge   ChallengeConfig   `yaml:"challenge"`
	Spoof       SpoofConfig       `yaml:"spoof_detection"`
	Session     SessionConfig     `yaml:"session"`
	Gateway     GatewayConfig     `yaml:"gateway"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CalibrationConfig holds eye-baseline calibration settings.
type CalibrationConfig struct {
	FrameCount           int     `yaml:"frame_count"`
	EARSmoothingAlpha    float64 `yaml:"ear_smoothing_alpha"`
	FallbackEARThreshold float64 `yaml:"fallback_ear_threshold"`
}

// ChallengeConfig holds per-action detector settings.
type ChallengeConfig struct {
	RequiredBlinkCount        int     `yaml:"required_blink_count"`
	MinClosedFramesForBlink   int     `yaml:"min_closed_frames_for_blink"`
	MinOpenFramesAfterBlink   int     `yaml:"min_open_frames_after_blink"`
	TurnAngleThresholdDegrees float64 `yaml:"turn_angle_threshold_degrees"`
	TurnPersistenceFrames     int     `yaml:"turn_persistence_frames"`
	HeadPoseCalibrationFrames int     `yaml:"head_pose_calibration_frames"`
}

// SpoofConfig holds the anti-spoof trigger thresholds. These are
// empirically tuned values, not derived physics.
type SpoofConfig struct {
	MotionEnergyThreshold float64 `yaml:"motion_energy_threshold"`
	EARStabilityEpsilon   float64 `yaml:"ear_stability_epsilon"`
}

// SessionConfig holds verification session settings.
type SessionConfig struct {
	TimeLimitSeconds int  `yaml:"time_limit_seconds"`
	DebugTelemetry   bool `yaml:"debug_telemetry"`
}

// GatewayConfig holds the frame-gateway server settings.
type GatewayConfig struct {
	ListenAddr             string `yaml:"listen_addr"`
	AllowedOrigin          string `yaml:"allowed_origin"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Calibration: CalibrationConfig{
			FrameCount:           40,
			EARSmoothingAlpha:    0.3,
			FallbackEARThreshold: 0.2,
		},
		Challenge: ChallengeConfig{
			RequiredBlinkCount:        2,
			MinClosedFramesForBlink:   3,
			MinOpenFramesAfterBlink:   2,
			TurnAngleThresholdDegrees: 15,
			TurnPersistenceFrames:     5,
			HeadPoseCalibrationFrames: 15,
		},
		Spoof: SpoofConfig{
			MotionEnergyThreshold: 0.8,
			EARStabilityEpsilon:   0.005,
		},
		Session: SessionConfig{
			TimeLimitSeconds: 45,
			DebugTelemetry:   false,
		},
		Gateway: GatewayConfig{
			ListenAddr:             ":8080",
			AllowedOrigin:          "*",
			ShutdownTimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load loads configuration from the specified file.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return config, err
	}

	return config, nil
}

// LoadDefault tries to load configuration from default locations.
func LoadDefault() (*Config, error) {
	// Try system config first
	if _, err := os.Stat("/etc/liveguard/liveguard.yaml"); err == nil {
		return Load("/etc/liveguard/liveguard.yaml")
	}

	// Try user config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig(), nil
	}

	userConfig := filepath.Join(homeDir, ".config/liveguard/liveguard.yaml")
	if _, err := os.Stat(userConfig); err == nil {
		return Load(userConfig)
	}

	// Return defaults
	return DefaultConfig(), nil
}

// ExpandPath expands ~ and environment variables in a path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// ExpandPaths expands all paths in the configuration.
func (c *Config) ExpandPaths() {
	c.Logging.File = ExpandPath(c.Logging.File)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Validate calibration settings
	if c.Calibration.FrameCount <= 0 {
		return fmt.Errorf("calibration frame_count must be positive, got %d", c.Calibration.FrameCount)
	}
	if c.Calibration.EARSmoothingAlpha <= 0 || c.Calibration.EARSmoothingAlpha > 1 {
		return fmt.Errorf("ear_smoothing_alpha must be in (0, 1], got %f", c.Calibration.EARSmoothingAlpha)
	}
	if c.Calibration.FallbackEARThreshold <= 0 || c.Calibration.FallbackEARThreshold >= 1 {
		return fmt.Errorf("fallback_ear_threshold must be in (0, 1), got %f", c.Calibration.FallbackEARThreshold)
	}

	// Validate challenge settings
	if c.Challenge.RequiredBlinkCount <= 0 {
		return fmt.Errorf("required_blink_count must be positive, got %d", c.Challenge.RequiredBlinkCount)
	}
	if c.Challenge.MinClosedFramesForBlink <= 0 {
		return fmt.Errorf("min_closed_frames_for_blink must be positive, got %d", c.Challenge.MinClosedFramesForBlink)
	}
	if c.Challenge.MinOpenFramesAfterBlink <= 0 {
		return fmt.Errorf("min_open_frames_after_blink must be positive, got %d", c.Challenge.MinOpenFramesAfterBlink)
	}
	if c.Challenge.TurnAngleThresholdDegrees <= 0 || c.Challenge.TurnAngleThresholdDegrees >= 90 {
		return fmt.Errorf("turn_angle_threshold_degrees must be in (0, 90), got %f", c.Challenge.TurnAngleThresholdDegrees)
	}
	if c.Challenge.TurnPersistenceFrames <= 0 {
		return fmt.Errorf("turn_persistence_frames must be positive, got %d", c.Challenge.TurnPersistenceFrames)
	}
	if c.Challenge.HeadPoseCalibrationFrames <= 0 {
		return fmt.Errorf("head_pose_calibration_frames must be positive, got %d", c.Challenge.HeadPoseCalibrationFrames)
	}

	// Validate spoof settings
	if c.Spoof.MotionEnergyThreshold <= 0 {
		return fmt.Errorf("motion_energy_threshold must be positive, got %f", c.Spoof.MotionEnergyThreshold)
	}
	if c.Spoof.EARStabilityEpsilon <= 0 {
		return fmt.Errorf("ear_stability_epsilon must be positive, got %f", c.Spoof.EARStabilityEpsilon)
	}

	// Validate session settings
	if c.Session.TimeLimitSeconds <= 0 {
		return fmt.Errorf("time_limit_seconds must be positive, got %d", c.Session.TimeLimitSeconds)
	}

	// Validate gateway settings
	if c.Gateway.ListenAddr == "" {
		return fmt.Errorf("gateway listen_addr must not be empty")
	}

	// Validate logging level
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}
