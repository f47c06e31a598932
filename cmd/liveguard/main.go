package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/presenceid/liveguard/pkg/config"
	"github.com/presenceid/liveguard/pkg/gateway"
	"github.com/presenceid/liveguard/pkg/logging"
)

const version = "0.1.0"

// Command represents a CLI command.
type Command struct {
	Name        string
	Description string
	Usage       string
	Run         func(args []string) error
}

var (
	cfg      *config.Config
	commands map[string]*Command
)

func init() {
	commands = map[string]*Command{
		"serve": {
			Name:        "serve",
			Description: "Run the liveness verification gateway",
			Usage:       "liveguard serve",
			Run:         cmdServe,
		},
		"config": {
			Name:        "config",
			Description: "Show the effective configuration",
			Usage:       "liveguard config",
			Run:         cmdConfig,
		},
		"version": {
			Name:        "version",
			Description: "Show version information",
			Usage:       "liveguard version",
			Run:         cmdVersion,
		},
		"help": {
			Name:        "help",
			Description: "Show help information",
			Usage:       "liveguard help [command]",
			Run:         cmdHelp,
		},
	}
}

func main() {
	// Parse global flags
	configFile := flag.String("config", "", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	args := flag.Args()

	// Load configuration
	var err error
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	cfg.ApplyEnv()
	cfg.ExpandPaths()

	// Initialize logging
	logLevel := cfg.Logging.Level
	if *debug {
		logLevel = "debug"
	}
	if err := logging.Init(logLevel, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}

	logging.Debugf("LiveGuard v%s starting", version)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if len(args) < 1 {
		printUsage()
		os.Exit(0)
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmdName)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.Run(args[1:]); err != nil {
		logging.WithError(err).Errorf("Command '%s' failed", cmdName)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("LiveGuard - Camera Liveness Verification")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Usage: liveguard [options] <command> [arguments]")
	fmt.Println("\nOptions:")
	fmt.Println("  -config <file>   Path to configuration file")
	fmt.Println("  -debug           Enable debug logging")
	fmt.Println("\nCommands:")
	for _, name := range []string{"serve", "config", "version", "help"} {
		cmd := commands[name]
		fmt.Printf("  %-12s %s\n", cmd.Name, cmd.Description)
	}
	fmt.Println("\nRun 'liveguard help <command>' for more information on a command.")
}

// Command implementations

func cmdServe(args []string) error {
	logging.Infof("Starting verification gateway on %s", cfg.Gateway.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return gateway.New(cfg).Run(ctx)
}

func cmdConfig(args []string) error {
	fmt.Println("Current Configuration:")
	fmt.Println("======================")
	fmt.Println()
	fmt.Println("[Calibration]")
	fmt.Printf("  Frame Count:        %d\n", cfg.Calibration.FrameCount)
	fmt.Printf("  Smoothing Alpha:    %.2f\n", cfg.Calibration.EARSmoothingAlpha)
	fmt.Printf("  Fallback Threshold: %.2f\n", cfg.Calibration.FallbackEARThreshold)
	fmt.Println()
	fmt.Println("[Challenge]")
	fmt.Printf("  Required Blinks:    %d\n", cfg.Challenge.RequiredBlinkCount)
	fmt.Printf("  Closed Frames:      %d\n", cfg.Challenge.MinClosedFramesForBlink)
	fmt.Printf("  Open Frames:        %d\n", cfg.Challenge.MinOpenFramesAfterBlink)
	fmt.Printf("  Turn Threshold:     %.1f deg\n", cfg.Challenge.TurnAngleThresholdDegrees)
	fmt.Printf("  Turn Persistence:   %d frames\n", cfg.Challenge.TurnPersistenceFrames)
	fmt.Printf("  Pose Calibration:   %d frames\n", cfg.Challenge.HeadPoseCalibrationFrames)
	fmt.Println()
	fmt.Println("[Spoof Detection]")
	fmt.Printf("  Motion Threshold:   %.2f\n", cfg.Spoof.MotionEnergyThreshold)
	fmt.Printf("  EAR Epsilon:        %.3f\n", cfg.Spoof.EARStabilityEpsilon)
	fmt.Println()
	fmt.Println("[Session]")
	fmt.Printf("  Time Limit:         %d seconds\n", cfg.Session.TimeLimitSeconds)
	fmt.Printf("  Debug Telemetry:    %t\n", cfg.Session.DebugTelemetry)
	fmt.Println()
	fmt.Println("[Gateway]")
	fmt.Printf("  Listen Address:     %s\n", cfg.Gateway.ListenAddr)
	fmt.Printf("  Allowed Origin:     %s\n", cfg.Gateway.AllowedOrigin)
	fmt.Println()
	fmt.Println("[Logging]")
	fmt.Printf("  Level:              %s\n", cfg.Logging.Level)
	fmt.Printf("  File:               %s\n", cfg.Logging.File)

	return nil
}

func cmdVersion(args []string) error {
	fmt.Printf("LiveGuard v%s\n", version)
	fmt.Println("Camera Liveness Verification")
	return nil
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	fmt.Printf("Command: %s\n", cmd.Name)
	fmt.Printf("Description: %s\n", cmd.Description)
	fmt.Printf("Usage: %s\n", cmd.Usage)

	switch cmdName {
	case "serve":
		fmt.Println("\nThe gateway accepts WebSocket connections on /ws. Each")
		fmt.Println("connection runs one verification session: the client streams")
		fmt.Println("landmark frames and receives status, challenge-list, and")
		fmt.Println("verdict events. Health and counters are served on /api/health")
		fmt.Println("and /api/metrics.")
	case "config":
		fmt.Println("\nConfiguration Locations:")
		fmt.Println("  System: /etc/liveguard/liveguard.yaml")
		fmt.Println("  User:   ~/.config/liveguard/liveguard.yaml")
		fmt.Println("\nUse -config flag to specify a custom config file.")
		fmt.Println("LIVEGUARD_* environment variables override deployment settings.")
	}

	return nil
}
