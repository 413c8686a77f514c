package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/voicecorpus/voicecorpus-go/cmd"
	"github.com/voicecorpus/voicecorpus-go/internal/conf"
	"github.com/voicecorpus/voicecorpus-go/internal/logging"
)

// Populated at build time via -ldflags.
var version = "dev"
var buildDate = "unknown"

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	if settings.Main.Log.Enabled {
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		closeLog, err := logging.EnableFileOutput(settings.Main.Log.Path, level)
		if err != nil {
			log.Fatalf("Error opening log file %s: %v", settings.Main.Log.Path, err)
		}
		defer func() { _ = closeLog() }()
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
