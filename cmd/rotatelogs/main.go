// Command rotatelogs renames the current activity sinks to date-stamped
// files. Run it from cron; the server recreates the sinks on its next
// write.
package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"honeyshop/internal/activity"
	"honeyshop/internal/platform/config"
	"honeyshop/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	// Rotation only renames files; suppress the activity console echo.
	act, err := activity.New(cfg.LogsDir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		log.Error("open activity sinks", "error", err)
		os.Exit(1)
	}
	defer act.Close()

	if err := act.Rotate(time.Now()); err != nil {
		log.Error("rotate failed", "error", err)
		os.Exit(1)
	}
	log.Info("logs rotated", "dir", cfg.LogsDir)
}
