// migrate applies the embedded schema migrations: go run ./cmd/migrate -direction up.
package main

import (
	"flag"
	"fmt"
	"os"

	"housemonitor/internal/config"
	"housemonitor/internal/db/migrate"
	"housemonitor/internal/logger"

	"go.uber.org/zap"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	version := flag.Bool("version", false, "Print the current schema version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *version {
		v, dirty, err := migrate.Version(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("read schema version", zap.Error(err))
		}
		fmt.Printf("version=%d dirty=%v\n", v, dirty)
		return
	}

	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		log.Fatal("invalid direction", zap.Error(err))
	}
	if err := migrate.Run(cfg.DatabaseURL, dir); err != nil {
		log.Fatal("migrate", zap.String("direction", string(dir)), zap.Error(err))
	}
	log.Info("migrations applied", zap.String("direction", string(dir)))
}
