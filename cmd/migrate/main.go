// migrate applies the embedded schema migrations to COOKIEJAR_POSTGRES_DSN.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"cookiejar/creator/internal/config"
	"cookiejar/creator/internal/database/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if err := migrate.Run(cfg.Postgres.DSN, *direction); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return
		}
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
