// Command framescript resolves scenes into per-frame state and audio plans.
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/framescript/internal/cli"
)

func main() {
	// .env is optional; the real environment wins over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
