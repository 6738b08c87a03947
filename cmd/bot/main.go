package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/Jacobbrewer1/fastsupport/cmd/bot/config"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
)

func main() {
	// The .env file is loaded before the logger exists, so the default logger reports on it.
	if err := config.LoadDotEnv(slog.Default()); err != nil {
		log.Fatalln(err)
	}

	a, err := InitializeApp()
	if err != nil {
		log.Fatalln(err)
	}
	a.Info("Starting application")
	if err := a.Run(); err != nil {
		a.Error("Error running application", slog.String(logging.KeyError, err.Error()))
		os.Exit(1)
	}
}
