package main

import (
	"os"

	"chatbot-api/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		config.Logger.Debug("command failed", "error", err)
		os.Exit(1)
	}
}
