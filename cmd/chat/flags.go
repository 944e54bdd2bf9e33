package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
)

var (
	flagServerURL string
	flagSocketURL string
	flagToken     string
	flagSecret    string
	flagLogLevel  string
)

func parseFlags() {
	// A .env next to the binary is optional; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	flag.StringVar(&flagServerURL, "server", "http://localhost:8000", "chat service base URL")
	flag.StringVar(&flagSocketURL, "ws", "ws://localhost:8000/ws", "event channel URL")
	flag.StringVar(&flagToken, "token", "", "access token")
	flag.StringVar(&flagSecret, "secret", "", "token signing secret")
	flag.StringVar(&flagLogLevel, "l", "info", "log level")
	flag.Parse()

	if v := os.Getenv("CHAT_SERVER"); v != "" {
		flagServerURL = v
	}
	if v := os.Getenv("CHAT_WS"); v != "" {
		flagSocketURL = v
	}
	if v := os.Getenv("CHAT_TOKEN"); v != "" {
		flagToken = v
	}
	if v := os.Getenv("CHAT_SECRET"); v != "" {
		flagSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		flagLogLevel = v
	}
}
