// Command devserver is an in-memory stand-in for the chat service: it
// implements the REST surface and the event channel the client engine
// talks to, so the client can be developed and exercised end-to-end
// without the production backend. Nothing survives a restart.
package main

import (
	"flag"
	"net/http"
	"os"

	"go.uber.org/zap"

	"go-chat-client/internal/logger"
)

type server struct {
	secret string
	state  *state
	hub    *hub
}

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	logLevel := flag.String("l", "debug", "log level")
	flag.Parse()

	if err := logger.Initialize(*logLevel); err != nil {
		panic(err)
	}

	secret := os.Getenv("CHAT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}

	s := &server{
		secret: secret,
		state:  newState(),
		hub:    newHub(),
	}
	go s.hub.run()

	logger.Log.Info("devserver listening", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, s.routes()); err != nil {
		logger.Log.Fatal("listen failed", zap.Error(err))
	}
}
