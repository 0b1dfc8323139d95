package main

import (
	"log"
	"net/http"
	"time"

	"finditweb/internal/config"
	"finditweb/internal/session"
	"finditweb/internal/upstream"
	"finditweb/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	api := upstream.New(cfg)
	sessions := session.NewStore(cfg, api)
	r := web.NewRouter(cfg, sessions, api)

	hsrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTPReadHeaderTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	log.Printf("listening on %s upstream=%s", cfg.ListenAddr, cfg.APIBaseURL)
	if err := hsrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
