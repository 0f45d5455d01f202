package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"trainingportal/internal/api"
	"trainingportal/internal/config"
	"trainingportal/internal/gateway"
	"trainingportal/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("portal failed: %v", err)
	}
}

func run(cfg config.App) error {
	content, err := config.LoadContent(cfg.ContentPath)
	if err != nil {
		log.Printf("warning: %v, using default content", err)
	}

	var backend session.Backend
	if cfg.StateBackend == "redis" {
		backend = session.NewRedisBackend(cfg.RedisAddr, "")
	} else {
		backend = session.NewFileBackend(cfg.StatePath)
	}

	store, err := session.Open(backend, cfg.UpstreamURL)
	if err != nil {
		return err
	}
	if store.LoggedIn() {
		if user, ok := store.User(); ok {
			log.Printf("restored session for %s", user.Email)
		}
		if store.TokenExpired(time.Now()) {
			log.Printf("stored access token is expired, requests will need a fresh login")
		}
	}

	client := api.New(store)
	gw := gateway.New(cfg, content, store, backend, client)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      gw.Router(),
		ReadTimeout:  15 * time.Second,
		// No write timeout: the statistics watch endpoint streams until
		// the client disconnects.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("portal listening on :%s (upstream %s)", cfg.HTTPPort, store.BaseURL())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("portal exited")
	return nil
}
