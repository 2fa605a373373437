package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/twenty-questions/backend/internal/config"
	"github.com/zhouzirui/twenty-questions/backend/internal/handler"
	gamehandler "github.com/zhouzirui/twenty-questions/backend/internal/handler/game"
	"github.com/zhouzirui/twenty-questions/backend/internal/service/ai"
	gameservice "github.com/zhouzirui/twenty-questions/backend/internal/service/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Game routes stay unavailable until a questioner model is configured.
	var games gamehandler.GameService
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without a questioner - 请检查 Ark 模型相关环境变量")
		} else {
			log.Println("AI service initialized successfully")

			gameService := gameservice.NewService(aiService, gameservice.Config{
				BaseLimit:   cfg.Game.BaseLimit,
				GraceLimit:  cfg.Game.GraceLimit,
				IdleTimeout: cfg.Game.IdleTimeout,
			})
			go gameService.RunReaper(ctx, cfg.Game.ReaperInterval)
			games = gameService
		}
	} else {
		log.Println("Ark 凭证未配置，对局接口将返回 503")
	}

	router := handler.NewRouter(games, cfg.Server.AllowedOrigins)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("[http] twenty questions listening on %s (origins=%v)", serverCfg.Addr, serverCfg.AllowedOrigins)
	if err := runServer(ctx, srv, serverCfg.ShutdownTimeout); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// runServer serves until ctx is cancelled, then gives in-flight requests
// (including model calls) up to shutdownTimeout to finish.
func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("[http] shutting down, waiting up to %s", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
