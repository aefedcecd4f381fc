package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	ambassadorbiz "github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/biz"
	ambassadordata "github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/data"
	ambassadorservice "github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/service"
	assistantbiz "github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/biz"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/conversation"
	assistantservice "github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/service"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/auth"
	catalogdata "github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/data"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/conf"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/data"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
	profilebiz "github.com/nfsdasilva237/pipomarket-assistant/internal/profile/biz"
	profiledata "github.com/nfsdasilva237/pipomarket-assistant/internal/profile/data"
	profileservice "github.com/nfsdasilva237/pipomarket-assistant/internal/profile/service"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/recommend"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := conf.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		Output:           cfg.Log.Output,
		EnableCaller:     cfg.Log.EnableCaller,
		EnableStacktrace: cfg.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   cfg.Log.File.Filename,
			MaxSize:    cfg.Log.File.MaxSize,
			MaxAge:     cfg.Log.File.MaxAge,
			MaxBackups: cfg.Log.File.MaxBackups,
			Compress:   cfg.Log.File.Compress,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	d, cleanup, err := data.NewData(cfg, log)
	if err != nil {
		log.Fatal("failed to init data layer", zap.Error(err))
	}
	defer cleanup()

	// Repositories
	catalogRepo := catalogdata.NewProductRepo(d.DB)
	profileRepo := profiledata.NewProfileRepo(d.DB)
	ambassadorRepo := ambassadordata.NewAmbassadorRepo(d.DB)
	sessionStore := conversation.NewRedisStore(d.Redis, cfg.Assistant.SessionTTL)

	// Use cases
	profileUC := profilebiz.NewProfileUseCase(profileRepo, cfg.Assistant.ProfileCacheTTL, log)
	engine := recommend.NewEngine(profileUC, cfg.Assistant.SimilarUserScanLimit, log)
	assistantUC := assistantbiz.NewAssistantUseCase(catalogRepo, profileUC, engine, sessionStore, cfg.Assistant.HistoryLimit, log)
	ambassadorUC := ambassadorbiz.NewAmbassadorUseCase(ambassadorRepo, log)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	srv := server.NewHTTPServer(cfg, jwtManager, &server.Services{
		Assistant:  assistantservice.NewAssistantService(assistantUC),
		Profile:    profileservice.NewProfileService(profileUC),
		Ambassador: ambassadorservice.NewAmbassadorService(ambassadorUC),
	}, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
